package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ConversationStore persists conversations keyed by id.
type ConversationStore interface {
	Get(ctx context.Context, id uuid.UUID) (*Conversation, error)
	All(ctx context.Context) ([]*Conversation, error)
	Add(ctx context.Context, conversation *Conversation) error
	Flush(ctx context.Context) error
}

// MessageKind enumerates message kinds.
type MessageKind string

const (
	MessageText   MessageKind = "text"
	MessageSystem MessageKind = "system"
)

// Message is one entry of a conversation log. Messages are immutable
// once appended; the log is append-only.
type Message struct {
	ID     uuid.UUID   `json:"id"`
	Sender string      `json:"sender"`
	Body   string      `json:"body"`
	Kind   MessageKind `json:"kind"`
	SentAt time.Time   `json:"sent_at"`
	Read   bool        `json:"read"`
}

// Conversation is a participant set plus an ordered message log.
// Participants are handles, not user references.
type Conversation struct {
	ID           uuid.UUID `json:"id"`
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
	UnreadCount  int       `json:"unread_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// LastMessage returns the final log entry, if any.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// HasParticipant reports whether handle takes part in the conversation.
func (c *Conversation) HasParticipant(handle string) bool {
	return containsHandle(c.Participants, handle)
}

// IsDirect reports whether this is a two-party conversation.
func (c *Conversation) IsDirect() bool {
	return len(c.Participants) == 2
}

// IsDirectBetween reports whether this is the two-party conversation for
// the unordered pair (a, b).
func (c *Conversation) IsDirectBetween(a, b string) bool {
	return c.IsDirect() && c.HasParticipant(a) && c.HasParticipant(b)
}

// Append adds a message to the log and bumps the unread counter.
func (c *Conversation) Append(message Message) {
	c.Messages = append(c.Messages, message)
	c.UnreadCount++
}

// LastActivity is the timestamp conversations are listed by: the last
// message when present, creation time otherwise.
func (c *Conversation) LastActivity() time.Time {
	if last, ok := c.LastMessage(); ok {
		return last.SentAt
	}
	return c.CreatedAt
}
