package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/connectflow/internal/apperrors"
	"github.com/dtroode/connectflow/internal/logger"
	"github.com/dtroode/connectflow/internal/model"
)

// Conversations maps participant sets to conversations. Its core
// guarantee is two-party dedup: exactly one direct conversation exists
// per unordered pair of handles.
type Conversations struct {
	identities    model.IdentityStore
	conversations model.ConversationStore
	logger        *logger.Logger
}

func NewConversations(identities model.IdentityStore, conversations model.ConversationStore, logger *logger.Logger) *Conversations {
	return &Conversations{
		identities:    identities,
		conversations: conversations,
		logger:        logger,
	}
}

// GetOrCreateDirect resolves the single two-party conversation for
// initiator and other, creating it only when none exists. The new
// conversation is seeded with one system greeting from the initiator.
func (s *Conversations) GetOrCreateDirect(ctx context.Context, initiator, other string) (*model.Conversation, error) {
	if initiator == other {
		return nil, apperrors.ErrSelfReference
	}

	me, err := s.getUser(ctx, initiator)
	if err != nil {
		return nil, err
	}
	peer, err := s.getUser(ctx, other)
	if err != nil {
		return nil, err
	}

	if !CanMessage(peer, initiator) {
		return nil, apperrors.ErrMessagingClosed
	}

	existing, err := s.conversations.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	for _, c := range existing {
		if c.IsDirectBetween(initiator, other) {
			return c, nil
		}
	}

	now := time.Now()
	conversation := &model.Conversation{
		ID:           uuid.New(),
		Participants: []string{initiator, other},
		CreatedAt:    now,
	}
	conversation.Append(model.Message{
		ID:     uuid.New(),
		Sender: initiator,
		Body:   fmt.Sprintf("Hi! I'm %s", me.DisplayName),
		Kind:   model.MessageSystem,
		SentAt: now,
	})

	if err := s.conversations.Add(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to add conversation: %w", err)
	}
	if err := s.conversations.Flush(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("direct conversation created", "initiator", initiator, "other", other)
	return conversation, nil
}

// CreateGroup creates a conversation for three or more participants.
// Group conversations are never matched by the two-party dedup rule.
func (s *Conversations) CreateGroup(ctx context.Context, creator string, participants []string) (*model.Conversation, error) {
	members := []string{creator}
	for _, p := range participants {
		if p != creator && !containsMember(members, p) {
			members = append(members, p)
		}
	}
	if len(members) < 3 {
		return nil, apperrors.InvalidInput("a group needs at least three participants")
	}

	for _, handle := range members {
		if _, err := s.getUser(ctx, handle); err != nil {
			return nil, err
		}
	}

	conversation := &model.Conversation{
		ID:           uuid.New(),
		Participants: members,
		CreatedAt:    time.Now(),
	}

	if err := s.conversations.Add(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to add conversation: %w", err)
	}
	if err := s.conversations.Flush(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("group conversation created", "creator", creator, "participants", len(members))
	return conversation, nil
}

// SendMessage appends a text message to the log. The sender must be a
// participant; in direct conversations the peer's messaging policy is
// re-checked, since friendships and policies may have changed since the
// conversation was resolved.
func (s *Conversations) SendMessage(ctx context.Context, id uuid.UUID, sender, body string) (*model.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.ErrEmptyMessage
	}

	conversation, err := s.getConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(sender) {
		return nil, apperrors.ErrNotParticipant
	}

	if conversation.IsDirect() {
		for _, h := range conversation.Participants {
			if h == sender {
				continue
			}
			// A dangling peer handle degrades to no gate, not a crash.
			if peer, err := s.identities.Get(ctx, h); err == nil && !CanMessage(peer, sender) {
				return nil, apperrors.ErrMessagingClosed
			}
		}
	}

	message := model.Message{
		ID:     uuid.New(),
		Sender: sender,
		Body:   body,
		Kind:   model.MessageText,
		SentAt: time.Now(),
	}
	conversation.Append(message)

	if err := s.conversations.Flush(ctx); err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkRead flags the log read for a participant and zeroes the unread
// counter.
func (s *Conversations) MarkRead(ctx context.Context, id uuid.UUID, reader string) error {
	conversation, err := s.getConversation(ctx, id)
	if err != nil {
		return err
	}
	if !conversation.HasParticipant(reader) {
		return apperrors.ErrNotParticipant
	}

	for i := range conversation.Messages {
		conversation.Messages[i].Read = true
	}
	conversation.UnreadCount = 0

	return s.conversations.Flush(ctx)
}

// ListForUser returns the conversations a handle takes part in, most
// recent activity first.
func (s *Conversations) ListForUser(ctx context.Context, handle string) ([]*model.Conversation, error) {
	all, err := s.conversations.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	mine := make([]*model.Conversation, 0)
	for _, c := range all {
		if c.HasParticipant(handle) {
			mine = append(mine, c)
		}
	}

	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].LastActivity().After(mine[j].LastActivity())
	})
	return mine, nil
}

func (s *Conversations) getUser(ctx context.Context, handle string) (*model.User, error) {
	user, err := s.identities.Get(ctx, handle)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Conversations) getConversation(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	conversation, err := s.conversations.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return conversation, nil
}

func containsMember(members []string, handle string) bool {
	for _, m := range members {
		if m == handle {
			return true
		}
	}
	return false
}
