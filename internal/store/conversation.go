package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/connectflow/internal/apperrors"
	"github.com/dtroode/connectflow/internal/model"
)

var _ model.ConversationStore = (*Conversations)(nil)

// Conversations owns every conversation and its embedded message log.
// Participants reference users by handle only.
type Conversations struct {
	gateway       model.Gateway
	conversations []*model.Conversation
	byID          map[uuid.UUID]*model.Conversation
}

func NewConversations(gateway model.Gateway) *Conversations {
	return &Conversations{
		gateway: gateway,
		byID:    make(map[uuid.UUID]*model.Conversation),
	}
}

func (s *Conversations) Init(ctx context.Context) error {
	data, ok, err := s.gateway.Load(ctx, model.KeyConversations)
	if err != nil {
		return apperrors.ErrStorage(err)
	}
	if !ok {
		return nil
	}

	var conversations []*model.Conversation
	if err := json.Unmarshal(data, &conversations); err != nil {
		return fmt.Errorf("decode conversations snapshot: %w", err)
	}

	s.Reset()
	for _, c := range conversations {
		s.conversations = append(s.conversations, c)
		s.byID[c.ID] = c
	}
	return nil
}

func (s *Conversations) Reset() {
	s.conversations = nil
	s.byID = make(map[uuid.UUID]*model.Conversation)
}

func (s *Conversations) Get(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	conversation, ok := s.byID[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return conversation, nil
}

func (s *Conversations) All(ctx context.Context) ([]*model.Conversation, error) {
	conversations := make([]*model.Conversation, len(s.conversations))
	copy(conversations, s.conversations)
	return conversations, nil
}

func (s *Conversations) Add(ctx context.Context, conversation *model.Conversation) error {
	if _, ok := s.byID[conversation.ID]; ok {
		return model.ErrAlreadyExists
	}
	s.conversations = append(s.conversations, conversation)
	s.byID[conversation.ID] = conversation
	return nil
}

func (s *Conversations) Flush(ctx context.Context) error {
	data, err := json.Marshal(s.conversations)
	if err != nil {
		return fmt.Errorf("encode conversations snapshot: %w", err)
	}
	if err := s.gateway.Save(ctx, model.KeyConversations, data); err != nil {
		return apperrors.ErrStorage(err)
	}
	return nil
}
