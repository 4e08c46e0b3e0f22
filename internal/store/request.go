package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/connectflow/internal/apperrors"
	"github.com/dtroode/connectflow/internal/model"
)

var _ model.RequestStore = (*Requests)(nil)

// Requests holds every friend request, active and terminal, in creation
// order.
type Requests struct {
	gateway  model.Gateway
	requests []*model.FriendRequest
	byID     map[uuid.UUID]*model.FriendRequest
}

func NewRequests(gateway model.Gateway) *Requests {
	return &Requests{
		gateway: gateway,
		byID:    make(map[uuid.UUID]*model.FriendRequest),
	}
}

func (s *Requests) Init(ctx context.Context) error {
	data, ok, err := s.gateway.Load(ctx, model.KeyFriendRequests)
	if err != nil {
		return apperrors.ErrStorage(err)
	}
	if !ok {
		return nil
	}

	var requests []*model.FriendRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		return fmt.Errorf("decode friend requests snapshot: %w", err)
	}

	s.Reset()
	for _, r := range requests {
		s.requests = append(s.requests, r)
		s.byID[r.ID] = r
	}
	return nil
}

func (s *Requests) Reset() {
	s.requests = nil
	s.byID = make(map[uuid.UUID]*model.FriendRequest)
}

func (s *Requests) Get(ctx context.Context, id uuid.UUID) (*model.FriendRequest, error) {
	request, ok := s.byID[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return request, nil
}

func (s *Requests) Pending(ctx context.Context, from, to string) (*model.FriendRequest, error) {
	for _, r := range s.requests {
		if r.From == from && r.To == to && r.State == model.RequestPending {
			return r, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *Requests) All(ctx context.Context) ([]*model.FriendRequest, error) {
	requests := make([]*model.FriendRequest, len(s.requests))
	copy(requests, s.requests)
	return requests, nil
}

func (s *Requests) Add(ctx context.Context, request *model.FriendRequest) error {
	if _, ok := s.byID[request.ID]; ok {
		return model.ErrAlreadyExists
	}
	s.requests = append(s.requests, request)
	s.byID[request.ID] = request
	return nil
}

func (s *Requests) Flush(ctx context.Context) error {
	data, err := json.Marshal(s.requests)
	if err != nil {
		return fmt.Errorf("encode friend requests snapshot: %w", err)
	}
	if err := s.gateway.Save(ctx, model.KeyFriendRequests, data); err != nil {
		return apperrors.ErrStorage(err)
	}
	return nil
}
