package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dtroode/connectflow/internal/apperrors"
	"github.com/dtroode/connectflow/internal/model"
)

var _ model.IdentityStore = (*Identity)(nil)

// Identity is the in-memory user directory, snapshot-persisted wholesale
// through the gateway on every flush. Insertion order is retained and is
// the listing order of All.
type Identity struct {
	gateway model.Gateway
	users   map[string]*model.User
	order   []string
}

func NewIdentity(gateway model.Gateway) *Identity {
	return &Identity{
		gateway: gateway,
		users:   make(map[string]*model.User),
	}
}

// Init loads the users snapshot. A missing snapshot leaves the store
// empty; an unreadable one is reported as a plain decode error so the
// caller can distinguish it from a gateway failure.
func (s *Identity) Init(ctx context.Context) error {
	data, ok, err := s.gateway.Load(ctx, model.KeyUsers)
	if err != nil {
		return apperrors.ErrStorage(err)
	}
	if !ok {
		return nil
	}

	var users []*model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("decode users snapshot: %w", err)
	}

	s.Reset()
	for _, u := range users {
		s.users[u.Handle] = u
		s.order = append(s.order, u.Handle)
	}
	return nil
}

// Reset drops all in-memory state without touching the gateway.
func (s *Identity) Reset() {
	s.users = make(map[string]*model.User)
	s.order = nil
}

func (s *Identity) Get(ctx context.Context, handle string) (*model.User, error) {
	user, ok := s.users[handle]
	if !ok {
		return nil, model.ErrNotFound
	}
	return user, nil
}

func (s *Identity) All(ctx context.Context) ([]*model.User, error) {
	users := make([]*model.User, 0, len(s.order))
	for _, handle := range s.order {
		users = append(users, s.users[handle])
	}
	return users, nil
}

func (s *Identity) Create(ctx context.Context, user *model.User) error {
	if _, ok := s.users[user.Handle]; ok {
		return model.ErrAlreadyExists
	}
	s.users[user.Handle] = user
	s.order = append(s.order, user.Handle)
	return nil
}

// Len reports the directory size.
func (s *Identity) Len() int {
	return len(s.users)
}

func (s *Identity) Flush(ctx context.Context) error {
	users, _ := s.All(ctx)
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users snapshot: %w", err)
	}
	if err := s.gateway.Save(ctx, model.KeyUsers, data); err != nil {
		return apperrors.ErrStorage(err)
	}
	return nil
}
