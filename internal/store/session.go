package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dtroode/connectflow/internal/apperrors"
	"github.com/dtroode/connectflow/internal/model"
)

var _ model.SessionStore = (*Session)(nil)

// Session persists the active viewer snapshot directly through the
// gateway; unlike the directory stores it keeps no in-memory copy.
type Session struct {
	gateway model.Gateway
}

func NewSession(gateway model.Gateway) *Session {
	return &Session{gateway: gateway}
}

func (s *Session) Save(ctx context.Context, session model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session snapshot: %w", err)
	}
	if err := s.gateway.Save(ctx, model.KeyCurrentSession, data); err != nil {
		return apperrors.ErrStorage(err)
	}
	return nil
}

func (s *Session) Load(ctx context.Context) (model.Session, error) {
	data, ok, err := s.gateway.Load(ctx, model.KeyCurrentSession)
	if err != nil {
		return model.Session{}, apperrors.ErrStorage(err)
	}
	if !ok {
		return model.Session{}, model.ErrNotFound
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		// An unreadable session record is treated as a logged-out state.
		return model.Session{}, model.ErrNotFound
	}
	return session, nil
}

func (s *Session) Clear(ctx context.Context) error {
	if err := s.gateway.Delete(ctx, model.KeyCurrentSession); err != nil {
		return apperrors.ErrStorage(err)
	}
	return nil
}
