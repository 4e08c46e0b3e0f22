package model

import (
	"context"
	"time"
)

// SessionStore persists the single active viewer session for restart
// restoration.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	// Load returns the stored session, or ErrNotFound when no session
	// is active or the stored record is unreadable.
	Load(ctx context.Context) (Session, error)
	Clear(ctx context.Context) error
}

// Session is a snapshot of the active viewer. The embedded user copy is
// what allows restoration even after the directory snapshot was reset.
type Session struct {
	User      User      `json:"user"`
	StartedAt time.Time `json:"started_at"`
}
