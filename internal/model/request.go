package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RequestStore persists friend requests, active and terminal. Terminal
// requests are retained for history; active-request queries filter on
// the pending state.
type RequestStore interface {
	Get(ctx context.Context, id uuid.UUID) (*FriendRequest, error)
	// Pending returns the single pending request for the ordered
	// (from, to) pair, or ErrNotFound.
	Pending(ctx context.Context, from, to string) (*FriendRequest, error)
	All(ctx context.Context) ([]*FriendRequest, error)
	Add(ctx context.Context, request *FriendRequest) error
	Flush(ctx context.Context) error
}

// RequestState enumerates the friend-request lifecycle.
type RequestState string

const (
	RequestPending  RequestState = "pending"
	RequestAccepted RequestState = "accepted"
	RequestRejected RequestState = "rejected"
	RequestCanceled RequestState = "canceled"
)

// FriendRequest is a directed edge from one handle to another. At most
// one pending request may exist per ordered (From, To) pair, and a
// request reaches a terminal state exactly once.
type FriendRequest struct {
	ID        uuid.UUID    `json:"id"`
	From      string       `json:"from"`
	To        string       `json:"to"`
	State     RequestState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
}

// Terminal reports whether the request has left the pending state.
func (r *FriendRequest) Terminal() bool {
	return r.State != RequestPending
}
