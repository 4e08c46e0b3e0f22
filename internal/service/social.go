package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/connectflow/internal/apperrors"
	"github.com/dtroode/connectflow/internal/logger"
	"github.com/dtroode/connectflow/internal/model"
)

// Social owns friendship edges and the friend-request lifecycle. Every
// mutation applies both sides of an edge before flushing, so the
// friends/request-set symmetry holds before and after each call.
type Social struct {
	identities model.IdentityStore
	requests   model.RequestStore
	logger     *logger.Logger
}

func NewSocial(identities model.IdentityStore, requests model.RequestStore, logger *logger.Logger) *Social {
	return &Social{
		identities: identities,
		requests:   requests,
		logger:     logger,
	}
}

// SendFriendRequest creates a pending request from one handle to
// another. A pending request in the opposite direction is accepted
// instead of creating a crossing pair.
func (s *Social) SendFriendRequest(ctx context.Context, from, to string) (*model.FriendRequest, error) {
	if from == to {
		return nil, apperrors.ErrSelfReference
	}

	sender, err := s.getUser(ctx, from)
	if err != nil {
		return nil, err
	}
	recipient, err := s.getUser(ctx, to)
	if err != nil {
		return nil, err
	}

	if !AcceptsFriendRequests(recipient) {
		return nil, apperrors.ErrRequestsClosed
	}
	if sender.IsFriend(to) {
		return nil, apperrors.ErrAlreadyFriends
	}

	if _, err := s.requests.Pending(ctx, from, to); err == nil {
		return nil, apperrors.ErrRequestPending
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("failed to check pending request: %w", err)
	}

	reverse, err := s.requests.Pending(ctx, to, from)
	if err == nil {
		if err := s.AcceptFriendRequest(ctx, reverse.ID, from); err != nil {
			return nil, err
		}
		return reverse, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("failed to check reverse pending request: %w", err)
	}

	request := &model.FriendRequest{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		State:     model.RequestPending,
		CreatedAt: time.Now(),
	}
	if err := s.requests.Add(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to add friend request: %w", err)
	}

	sender.AddOutgoingRequest(to)
	recipient.AddIncomingRequest(from)

	if err := s.flush(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("friend request sent", "from", from, "to", to)
	return request, nil
}

// AcceptFriendRequest settles a pending request and creates the
// friendship edge on both sides. Only the recipient may accept.
// Re-invoking on a settled request fails without double-applying.
func (s *Social) AcceptFriendRequest(ctx context.Context, id uuid.UUID, acting string) error {
	request, err := s.getPendingRequest(ctx, id)
	if err != nil {
		return err
	}
	if request.To != acting {
		return apperrors.ErrNotRecipient
	}

	// Both participants must still resolve before anything mutates:
	// edges apply both sides or neither.
	sender, err := s.getUser(ctx, request.From)
	if err != nil {
		return err
	}
	recipient, err := s.getUser(ctx, request.To)
	if err != nil {
		return err
	}

	request.State = model.RequestAccepted
	sender.AddFriend(request.To)
	recipient.AddFriend(request.From)
	sender.RemoveOutgoingRequest(request.To)
	recipient.RemoveIncomingRequest(request.From)

	if err := s.flush(ctx); err != nil {
		return err
	}

	s.logger.Info("friend request accepted", "from", request.From, "to", request.To)
	return nil
}

// RejectFriendRequest settles a pending request without creating an
// edge. Only the recipient may reject.
func (s *Social) RejectFriendRequest(ctx context.Context, id uuid.UUID, acting string) error {
	return s.settle(ctx, id, acting, model.RequestRejected)
}

// CancelFriendRequest withdraws a pending request. Only the sender may
// cancel.
func (s *Social) CancelFriendRequest(ctx context.Context, id uuid.UUID, acting string) error {
	return s.settle(ctx, id, acting, model.RequestCanceled)
}

func (s *Social) settle(ctx context.Context, id uuid.UUID, acting string, state model.RequestState) error {
	request, err := s.getPendingRequest(ctx, id)
	if err != nil {
		return err
	}
	switch state {
	case model.RequestRejected:
		if request.To != acting {
			return apperrors.ErrNotRecipient
		}
	case model.RequestCanceled:
		if request.From != acting {
			return apperrors.ErrNotSender
		}
	}

	request.State = state

	// Settling tolerates a dangling participant: the pairing is cleared
	// wherever a user still resolves.
	if sender, err := s.identities.Get(ctx, request.From); err == nil {
		sender.RemoveOutgoingRequest(request.To)
	}
	if recipient, err := s.identities.Get(ctx, request.To); err == nil {
		recipient.RemoveIncomingRequest(request.From)
	}

	if err := s.flush(ctx); err != nil {
		return err
	}

	s.logger.Info("friend request settled", "from", request.From, "to", request.To, "state", state)
	return nil
}

// RemoveFriend drops the friendship edge symmetrically. Irreversible: a
// fresh request cycle is required to re-friend.
func (s *Social) RemoveFriend(ctx context.Context, handle, friend string) error {
	if handle == friend {
		return apperrors.ErrSelfReference
	}

	user, err := s.getUser(ctx, handle)
	if err != nil {
		return err
	}
	if !user.IsFriend(friend) {
		return apperrors.ErrNotFriends
	}

	user.RemoveFriend(friend)
	if other, err := s.identities.Get(ctx, friend); err == nil {
		other.RemoveFriend(handle)
	}

	if err := s.identities.Flush(ctx); err != nil {
		return err
	}

	s.logger.Info("friendship removed", "handle", handle, "friend", friend)
	return nil
}

// Friends lists the user's friends in friend-set order, skipping
// handles that no longer resolve.
func (s *Social) Friends(ctx context.Context, handle string) ([]*model.User, error) {
	user, err := s.getUser(ctx, handle)
	if err != nil {
		return nil, err
	}

	friends := make([]*model.User, 0, len(user.Friends))
	for _, h := range user.Friends {
		friend, err := s.identities.Get(ctx, h)
		if err != nil {
			continue
		}
		friends = append(friends, friend)
	}
	return friends, nil
}

// IncomingRequests lists pending requests addressed to handle.
func (s *Social) IncomingRequests(ctx context.Context, handle string) ([]*model.FriendRequest, error) {
	return s.pendingRequests(ctx, handle, func(r *model.FriendRequest) bool { return r.To == handle })
}

// OutgoingRequests lists pending requests sent by handle.
func (s *Social) OutgoingRequests(ctx context.Context, handle string) ([]*model.FriendRequest, error) {
	return s.pendingRequests(ctx, handle, func(r *model.FriendRequest) bool { return r.From == handle })
}

func (s *Social) pendingRequests(ctx context.Context, handle string, match func(*model.FriendRequest) bool) ([]*model.FriendRequest, error) {
	if _, err := s.getUser(ctx, handle); err != nil {
		return nil, err
	}

	all, err := s.requests.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	pending := make([]*model.FriendRequest, 0)
	for _, r := range all {
		if r.State == model.RequestPending && match(r) {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

func (s *Social) getUser(ctx context.Context, handle string) (*model.User, error) {
	user, err := s.identities.Get(ctx, handle)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Social) getPendingRequest(ctx context.Context, id uuid.UUID) (*model.FriendRequest, error) {
	request, err := s.requests.Get(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}
	if request.Terminal() {
		return nil, apperrors.ErrRequestSettled
	}
	return request, nil
}

func (s *Social) flush(ctx context.Context) error {
	if err := s.identities.Flush(ctx); err != nil {
		return err
	}
	return s.requests.Flush(ctx)
}
