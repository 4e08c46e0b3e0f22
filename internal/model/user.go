package model

import (
	"context"
	"time"
)

// IdentityStore defines the directory of known users, keyed by handle.
// Implementations keep insertion order stable: listing order is the
// tie-break for directory search ranking.
type IdentityStore interface {
	Get(ctx context.Context, handle string) (*User, error)
	All(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, user *User) error
	Flush(ctx context.Context) error
}

// Presence enumerates user availability states.
type Presence string

const (
	PresenceOnline       Presence = "online"
	PresenceOffline      Presence = "offline"
	PresenceAway         Presence = "away"
	PresenceDoNotDisturb Presence = "dnd"
)

// Visibility is a tiered privacy level for profile-like axes.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityFriends Visibility = "friends"
	VisibilityPrivate Visibility = "private"
)

// MessagingPolicy is a tiered privacy level for the messaging axis.
type MessagingPolicy string

const (
	MessagingEveryone MessagingPolicy = "everyone"
	MessagingFriends  MessagingPolicy = "friends"
	MessagingNobody   MessagingPolicy = "nobody"
)

// PrivacyPolicy holds the five independently settable privacy axes of a
// user. It is owned exclusively by its user and evaluated against the
// viewer's relationship to that user.
type PrivacyPolicy struct {
	ProfileVisibility    Visibility      `json:"profile_visibility"`
	ShowPresence         bool            `json:"show_presence"`
	AcceptFriendRequests bool            `json:"accept_friend_requests"`
	MessagingPolicy      MessagingPolicy `json:"messaging_policy"`
	ShowLastSeen         bool            `json:"show_last_seen"`
}

// DefaultPrivacyPolicy returns the policy assigned on registration.
func DefaultPrivacyPolicy() PrivacyPolicy {
	return PrivacyPolicy{
		ProfileVisibility:    VisibilityPublic,
		ShowPresence:         true,
		AcceptFriendRequests: true,
		MessagingPolicy:      MessagingEveryone,
		ShowLastSeen:         true,
	}
}

// User is an identity record. Handle is the immutable join key: friend
// lists, request sets and conversation participants reference users by
// handle only, never by pointer, so a missing user degrades to a lookup
// miss instead of a dangling reference.
type User struct {
	Handle           string        `json:"handle"`
	DisplayName      string        `json:"display_name"`
	Password         string        `json:"password"`
	Bio              string        `json:"bio"`
	AvatarRef        string        `json:"avatar_ref,omitempty"`
	Presence         Presence      `json:"presence"`
	Friends          []string      `json:"friends"`
	IncomingRequests []string      `json:"incoming_requests"`
	OutgoingRequests []string      `json:"outgoing_requests"`
	Privacy          PrivacyPolicy `json:"privacy"`
	LastSeen         time.Time     `json:"last_seen"`
	CreatedAt        time.Time     `json:"created_at"`
}

// IsFriend reports whether handle is in the user's friend set.
func (u *User) IsFriend(handle string) bool {
	return containsHandle(u.Friends, handle)
}

// AddFriend inserts handle into the friend set. A user never friends
// itself and duplicates are ignored.
func (u *User) AddFriend(handle string) {
	if handle == u.Handle {
		return
	}
	u.Friends = appendHandle(u.Friends, handle)
}

// RemoveFriend drops handle from the friend set.
func (u *User) RemoveFriend(handle string) {
	u.Friends = removeHandle(u.Friends, handle)
}

// HasIncomingRequest reports whether a request from handle is recorded.
func (u *User) HasIncomingRequest(handle string) bool {
	return containsHandle(u.IncomingRequests, handle)
}

// HasOutgoingRequest reports whether a request to handle is recorded.
func (u *User) HasOutgoingRequest(handle string) bool {
	return containsHandle(u.OutgoingRequests, handle)
}

func (u *User) AddIncomingRequest(handle string) {
	if handle == u.Handle {
		return
	}
	u.IncomingRequests = appendHandle(u.IncomingRequests, handle)
}

func (u *User) RemoveIncomingRequest(handle string) {
	u.IncomingRequests = removeHandle(u.IncomingRequests, handle)
}

func (u *User) AddOutgoingRequest(handle string) {
	if handle == u.Handle {
		return
	}
	u.OutgoingRequests = appendHandle(u.OutgoingRequests, handle)
}

func (u *User) RemoveOutgoingRequest(handle string) {
	u.OutgoingRequests = removeHandle(u.OutgoingRequests, handle)
}

func containsHandle(handles []string, handle string) bool {
	for _, h := range handles {
		if h == handle {
			return true
		}
	}
	return false
}

func appendHandle(handles []string, handle string) []string {
	if containsHandle(handles, handle) {
		return handles
	}
	return append(handles, handle)
}

func removeHandle(handles []string, handle string) []string {
	out := handles[:0]
	for _, h := range handles {
		if h != handle {
			out = append(out, h)
		}
	}
	return out
}
