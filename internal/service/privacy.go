package service

import "github.com/dtroode/connectflow/internal/model"

// Axis names one independently configurable privacy dimension.
type Axis string

const (
	AxisProfileVisibility Axis = "profile_visibility"
	AxisShowPresence      Axis = "show_presence"
	AxisAcceptRequests    Axis = "accept_friend_requests"
	AxisMessaging         Axis = "messaging_policy"
	AxisShowLastSeen      Axis = "show_last_seen"
)

// Evaluate decides whether viewer may perform the action governed by
// axis on subject. It is pure: the only state consulted is the
// subject's policy and friend set.
//
// Unrecognized tier values permit. A snapshot written under an older
// schema must not lock a user out of their own data, so the gate fails
// open on drift.
func Evaluate(subject *model.User, axis Axis, viewer string) bool {
	if subject == nil {
		return true
	}

	switch axis {
	case AxisProfileVisibility:
		return evaluateTier(string(subject.Privacy.ProfileVisibility), subject, viewer)
	case AxisMessaging:
		return evaluateTier(string(subject.Privacy.MessagingPolicy), subject, viewer)
	case AxisAcceptRequests:
		return subject.Privacy.AcceptFriendRequests
	case AxisShowPresence:
		return subject.Privacy.ShowPresence
	case AxisShowLastSeen:
		return subject.Privacy.ShowLastSeen
	}
	return true
}

func evaluateTier(tier string, subject *model.User, viewer string) bool {
	switch tier {
	case "public", "everyone":
		return true
	case "friends":
		return subject.IsFriend(viewer)
	case "private", "nobody":
		return false
	}
	return true
}

// CanViewProfile reports whether viewer may see the subject's profile.
func CanViewProfile(subject *model.User, viewer string) bool {
	return Evaluate(subject, AxisProfileVisibility, viewer)
}

// CanMessage reports whether viewer may message the subject.
func CanMessage(subject *model.User, viewer string) bool {
	return Evaluate(subject, AxisMessaging, viewer)
}

// AcceptsFriendRequests reports whether the subject takes new requests.
func AcceptsFriendRequests(subject *model.User) bool {
	return Evaluate(subject, AxisAcceptRequests, "")
}

// ShowsPresenceTo reports whether viewer may see the subject's presence.
func ShowsPresenceTo(subject *model.User, viewer string) bool {
	return Evaluate(subject, AxisShowPresence, viewer)
}

// ShowsLastSeenTo reports whether viewer may see when the subject was
// last online.
func ShowsLastSeenTo(subject *model.User, viewer string) bool {
	return Evaluate(subject, AxisShowLastSeen, viewer)
}
