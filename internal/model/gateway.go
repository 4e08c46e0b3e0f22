package model

import "context"

// Snapshot keys in the persistence gateway. Every mutating operation
// overwrites the affected snapshot wholesale; there are no incremental
// diffs.
const (
	KeyUsers          = "users"
	KeyConversations  = "conversations"
	KeyFriendRequests = "friend_requests"
	KeyCurrentSession = "current_session"
)

// Gateway is the persistence boundary of the core: a synchronous
// key-value store of serialized snapshots. Load reports a missing key
// with ok == false rather than an error.
type Gateway interface {
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
