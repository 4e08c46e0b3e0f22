package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/connectflow/internal/gateway/memory"
	"github.com/dtroode/connectflow/internal/model"
)

func demoDirectoryUser(handle string) *model.User {
	now := time.Now()
	return &model.User{
		Handle:      handle,
		DisplayName: handle,
		Password:    "123456",
		Presence:    model.PresenceOnline,
		Privacy:     model.DefaultPrivacyPolicy(),
		LastSeen:    now,
		CreatedAt:   now,
	}
}

func TestIdentity_RoundTrip(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	identities := NewIdentity(g)
	require.NoError(t, identities.Create(ctx, demoDirectoryUser("alex.volkov")))
	require.NoError(t, identities.Create(ctx, demoDirectoryUser("maria.s")))
	require.NoError(t, identities.Create(ctx, demoDirectoryUser("dmitry_p")))
	require.NoError(t, identities.Flush(ctx))

	reloaded := NewIdentity(g)
	require.NoError(t, reloaded.Init(ctx))
	assert.Equal(t, 3, reloaded.Len())

	user, err := reloaded.Get(ctx, "maria.s")
	require.NoError(t, err)
	assert.Equal(t, "maria.s", user.Handle)

	// Insertion order survives the snapshot round trip.
	all, err := reloaded.All(ctx)
	require.NoError(t, err)
	handles := make([]string, len(all))
	for i, u := range all {
		handles[i] = u.Handle
	}
	assert.Equal(t, []string{"alex.volkov", "maria.s", "dmitry_p"}, handles)
}

func TestIdentity_GetMissing(t *testing.T) {
	identities := NewIdentity(memory.New())

	_, err := identities.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestIdentity_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	identities := NewIdentity(memory.New())

	require.NoError(t, identities.Create(ctx, demoDirectoryUser("alex.volkov")))
	err := identities.Create(ctx, demoDirectoryUser("alex.volkov"))
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
	assert.Equal(t, 1, identities.Len())
}

func TestIdentity_InitEmptyGateway(t *testing.T) {
	identities := NewIdentity(memory.New())

	require.NoError(t, identities.Init(context.Background()))
	assert.Zero(t, identities.Len())
}

func TestRequests_RoundTrip(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	requests := NewRequests(g)
	pending := &model.FriendRequest{
		ID:        uuid.New(),
		From:      "alex.volkov",
		To:        "maria.s",
		State:     model.RequestPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, requests.Add(ctx, pending))
	require.NoError(t, requests.Flush(ctx))

	reloaded := NewRequests(g)
	require.NoError(t, reloaded.Init(ctx))

	got, err := reloaded.Get(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, got.State)

	got, err = reloaded.Pending(ctx, "alex.volkov", "maria.s")
	require.NoError(t, err)
	assert.Equal(t, pending.ID, got.ID)
}

func TestRequests_PendingIgnoresSettled(t *testing.T) {
	ctx := context.Background()
	requests := NewRequests(memory.New())

	settled := &model.FriendRequest{
		ID:    uuid.New(),
		From:  "alex.volkov",
		To:    "maria.s",
		State: model.RequestRejected,
	}
	require.NoError(t, requests.Add(ctx, settled))

	_, err := requests.Pending(ctx, "alex.volkov", "maria.s")
	assert.ErrorIs(t, err, model.ErrNotFound)

	// Direction matters.
	require.NoError(t, requests.Add(ctx, &model.FriendRequest{
		ID:    uuid.New(),
		From:  "maria.s",
		To:    "alex.volkov",
		State: model.RequestPending,
	}))
	_, err = requests.Pending(ctx, "alex.volkov", "maria.s")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestConversations_RoundTrip(t *testing.T) {
	ctx := context.Background()
	g := memory.New()

	conversations := NewConversations(g)
	direct := &model.Conversation{
		ID:           uuid.New(),
		Participants: []string{"alex.volkov", "maria.s"},
		CreatedAt:    time.Now(),
	}
	direct.Append(model.Message{
		ID:     uuid.New(),
		Sender: "alex.volkov",
		Body:   "hello",
		Kind:   model.MessageText,
		SentAt: time.Now(),
	})
	require.NoError(t, conversations.Add(ctx, direct))
	require.NoError(t, conversations.Flush(ctx))

	reloaded := NewConversations(g)
	require.NoError(t, reloaded.Init(ctx))

	got, err := reloaded.Get(ctx, direct.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Body)
	assert.Equal(t, 1, got.UnreadCount)
}

func TestSession_RoundTrip(t *testing.T) {
	ctx := context.Background()
	sessions := NewSession(memory.New())

	_, err := sessions.Load(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)

	saved := model.Session{User: *demoDirectoryUser("alex.volkov"), StartedAt: time.Now()}
	require.NoError(t, sessions.Save(ctx, saved))

	loaded, err := sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alex.volkov", loaded.User.Handle)

	require.NoError(t, sessions.Clear(ctx))
	_, err = sessions.Load(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSession_CorruptRecordIsLoggedOut(t *testing.T) {
	ctx := context.Background()
	g := memory.New()
	require.NoError(t, g.Save(ctx, model.KeyCurrentSession, []byte("{not json")))

	sessions := NewSession(g)
	_, err := sessions.Load(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
