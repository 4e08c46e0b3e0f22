package service

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dtroode/connectflow/internal/gateway/memory"
	"github.com/dtroode/connectflow/internal/model"
	"github.com/dtroode/connectflow/internal/store"
	"github.com/dtroode/connectflow/internal/testutil"
)

func testUser(handle, displayName string) *model.User {
	now := time.Now()
	return &model.User{
		Handle:      handle,
		DisplayName: displayName,
		Password:    "123456",
		Bio:         displayName + " is on ConnectFlow",
		Presence:    model.PresenceOnline,
		Privacy:     model.DefaultPrivacyPolicy(),
		LastSeen:    now,
		CreatedAt:   now,
	}
}

type stores struct {
	identities    *store.Identity
	requests      *store.Requests
	conversations *store.Conversations
	sessions      *store.Session
}

func newStores(t *testing.T, users ...*model.User) stores {
	t.Helper()
	g := memory.New()
	s := stores{
		identities:    store.NewIdentity(g),
		requests:      store.NewRequests(g),
		conversations: store.NewConversations(g),
		sessions:      store.NewSession(g),
	}
	for _, u := range users {
		require.NoError(t, s.identities.Create(context.Background(), u))
	}
	return s
}

func newSocial(t *testing.T, users ...*model.User) (*Social, stores) {
	t.Helper()
	s := newStores(t, users...)
	return NewSocial(s.identities, s.requests, testutil.MakeNoopLogger()), s
}

func newConversations(t *testing.T, users ...*model.User) (*Conversations, stores) {
	t.Helper()
	s := newStores(t, users...)
	return NewConversations(s.identities, s.conversations, testutil.MakeNoopLogger()), s
}

func newAccount(t *testing.T, avatars model.Storage, users ...*model.User) (*Account, stores) {
	t.Helper()
	s := newStores(t, users...)
	return NewAccount(s.identities, s.sessions, avatars, testutil.MakeNoopLogger()), s
}

// failingGateway refuses every persistence call.
type failingGateway struct{ err error }

func (g *failingGateway) Load(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, g.err
}
func (g *failingGateway) Save(_ context.Context, _ string, _ []byte) error { return g.err }
func (g *failingGateway) Delete(_ context.Context, _ string) error         { return g.err }

// fakeAvatarStorage is an in-memory model.Storage for avatar tests.
type fakeAvatarStorage struct {
	objects map[string][]byte
}

func newFakeAvatarStorage() *fakeAvatarStorage {
	return &fakeAvatarStorage{objects: make(map[string][]byte)}
}

func (f *fakeAvatarStorage) Upload(_ context.Context, key string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeAvatarStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, model.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeAvatarStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeAvatarStorage) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}
