package store

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

// Bootstrap loads every snapshot store and falls back to the demo
// dataset when persisted state is missing or unreadable. A corrupt
// snapshot resets all three stores rather than repairing one of them:
// data loss is accepted in exchange for always reaching a consistent
// state. Gateway failures are surfaced as StorageFailure, not reseeded.
func Bootstrap(ctx context.Context, identities *Identity, requests *Requests, conversations *Conversations, log *logger.Logger) error {
	err := initAll(ctx, identities, requests, conversations)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeStorageFailure) {
			return err
		}
		log.Warn("persisted snapshots unreadable, resetting to demo data", "error", err)
		identities.Reset()
		requests.Reset()
		conversations.Reset()
		return seedAndFlush(ctx, identities, requests, conversations, log)
	}

	if identities.Len() == 0 {
		return seedAndFlush(ctx, identities, requests, conversations, log)
	}
	return nil
}

func initAll(ctx context.Context, identities *Identity, requests *Requests, conversations *Conversations) error {
	if err := identities.Init(ctx); err != nil {
		return err
	}
	if err := requests.Init(ctx); err != nil {
		return err
	}
	return conversations.Init(ctx)
}

func seedAndFlush(ctx context.Context, identities *Identity, requests *Requests, conversations *Conversations, log *logger.Logger) error {
	if err := Seed(ctx, identities, requests, conversations); err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}
	if err := identities.Flush(ctx); err != nil {
		return err
	}
	if err := requests.Flush(ctx); err != nil {
		return err
	}
	if err := conversations.Flush(ctx); err != nil {
		return err
	}
	log.Info("seeded demo data", "users", identities.Len())
	return nil
}

type demoUser struct {
	displayName string
	handle      string
}

// Seed populates the stores with the demo directory: eight users, a
// direct and a group chat, one pending and one accepted friend request.
func Seed(ctx context.Context, identities *Identity, requests *Requests, conversations *Conversations) error {
	demo := []demoUser{
		{"Alex Volkov", "alex.volkov"},
		{"Maria Smirnova", "maria.s"},
		{"Dmitry Popov", "dmitry_p"},
		{"Katya Novikova", "katya_n"},
		{"Sergey Kozlov", "serg_kozlov"},
		{"Olga Morozova", "olga_m"},
		{"Ivan Petrov", "ivan_petrov"},
		{"Anna Sidorova", "anna_s"},
	}

	now := time.Now()
	users := make(map[string]*model.User, len(demo))
	for _, d := range demo {
		user := &model.User{
			Handle:      d.handle,
			DisplayName: d.displayName,
			Password:    "123456",
			Bio:         fmt.Sprintf("%s is on ConnectFlow", d.displayName),
			Presence:    model.PresenceOnline,
			Privacy:     model.DefaultPrivacyPolicy(),
			LastSeen:    now,
			CreatedAt:   now,
		}
		if err := identities.Create(ctx, user); err != nil {
			if errors.Is(err, model.ErrAlreadyExists) {
				continue
			}
			return err
		}
		users[d.handle] = user
	}

	users["alex.volkov"].Privacy.ProfileVisibility = model.VisibilityPrivate
	users["maria.s"].Privacy.MessagingPolicy = model.MessagingFriends
	users["dmitry_p"].Privacy.ShowPresence = false

	direct := &model.Conversation{
		ID:           uuid.New(),
		Participants: []string{"alex.volkov", "maria.s"},
		CreatedAt:    now,
	}
	direct.Append(demoMessage("alex.volkov", "Hi! How are you?", now))
	direct.Append(demoMessage("maria.s", "Hi! All good, thanks!", now.Add(time.Minute)))
	direct.Append(demoMessage("alex.volkov", "Great! Ready for the meetup?", now.Add(2*time.Minute)))

	group := &model.Conversation{
		ID:           uuid.New(),
		Participants: []string{"dmitry_p", "katya_n", "serg_kozlov"},
		CreatedAt:    now,
	}
	group.Append(demoMessage("dmitry_p", "Hi everyone!", now))
	group.Append(demoMessage("katya_n", "Hi!", now.Add(time.Minute)))
	group.Append(demoMessage("serg_kozlov", "Hello!", now.Add(2*time.Minute)))

	// Seeded history starts read.
	direct.UnreadCount = 0
	group.UnreadCount = 0

	if err := conversations.Add(ctx, direct); err != nil {
		return err
	}
	if err := conversations.Add(ctx, group); err != nil {
		return err
	}

	pending := &model.FriendRequest{
		ID:        uuid.New(),
		From:      "alex.volkov",
		To:        "maria.s",
		State:     model.RequestPending,
		CreatedAt: now,
	}
	accepted := &model.FriendRequest{
		ID:        uuid.New(),
		From:      "dmitry_p",
		To:        "katya_n",
		State:     model.RequestAccepted,
		CreatedAt: now,
	}
	if err := requests.Add(ctx, pending); err != nil {
		return err
	}
	if err := requests.Add(ctx, accepted); err != nil {
		return err
	}

	users["alex.volkov"].AddOutgoingRequest("maria.s")
	users["maria.s"].AddIncomingRequest("alex.volkov")
	users["dmitry_p"].AddFriend("katya_n")
	users["katya_n"].AddFriend("dmitry_p")

	return nil
}

func demoMessage(sender, body string, sentAt time.Time) model.Message {
	return model.Message{
		ID:     uuid.New(),
		Sender: sender,
		Body:   body,
		Kind:   model.MessageText,
		SentAt: sentAt,
	}
}
