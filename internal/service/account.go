package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/dtroode/connectflow/internal/apperrors"
	"github.com/dtroode/connectflow/internal/logger"
	"github.com/dtroode/connectflow/internal/model"
)

// Handles are the immutable join key: lowercase latin letters, digits,
// dots and underscores, at least three characters.
var handlePattern = regexp.MustCompile(`^[a-z0-9._]{3,}$`)

const minPasswordLength = 6

// Account manages registration, the active session snapshot and profile
// mutations. Passwords are stored and compared as opaque strings by
// design; this core carries no real credential handling.
type Account struct {
	identities model.IdentityStore
	sessions   model.SessionStore
	avatars    model.Storage
	logger     *logger.Logger
}

// NewAccount creates the account service. avatars may be nil when no
// object storage is configured; avatar operations then fail cleanly.
func NewAccount(identities model.IdentityStore, sessions model.SessionStore, avatars model.Storage, logger *logger.Logger) *Account {
	return &Account{
		identities: identities,
		sessions:   sessions,
		avatars:    avatars,
		logger:     logger,
	}
}

// RegisterParams contains parameters to create an account.
type RegisterParams struct {
	DisplayName     string
	Handle          string
	Password        string
	ConfirmPassword string
}

// Register validates and creates a new user, then opens its session.
func (s *Account) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	displayName := strings.TrimSpace(params.DisplayName)
	if displayName == "" {
		return nil, apperrors.ErrDisplayNameRequired
	}

	handle := strings.ToLower(strings.TrimSpace(params.Handle))
	if !handlePattern.MatchString(handle) {
		return nil, apperrors.ErrInvalidHandle
	}
	if len(params.Password) < minPasswordLength {
		return nil, apperrors.ErrPasswordTooShort
	}
	if params.Password != params.ConfirmPassword {
		return nil, apperrors.ErrPasswordMismatch
	}

	if _, err := s.identities.Get(ctx, handle); err == nil {
		return nil, apperrors.ErrHandleTaken
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("failed to check handle: %w", err)
	}

	now := time.Now()
	user := &model.User{
		Handle:      handle,
		DisplayName: displayName,
		Password:    params.Password,
		Bio:         fmt.Sprintf("%s is on ConnectFlow", displayName),
		Presence:    model.PresenceOnline,
		Privacy:     model.DefaultPrivacyPolicy(),
		LastSeen:    now,
		CreatedAt:   now,
	}

	if err := s.identities.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.identities.Flush(ctx); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, model.Session{User: *user, StartedAt: now}); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "handle", handle)
	return user, nil
}

// Login opens a session for an existing user.
func (s *Account) Login(ctx context.Context, handle, password string) (*model.User, error) {
	user, err := s.getUser(ctx, handle)
	if err != nil {
		return nil, err
	}
	if user.Password != password {
		return nil, apperrors.ErrWrongPassword
	}

	user.Presence = model.PresenceOnline
	user.LastSeen = time.Now()
	if err := s.identities.Flush(ctx); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, model.Session{User: *user, StartedAt: time.Now()}); err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "handle", handle)
	return user, nil
}

// Logout stamps last-seen, marks the user offline and clears the
// session. A missing user record does not block the session clear.
func (s *Account) Logout(ctx context.Context, handle string) error {
	if user, err := s.identities.Get(ctx, handle); err == nil {
		user.Presence = model.PresenceOffline
		user.LastSeen = time.Now()
		if err := s.identities.Flush(ctx); err != nil {
			return err
		}
	}
	return s.sessions.Clear(ctx)
}

// RestoreSession returns the active viewer after a restart. A session
// user missing from the directory is re-inserted from the session copy,
// since the directory snapshot may have been reset independently.
func (s *Account) RestoreSession(ctx context.Context) (*model.User, error) {
	session, err := s.sessions.Load(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	user, err := s.identities.Get(ctx, session.User.Handle)
	if errors.Is(err, model.ErrNotFound) {
		restored := session.User
		if err := s.identities.Create(ctx, &restored); err != nil {
			return nil, fmt.Errorf("failed to restore session user: %w", err)
		}
		if err := s.identities.Flush(ctx); err != nil {
			return nil, err
		}
		s.logger.Warn("session user missing from directory, restored from snapshot", "handle", restored.Handle)
		return &restored, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session user: %w", err)
	}
	return user, nil
}

// UpdateProfile edits display name and bio. The handle is the lookup
// key and is immutable post-registration.
func (s *Account) UpdateProfile(ctx context.Context, handle, displayName, bio string) (*model.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, apperrors.ErrDisplayNameRequired
	}

	user, err := s.getUser(ctx, handle)
	if err != nil {
		return nil, err
	}

	user.DisplayName = displayName
	user.Bio = strings.TrimSpace(bio)

	if err := s.identities.Flush(ctx); err != nil {
		return nil, err
	}
	s.refreshSession(ctx, user)
	return user, nil
}

// UpdatePrivacy replaces the user's privacy policy.
func (s *Account) UpdatePrivacy(ctx context.Context, handle string, policy model.PrivacyPolicy) error {
	user, err := s.getUser(ctx, handle)
	if err != nil {
		return err
	}

	user.Privacy = policy
	if err := s.identities.Flush(ctx); err != nil {
		return err
	}
	s.refreshSession(ctx, user)
	return nil
}

// ChangePassword verifies the current password and sets a new one.
func (s *Account) ChangePassword(ctx context.Context, handle, current, next, confirm string) error {
	user, err := s.getUser(ctx, handle)
	if err != nil {
		return err
	}
	if user.Password != current {
		return apperrors.ErrWrongPassword
	}
	if len(next) < minPasswordLength {
		return apperrors.ErrPasswordTooShort
	}
	if next != confirm {
		return apperrors.ErrPasswordMismatch
	}

	user.Password = next
	if err := s.identities.Flush(ctx); err != nil {
		return err
	}
	s.refreshSession(ctx, user)
	s.logger.Info("password changed", "handle", handle)
	return nil
}

// SetPresence updates the availability state.
func (s *Account) SetPresence(ctx context.Context, handle string, presence model.Presence) error {
	switch presence {
	case model.PresenceOnline, model.PresenceOffline, model.PresenceAway, model.PresenceDoNotDisturb:
	default:
		return apperrors.InvalidInput("unknown presence state")
	}

	user, err := s.getUser(ctx, handle)
	if err != nil {
		return err
	}

	user.Presence = presence
	if presence == model.PresenceOffline {
		user.LastSeen = time.Now()
	}
	if err := s.identities.Flush(ctx); err != nil {
		return err
	}
	s.refreshSession(ctx, user)
	return nil
}

// SetAvatar uploads the avatar blob and records its object key.
func (s *Account) SetAvatar(ctx context.Context, handle string, data io.Reader) (string, error) {
	if s.avatars == nil {
		return "", apperrors.ErrNoAvatarStorage
	}

	user, err := s.getUser(ctx, handle)
	if err != nil {
		return "", err
	}

	key := avatarKey(handle)
	if err := s.avatars.Upload(ctx, key, data); err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	user.AvatarRef = key
	if err := s.identities.Flush(ctx); err != nil {
		return "", err
	}
	s.refreshSession(ctx, user)
	return key, nil
}

// Avatar streams the stored avatar blob for a user.
func (s *Account) Avatar(ctx context.Context, handle string) (io.ReadCloser, error) {
	if s.avatars == nil {
		return nil, apperrors.ErrNoAvatarStorage
	}

	user, err := s.getUser(ctx, handle)
	if err != nil {
		return nil, err
	}
	if user.AvatarRef == "" {
		return nil, apperrors.NotFound("user has no avatar")
	}

	reader, err := s.avatars.Download(ctx, user.AvatarRef)
	if err != nil {
		return nil, fmt.Errorf("failed to download avatar: %w", err)
	}
	return reader, nil
}

// RemoveAvatar deletes the blob and clears the reference.
func (s *Account) RemoveAvatar(ctx context.Context, handle string) error {
	user, err := s.getUser(ctx, handle)
	if err != nil {
		return err
	}
	if user.AvatarRef == "" {
		return nil
	}

	if s.avatars != nil {
		if err := s.avatars.Delete(ctx, user.AvatarRef); err != nil {
			return fmt.Errorf("failed to delete avatar: %w", err)
		}
	}

	user.AvatarRef = ""
	if err := s.identities.Flush(ctx); err != nil {
		return err
	}
	s.refreshSession(ctx, user)
	return nil
}

func (s *Account) getUser(ctx context.Context, handle string) (*model.User, error) {
	user, err := s.identities.Get(ctx, handle)
	if errors.Is(err, model.ErrNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// refreshSession keeps the session snapshot in step with directory
// mutations of the active viewer. Best effort: a stale snapshot only
// affects the next restart.
func (s *Account) refreshSession(ctx context.Context, user *model.User) {
	session, err := s.sessions.Load(ctx)
	if err != nil || session.User.Handle != user.Handle {
		return
	}
	if err := s.sessions.Save(ctx, model.Session{User: *user, StartedAt: session.StartedAt}); err != nil {
		s.logger.Warn("failed to refresh session snapshot", "handle", user.Handle, "error", err)
	}
}

func avatarKey(handle string) string {
	return "avatars/" + handle
}
