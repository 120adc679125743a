package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"routine-planner/internal/model"
)

// ProfileService resolves users from the front ends and edits their profile.
type ProfileService struct {
	users  UserStore
	logger *zap.Logger
}

func NewProfileService(users UserStore, logger *zap.Logger) *ProfileService {
	return &ProfileService{users: users, logger: logger}
}

// FromTelegram returns the user behind a chat, registering it on first contact.
func (s *ProfileService) FromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	return s.users.UpsertFromTelegram(ctx, telegramID, firstName, lastName, username)
}

// FromEmail returns the user with the address, registering it if needed.
func (s *ProfileService) FromEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	return s.users.UpsertByEmail(ctx, email)
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.users.FindByID(ctx, userID)
}

// SetNotificationTime sets the daily summary time; "" turns summaries off.
func (s *ProfileService) SetNotificationTime(ctx context.Context, userID, hhmm string) (*model.User, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	hhmm = strings.TrimSpace(hhmm)
	if hhmm != "" && !model.ValidClock(hhmm) {
		return nil, ErrInvalidTime
	}
	user, err := s.users.SetNotificationTime(ctx, userID, hhmm)
	if err != nil {
		return nil, err
	}
	s.logger.Info("notification time set", zap.String("user_id", userID), zap.String("time", hhmm))
	return user, nil
}
