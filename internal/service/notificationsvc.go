package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"RosterRoyalsServer/internal/domain"
	"RosterRoyalsServer/internal/metrics"
	"RosterRoyalsServer/internal/notifications"

	"go.uber.org/zap"
)

type NotificationsStore interface {
	ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAllReadAndSweep(ctx context.Context, userID string) (marked, swept int64, err error)
}

type NotificationTokensStore interface {
	UpsertToken(ctx context.Context, userID, token, platform string, when time.Time) (domain.NotificationToken, error)
	DeleteToken(ctx context.Context, userID, token string) error
	ListTokens(ctx context.Context, userID string) ([]domain.NotificationToken, error)
}

type PushSender interface {
	Send(ctx context.Context, token string, msg notifications.Message) error
}

type NotificationService struct {
	Notifications NotificationsStore
	Tokens        NotificationTokensStore
	Sender        PushSender
	Logger        *zap.Logger
	Now           func() time.Time
}

func (s *NotificationService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.Notifications.ListNotifications(ctx, userID)
}

// MarkAllRead marks everything read and deletes the read notifications that
// need no action.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	_, swept, err := s.Notifications.MarkAllReadAndSweep(ctx, userID)
	if err != nil {
		return err
	}
	metrics.NotificationsSwept(swept)
	return nil
}

func (s *NotificationService) RegisterToken(ctx context.Context, userID, token, platform string) (domain.NotificationToken, error) {
	if s.Tokens == nil {
		return domain.NotificationToken{}, errors.New("notifications unavailable")
	}
	token = strings.TrimSpace(token)
	platform = strings.TrimSpace(strings.ToLower(platform))
	fields := map[string]string{}
	if token == "" {
		fields["token"] = "required"
	}
	switch platform {
	case "android", "ios":
	case "":
		fields["platform"] = "required"
	default:
		fields["platform"] = "must be ios or android"
	}
	if len(fields) > 0 {
		return domain.NotificationToken{}, domain.NewValidationError(fields)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return s.Tokens.UpsertToken(ctx, userID, token, platform, now().UTC().Truncate(time.Millisecond))
}

func (s *NotificationService) DeleteToken(ctx context.Context, userID, token string) error {
	if s.Tokens == nil {
		return errors.New("notifications unavailable")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.NewValidationError(map[string]string{"token": "required"})
	}
	return s.Tokens.DeleteToken(ctx, userID, token)
}

// Push sends an action-required notification to the recipient's devices.
// Failures are logged and never reach the caller; tokens the provider reports
// as unregistered are dropped.
func (s *NotificationService) Push(ctx context.Context, n domain.Notification) {
	if !n.RequiresAction || s.Tokens == nil || s.Sender == nil {
		return
	}
	log := s.logger().With(zap.String("user_id", n.UserID), zap.String("notification_type", string(n.Type)))

	tokens, err := s.Tokens.ListTokens(ctx, n.UserID)
	if err != nil {
		log.Error("notifications: list tokens failed", zap.Error(err))
		return
	}
	if len(tokens) == 0 {
		return
	}

	data := map[string]string{
		"type":            string(n.Type),
		"notification_id": n.ID,
		"reference_id":    n.ReferenceID,
		"message":         n.Message,
	}
	dataOnly := notifications.Message{Data: data}
	alert := notifications.Message{
		Data:         data,
		Notification: &notifications.Notification{Title: pushTitle(n.Type), Body: n.Message},
	}

	for _, t := range tokens {
		msg := dataOnly
		if t.Platform == "ios" {
			msg = alert
		}
		err := s.Sender.Send(ctx, t.Token, msg)
		if err == nil {
			continue
		}
		if errors.Is(err, notifications.ErrInvalidToken) {
			if delErr := s.Tokens.DeleteToken(ctx, n.UserID, t.Token); delErr != nil {
				log.Error("notifications: delete invalid token failed", zap.Error(delErr))
			}
			continue
		}
		log.Warn("notifications: send failed", zap.Error(err))
	}
}

func pushTitle(t domain.NotificationType) string {
	switch t {
	case domain.NotificationFriendRequest:
		return "Friend request"
	case domain.NotificationGroupInvite:
		return "Group invite"
	default:
		return "Roster Royals"
	}
}
