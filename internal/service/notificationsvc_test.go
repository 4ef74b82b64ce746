package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"RosterRoyalsServer/internal/domain"
	"RosterRoyalsServer/internal/notifications"

	"github.com/stretchr/testify/require"
)

type stubTokensStore struct {
	t *testing.T

	upsertFunc func(context.Context, string, string, string, time.Time) (domain.NotificationToken, error)
	deleteFunc func(context.Context, string, string) error
	listFunc   func(context.Context, string) ([]domain.NotificationToken, error)
}

func (s *stubTokensStore) UpsertToken(ctx context.Context, userID, token, platform string, when time.Time) (domain.NotificationToken, error) {
	if s.upsertFunc != nil {
		return s.upsertFunc(ctx, userID, token, platform, when)
	}
	s.t.Fatalf("UpsertToken called unexpectedly")
	return domain.NotificationToken{}, errors.New("unexpected call")
}

func (s *stubTokensStore) DeleteToken(ctx context.Context, userID, token string) error {
	if s.deleteFunc != nil {
		return s.deleteFunc(ctx, userID, token)
	}
	s.t.Fatalf("DeleteToken called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubTokensStore) ListTokens(ctx context.Context, userID string) ([]domain.NotificationToken, error) {
	if s.listFunc != nil {
		return s.listFunc(ctx, userID)
	}
	s.t.Fatalf("ListTokens called unexpectedly")
	return nil, errors.New("unexpected call")
}

type sentPush struct {
	token string
	msg   notifications.Message
}

type stubSender struct {
	sent []sentPush
	errs map[string]error
}

func (s *stubSender) Send(_ context.Context, token string, msg notifications.Message) error {
	s.sent = append(s.sent, sentPush{token: token, msg: msg})
	return s.errs[token]
}

func TestPushSkipsInformational(t *testing.T) {
	sender := &stubSender{}
	svc := &NotificationService{Tokens: &stubTokensStore{t: t}, Sender: sender}

	svc.Push(context.Background(), domain.NewNotification("u1", domain.NotificationInfo, "bob joined", ""))
	require.Empty(t, sender.sent)
}

func TestPushSendsPerPlatformAndPrunesInvalid(t *testing.T) {
	var deleted []string
	tokens := &stubTokensStore{
		t: t,
		listFunc: func(_ context.Context, userID string) ([]domain.NotificationToken, error) {
			require.Equal(t, "u1", userID)
			return []domain.NotificationToken{
				{Token: "ios-1", Platform: "ios"},
				{Token: "android-1", Platform: "android"},
				{Token: "stale", Platform: "android"},
			}, nil
		},
		deleteFunc: func(_ context.Context, _ string, token string) error {
			deleted = append(deleted, token)
			return nil
		},
	}
	sender := &stubSender{errs: map[string]error{
		"stale":     fmt.Errorf("%w: gone", notifications.ErrInvalidToken),
		"android-1": errors.New("timeout"),
	}}
	svc := &NotificationService{Tokens: tokens, Sender: sender}

	n := domain.NewNotification("u1", domain.NotificationGroupInvite, "ana invited you to join Sunday League", "inv-1")
	n.ID = "n1"
	svc.Push(context.Background(), n)

	require.Len(t, sender.sent, 3)
	require.NotNil(t, sender.sent[0].msg.Notification, "ios gets a visible alert")
	require.Equal(t, "Group invite", sender.sent[0].msg.Notification.Title)
	require.Nil(t, sender.sent[1].msg.Notification)
	require.Equal(t, "inv-1", sender.sent[1].msg.Data["reference_id"])
	require.Equal(t, []string{"stale"}, deleted)
}

func TestRegisterTokenValidation(t *testing.T) {
	svc := &NotificationService{Tokens: &stubTokensStore{t: t}}

	_, err := svc.RegisterToken(context.Background(), "u1", " ", "ios")
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.RegisterToken(context.Background(), "u1", "tok", "windows")
	require.ErrorIs(t, err, domain.ErrValidation)

	svc.Tokens = &stubTokensStore{t: t, upsertFunc: func(_ context.Context, userID, token, platform string, when time.Time) (domain.NotificationToken, error) {
		require.Equal(t, "android", platform)
		return domain.NotificationToken{UserID: userID, Token: token, Platform: platform, CreatedAt: when}, nil
	}}
	tok, err := svc.RegisterToken(context.Background(), "u1", " tok ", "Android")
	require.NoError(t, err)
	require.Equal(t, "tok", tok.Token)
}

func TestMarkAllReadSweepsInformationalOnly(t *testing.T) {
	store := newMemStore(alice, bob)
	store.insertNotification(domain.NewNotification(alice.ID, domain.NotificationFriendAccepted, "bob accepted your friend request", ""))
	store.insertNotification(domain.NewNotification(alice.ID, domain.NotificationInfo, "bob joined Sunday League", ""))
	store.insertNotification(domain.NewNotification(alice.ID, domain.NotificationGroupInvite, "bob invited you to join Hoops", "inv-9"))
	store.insertNotification(domain.NewNotification(bob.ID, domain.NotificationInfo, "untouched", ""))

	svc := &NotificationService{Notifications: store}
	require.NoError(t, svc.MarkAllRead(context.Background(), alice.ID))

	left, err := svc.List(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, domain.NotificationGroupInvite, left[0].Type)
	require.True(t, left[0].IsRead)
	require.True(t, left[0].RequiresAction)

	bobs, err := svc.List(context.Background(), bob.ID)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	require.False(t, bobs[0].IsRead)
}

func TestListNewestFirst(t *testing.T) {
	store := newMemStore(alice)
	store.insertNotification(domain.NewNotification(alice.ID, domain.NotificationInfo, "older", ""))
	store.insertNotification(domain.NewNotification(alice.ID, domain.NotificationInfo, "newer", ""))

	svc := &NotificationService{Notifications: store}
	got, err := svc.List(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Equal(t, "newer", got[0].Message)
	require.Equal(t, "older", got[1].Message)
}
