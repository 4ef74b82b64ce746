package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNotificationDerivesRequiresAction(t *testing.T) {
	cases := map[NotificationType]bool{
		NotificationFriendRequest:  true,
		NotificationGroupInvite:    true,
		NotificationFriendAccepted: false,
		NotificationInfo:           false,
	}
	for typ, want := range cases {
		n := NewNotification("u1", typ, "hello", "ref")
		require.Equal(t, want, n.RequiresAction, "type %s", typ)
		require.False(t, n.IsRead)
		require.Equal(t, "ref", n.ReferenceID)
	}
}

func TestNewNotificationTruncatesMessage(t *testing.T) {
	n := NewNotification("u1", NotificationInfo, strings.Repeat("é", 300), "")
	require.Len(t, []rune(n.Message), 255)
}

func TestRequestStatusTransitions(t *testing.T) {
	require.True(t, RequestPending.CanTransition(RequestAccepted))
	require.True(t, RequestPending.CanTransition(RequestRejected))
	require.False(t, RequestPending.CanTransition(RequestPending))
	require.False(t, RequestAccepted.CanTransition(RequestRejected))
	require.False(t, RequestRejected.CanTransition(RequestAccepted))
}

func TestParseRequestAction(t *testing.T) {
	a, err := ParseRequestAction(" Accept ")
	require.NoError(t, err)
	require.Equal(t, ActionAccept, a)
	require.Equal(t, RequestAccepted, a.Resolve())

	a, err = ParseRequestAction("reject")
	require.NoError(t, err)
	require.Equal(t, RequestRejected, a.Resolve())

	_, err = ParseRequestAction("maybe")
	require.ErrorIs(t, err, ErrValidation)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Contains(t, ve.Fields, "action")
}

func TestKindedErrors(t *testing.T) {
	err := fmt.Errorf("send: %w", Conflict("friend request already sent"))
	require.ErrorIs(t, err, ErrConflict)
	require.NotErrorIs(t, err, ErrNotFound)
	require.Equal(t, "friend request already sent", Message(err))

	cause := errors.New("dial tcp: refused")
	up := Upstream("odds provider unavailable", cause)
	require.ErrorIs(t, up, ErrUpstream)
	require.ErrorIs(t, up, cause)

	require.Equal(t, "", Message(errors.New("plain")))
}

func TestIsPresident(t *testing.T) {
	g := BettingGroup{PresidentID: "p"}
	require.True(t, g.IsPresident("p"))
	require.False(t, g.IsPresident("m"))
	require.False(t, BettingGroup{}.IsPresident(""))
}
