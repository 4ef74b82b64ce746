package postgres

import (
	"context"
	"testing"

	"RosterRoyalsServer/internal/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var searchColumns = []string{"id", "username", "points", "friend_status"}

func TestSearchUsersExcludesCallerStaffAndDisabled(t *testing.T) {
	mock := newMockDB(t)
	store := NewUserSearchStore(mock)

	mock.ExpectQuery(sqlIn(
		"FROM users u",
		"WHERE u.status = 'active'",
		"AND NOT u.is_staff",
		"AND u.id <> $1",
		"AND u.username ILIKE $2",
		"ORDER BY u.username ASC",
		"LIMIT $3",
	)).
		WithArgs(aliceID, "%bo%", 10).
		WillReturnRows(pgxmock.NewRows(searchColumns).
			AddRow(pgUUID(bobID), "bob", 900, domain.FriendStatusFriends).
			AddRow(pgUUID(carolID), "bobcat", 1000, domain.FriendStatusNone))

	got, err := store.SearchUsers(context.Background(), aliceID, " bo ", 10)
	require.NoError(t, err)
	require.Equal(t, []domain.UserSearchResult{
		{ID: bobID, Username: "bob", Points: 900, FriendStatus: domain.FriendStatusFriends},
		{ID: carolID, Username: "bobcat", Points: 1000, FriendStatus: domain.FriendStatusNone},
	}, got)
}

func TestSearchUsersFriendStatusPrecedence(t *testing.T) {
	mock := newMockDB(t)
	store := NewUserSearchStore(mock)

	// friendship is checked first, then the caller's own pending request.
	mock.ExpectQuery(sqlIn(
		"CASE",
		"FROM friendships f", "WHERE f.user_id = $1 AND f.friend_id = u.id",
		"THEN 'friends'",
		"FROM friend_requests r", "WHERE r.from_user_id = $1 AND r.to_user_id = u.id AND r.status = 'pending'",
		"THEN 'pending'",
		"ELSE 'none'",
		"END",
	)).
		WithArgs(aliceID, "%bob%", 10).
		WillReturnRows(pgxmock.NewRows(searchColumns).
			AddRow(pgUUID(bobID), "bob", 900, domain.FriendStatusPending))

	got, err := store.SearchUsers(context.Background(), aliceID, "bob", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, domain.FriendStatusPending, got[0].FriendStatus)
}

func TestSearchUsersLimitAndEscaping(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		query     string
		wantLimit int
		wantLike  string
	}{
		{name: "default cap", limit: 0, query: "bo", wantLimit: 10, wantLike: "%bo%"},
		{name: "oversized cap", limit: 500, query: "bo", wantLimit: 10, wantLike: "%bo%"},
		{name: "explicit", limit: 25, query: "bo", wantLimit: 25, wantLike: "%bo%"},
		{name: "wildcards escaped", limit: 10, query: `b_o%\`, wantLimit: 10, wantLike: `%b\_o\%\\%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDB(t)
			store := NewUserSearchStore(mock)

			mock.ExpectQuery(sqlIn("FROM users u", "LIMIT $3")).
				WithArgs(aliceID, tt.wantLike, tt.wantLimit).
				WillReturnRows(pgxmock.NewRows(searchColumns))

			got, err := store.SearchUsers(context.Background(), aliceID, tt.query, tt.limit)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Empty(t, got)
		})
	}
}

func TestSearchUsersBlankQuerySkipsDatabase(t *testing.T) {
	mock := newMockDB(t)
	got, err := NewUserSearchStore(mock).SearchUsers(context.Background(), aliceID, "   ", 10)
	require.NoError(t, err)
	require.Empty(t, got)
}
