package migrations

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestNamesAreOrdered(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	require.Equal(t, []string{
		"sql/0001_users.sql",
		"sql/0002_relationships.sql",
		"sql/0003_groups.sql",
	}, names)
}

func TestApplyExecutesAllMigrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS friend_requests").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS betting_groups").WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := Apply(context.Background(), db)
	require.NoError(t, err)
	require.Equal(t, []string{
		"sql/0001_users.sql",
		"sql/0002_relationships.sql",
		"sql/0003_groups.sql",
	}, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyStopsOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(".*").WillReturnError(errors.New("boom"))

	applied, err := Apply(context.Background(), db)
	require.Error(t, err)
	require.Equal(t, []string{"sql/0001_users.sql"}, applied)
	require.Contains(t, err.Error(), "0002_relationships.sql")
	require.NoError(t, mock.ExpectationsWereMet())
}
