package postgres

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceID  = "0b8f3c2e-51a4-4d0e-9a57-6c1f0e2d9a11"
	bobID    = "1c9e4d3f-62b5-4e1f-8b68-7d2a1f3eab22"
	carolID  = "2dae5e40-73c6-4f20-9c79-8e3b2a4fbc33"
	groupID  = "3ebf6f51-84d7-4031-ad8a-9f4c3b50cd44"
	recordID = "4fc07062-95e8-4142-be9b-a05d4c61de55"
	noteID   = "50d18173-a6f9-4253-8fac-b16e5d72ef66"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func pgUUID(s string) pgtype.UUID {
	return pgtype.UUID{Bytes: [16]byte(uuid.MustParse(s)), Valid: true}
}

// sqlIn builds a pattern matching SQL that contains every fragment, in order.
// Whitespace in the statement is collapsed before matching.
func sqlIn(fragments ...string) string {
	quoted := make([]string, len(fragments))
	for i, f := range fragments {
		quoted[i] = regexp.QuoteMeta(f)
	}
	return "(?s)" + strings.Join(quoted, ".*")
}
