package postgres

import (
	"time"

	"RosterRoyalsServer/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSummary reads (lead..., id, username, points). lead receives any columns
// selected before the user.
func scanSummary(row rowScanner, lead ...any) (domain.UserSummary, error) {
	var (
		id pgtype.UUID
		u  domain.UserSummary
	)
	dest := append(lead, &id, &u.Username, &u.Points)
	if err := row.Scan(dest...); err != nil {
		return domain.UserSummary{}, err
	}
	u.ID = uuidOrEmpty(id)
	return u, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func textOrEmpty(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func timestamptzPtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	ts := t.Time.UTC()
	return &ts
}

func uuidOrEmpty(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// sportsOrEmpty keeps a NULL or empty sports array from encoding as null.
func sportsOrEmpty(a pgtype.FlatArray[string]) []string {
	if len(a) == 0 {
		return []string{}
	}
	return []string(a)
}
