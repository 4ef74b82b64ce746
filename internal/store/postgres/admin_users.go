package postgres

import (
	"context"
	"fmt"
	"strings"

	"RosterRoyalsServer/internal/domain"
)

// AdminUsersStore backs the staff console. Unlike UserSearchStore it sees
// every account, staff and disabled ones included.
type AdminUsersStore struct {
	db DB
}

func NewAdminUsersStore(db DB) *AdminUsersStore {
	return &AdminUsersStore{db: db}
}

// ListUsers pages through accounts newest first. A non-empty query filters by
// id, username or email substring.
func (s *AdminUsersStore) ListUsers(ctx context.Context, query string, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var pattern any
	if query = strings.TrimSpace(query); query != "" {
		pattern = "%" + escapeLike(query) + "%"
	}

	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE $1::text IS NULL
		   OR id::text ILIKE $1
		   OR username ILIKE $1
		   OR email ILIKE $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.Query(ctx, q, pattern, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *AdminUsersStore) SetUserStatus(ctx context.Context, userID string, status domain.UserStatus) error {
	const q = `UPDATE users SET status = $2, updated_at = now() WHERE id = $1`

	tag, err := s.db.Exec(ctx, q, userID, string(status))
	if err != nil {
		return fmt.Errorf("set user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
