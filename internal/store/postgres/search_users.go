package postgres

import (
	"context"
	"fmt"
	"strings"

	"RosterRoyalsServer/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
)

type UserSearchStore struct {
	db DB
}

func NewUserSearchStore(db DB) *UserSearchStore {
	return &UserSearchStore{db: db}
}

// SearchUsers matches usernames case-insensitively and reports how each hit
// relates to the searcher. Staff and disabled accounts never appear.
func (s *UserSearchStore) SearchUsers(ctx context.Context, actorID, query string, limit int) ([]domain.UserSearchResult, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.UserSearchResult{}, nil
	}

	const q = `
		SELECT u.id, u.username, u.points,
			CASE
				WHEN EXISTS (
					SELECT 1 FROM friendships f
					WHERE f.user_id = $1 AND f.friend_id = u.id
				) THEN 'friends'
				WHEN EXISTS (
					SELECT 1 FROM friend_requests r
					WHERE r.from_user_id = $1 AND r.to_user_id = u.id AND r.status = 'pending'
				) THEN 'pending'
				ELSE 'none'
			END
		FROM users u
		WHERE u.status = 'active'
		  AND NOT u.is_staff
		  AND u.id <> $1
		  AND u.username ILIKE $2
		ORDER BY u.username ASC
		LIMIT $3
	`

	rows, err := s.db.Query(ctx, q, actorID, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	out := []domain.UserSearchResult{}
	for rows.Next() {
		var (
			idUUID pgtype.UUID
			r      domain.UserSearchResult
		)
		if err := rows.Scan(&idUUID, &r.Username, &r.Points, &r.FriendStatus); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		r.ID = uuidOrEmpty(idUUID)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
