package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"RosterRoyalsServer/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type FriendshipsStore struct {
	db DB
}

func NewFriendshipsStore(db DB) *FriendshipsStore {
	return &FriendshipsStore{db: db}
}

const friendRequestColumns = `id, from_user_id, to_user_id, status, created_at, responded_at`

func scanFriendRequest(row rowScanner) (domain.FriendRequest, error) {
	var (
		r           domain.FriendRequest
		idUUID      pgtype.UUID
		fromUUID    pgtype.UUID
		toUUID      pgtype.UUID
		respondedTS pgtype.Timestamptz
	)
	if err := row.Scan(&idUUID, &fromUUID, &toUUID, &r.Status, &r.CreatedAt, &respondedTS); err != nil {
		return domain.FriendRequest{}, err
	}
	r.ID = uuidOrEmpty(idUUID)
	r.FromUserID = uuidOrEmpty(fromUUID)
	r.ToUserID = uuidOrEmpty(toUUID)
	r.RespondedAt = timestamptzPtr(respondedTS)
	return r, nil
}

// GetRequest returns the request sent from one user to another, whatever its
// status.
func (s *FriendshipsStore) GetRequest(ctx context.Context, fromUserID, toUserID string) (domain.FriendRequest, error) {
	const q = `SELECT ` + friendRequestColumns + ` FROM friend_requests WHERE from_user_id = $1 AND to_user_id = $2`
	r, err := scanFriendRequest(s.db.QueryRow(ctx, q, fromUserID, toUserID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FriendRequest{}, domain.ErrNotFound
		}
		return domain.FriendRequest{}, fmt.Errorf("get friend request: %w", err)
	}
	return r, nil
}

func (s *FriendshipsStore) GetRequestByID(ctx context.Context, requestID string) (domain.FriendRequest, error) {
	const q = `SELECT ` + friendRequestColumns + ` FROM friend_requests WHERE id = $1`
	r, err := scanFriendRequest(s.db.QueryRow(ctx, q, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FriendRequest{}, domain.ErrNotFound
		}
		return domain.FriendRequest{}, fmt.Errorf("get friend request by id: %w", err)
	}
	return r, nil
}

func (s *FriendshipsStore) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM friendships WHERE user_id = $1 AND friend_id = $2)`
	var ok bool
	if err := s.db.QueryRow(ctx, q, userID, otherID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return ok, nil
}

// CreateRequest stores a new pending request together with the recipient's
// notification. A rejected request for the same pair is replaced.
func (s *FriendshipsStore) CreateRequest(ctx context.Context, req domain.FriendRequest, notify domain.Notification) (domain.FriendRequest, domain.Notification, error) {
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		const clear = `
			DELETE FROM friend_requests
			WHERE from_user_id = $1 AND to_user_id = $2 AND status = 'rejected'
		`
		if _, err := tx.Exec(ctx, clear, req.FromUserID, req.ToUserID); err != nil {
			return fmt.Errorf("clear rejected friend request: %w", err)
		}

		const ins = `
			INSERT INTO friend_requests (id, from_user_id, to_user_id, status)
			VALUES ($1, $2, $3, 'pending')
			RETURNING ` + friendRequestColumns
		created, err := scanFriendRequest(tx.QueryRow(ctx, ins, req.ID, req.FromUserID, req.ToUserID))
		if err != nil {
			if name, ok := uniqueConstraint(err); ok && name == "friend_requests_pair_uq" {
				return domain.Conflict("friend request already sent")
			}
			return fmt.Errorf("create friend request: %w", err)
		}
		req = created

		notify, err = insertNotification(ctx, tx, notify)
		return err
	})
	if err != nil {
		return domain.FriendRequest{}, domain.Notification{}, err
	}
	return req, notify, nil
}

// ResolveRequest moves a pending request addressed to res.AddresseeID to its
// terminal status. Only one of several concurrent resolutions can match the
// pending row; the others get ErrNotFound.
func (s *FriendshipsStore) ResolveRequest(ctx context.Context, res domain.FriendRequestResolution) (domain.FriendRequest, *domain.Notification, error) {
	var (
		out     domain.FriendRequest
		created *domain.Notification
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		const upd = `
			UPDATE friend_requests
			SET status = $3, responded_at = $4
			WHERE id = $1 AND to_user_id = $2 AND status = 'pending'
			RETURNING ` + friendRequestColumns
		r, err := scanFriendRequest(tx.QueryRow(ctx, upd, res.RequestID, res.AddresseeID, res.Status, res.RespondedAt))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFound("friend request not found")
			}
			return fmt.Errorf("resolve friend request: %w", err)
		}
		out = r

		if r.Status == domain.RequestAccepted {
			if err := insertFriendshipPair(ctx, tx, r.FromUserID, r.ToUserID, res.RespondedAt); err != nil {
				return err
			}
		}
		if res.Notify != nil {
			n, err := insertNotification(ctx, tx, *res.Notify)
			if err != nil {
				return err
			}
			created = &n
		}
		return deleteActionNotifications(ctx, tx, r.ToUserID, domain.NotificationFriendRequest, r.ID)
	})
	if err != nil {
		return domain.FriendRequest{}, nil, err
	}
	return out, created, nil
}

func insertFriendshipPair(ctx context.Context, tx pgx.Tx, a, b string, when time.Time) error {
	const q = `
		INSERT INTO friendships (user_id, friend_id, created_at)
		VALUES ($1, $2, $3), ($2, $1, $3)
		ON CONFLICT (user_id, friend_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, q, a, b, when); err != nil {
		return fmt.Errorf("insert friendship: %w", err)
	}
	return nil
}

// RemoveFriendship deletes both friendship rows, every request between the two
// users in either direction, and the notifications still waiting on those
// requests. Removing a relationship that does not exist is not an error.
func (s *FriendshipsStore) RemoveFriendship(ctx context.Context, userID, otherID string) error {
	return inTx(ctx, s.db, func(tx pgx.Tx) error {
		const delFriends = `
			DELETE FROM friendships
			WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		`
		if _, err := tx.Exec(ctx, delFriends, userID, otherID); err != nil {
			return fmt.Errorf("delete friendships: %w", err)
		}

		const delNotifications = `
			DELETE FROM notifications
			WHERE type = 'friend_request' AND requires_action AND reference_id IN (
				SELECT id FROM friend_requests
				WHERE (from_user_id = $1 AND to_user_id = $2) OR (from_user_id = $2 AND to_user_id = $1)
			)
		`
		if _, err := tx.Exec(ctx, delNotifications, userID, otherID); err != nil {
			return fmt.Errorf("delete friend request notifications: %w", err)
		}

		const delRequests = `
			DELETE FROM friend_requests
			WHERE (from_user_id = $1 AND to_user_id = $2) OR (from_user_id = $2 AND to_user_id = $1)
		`
		if _, err := tx.Exec(ctx, delRequests, userID, otherID); err != nil {
			return fmt.Errorf("delete friend requests: %w", err)
		}
		return nil
	})
}

func (s *FriendshipsStore) ListFriends(ctx context.Context, userID string) ([]domain.UserSummary, error) {
	const q = `
		SELECT u.id, u.username, u.points
		FROM friendships f
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY u.username ASC
	`

	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	out := []domain.UserSummary{}
	for rows.Next() {
		u, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return out, nil
}

func (s *FriendshipsStore) ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	const q = `
		SELECT r.id, r.from_user_id, r.to_user_id, r.status, r.created_at, r.responded_at,
			u.username, u.points
		FROM friend_requests r
		JOIN users u ON u.id = r.from_user_id
		WHERE r.to_user_id = $1 AND r.status = 'pending'
		ORDER BY r.created_at DESC
	`

	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	defer rows.Close()

	out := []domain.FriendRequest{}
	for rows.Next() {
		var (
			r           domain.FriendRequest
			idUUID      pgtype.UUID
			fromUUID    pgtype.UUID
			toUUID      pgtype.UUID
			respondedTS pgtype.Timestamptz
		)
		if err := rows.Scan(&idUUID, &fromUUID, &toUUID, &r.Status, &r.CreatedAt, &respondedTS, &r.From.Username, &r.From.Points); err != nil {
			return nil, fmt.Errorf("scan incoming request: %w", err)
		}
		r.ID = uuidOrEmpty(idUUID)
		r.FromUserID = uuidOrEmpty(fromUUID)
		r.ToUserID = uuidOrEmpty(toUUID)
		r.From.ID = r.FromUserID
		r.RespondedAt = timestamptzPtr(respondedTS)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	return out, nil
}
