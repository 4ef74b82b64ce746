package postgres

import (
	"context"
	"fmt"

	"RosterRoyalsServer/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type NotificationsStore struct {
	db DB
}

func NewNotificationsStore(db DB) *NotificationsStore {
	return &NotificationsStore{db: db}
}

func (s *NotificationsStore) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	const q = `
		SELECT id, user_id, message, type, is_read, requires_action, reference_id, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []domain.Notification{}
	for rows.Next() {
		var (
			n        domain.Notification
			idUUID   pgtype.UUID
			userUUID pgtype.UUID
			refUUID  pgtype.UUID
		)
		if err := rows.Scan(&idUUID, &userUUID, &n.Message, &n.Type, &n.IsRead, &n.RequiresAction, &refUUID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ID = uuidOrEmpty(idUUID)
		n.UserID = uuidOrEmpty(userUUID)
		n.ReferenceID = uuidOrEmpty(refUUID)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// MarkAllReadAndSweep marks every unread notification of the user as read and
// then deletes the read ones that need no action. Action-required rows stay
// until the request or invite behind them is resolved.
func (s *NotificationsStore) MarkAllReadAndSweep(ctx context.Context, userID string) (marked, swept int64, err error) {
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `UPDATE notifications SET is_read = true WHERE user_id = $1 AND NOT is_read`, userID)
		if err != nil {
			return fmt.Errorf("mark notifications read: %w", err)
		}
		marked = ct.RowsAffected()

		ct, err = tx.Exec(ctx, `DELETE FROM notifications WHERE user_id = $1 AND is_read AND NOT requires_action`, userID)
		if err != nil {
			return fmt.Errorf("sweep notifications: %w", err)
		}
		swept = ct.RowsAffected()
		return nil
	})
	return marked, swept, err
}

func insertNotification(ctx context.Context, db querier, n domain.Notification) (domain.Notification, error) {
	const q = `
		INSERT INTO notifications (user_id, message, type, is_read, requires_action, reference_id)
		VALUES ($1, $2, $3, false, $4, $5)
		RETURNING id, created_at
	`
	var idUUID pgtype.UUID
	if err := db.QueryRow(ctx, q, n.UserID, n.Message, n.Type, n.RequiresAction, nullIfEmpty(n.ReferenceID)).Scan(&idUUID, &n.CreatedAt); err != nil {
		return domain.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	n.ID = uuidOrEmpty(idUUID)
	n.IsRead = false
	return n, nil
}

// deleteActionNotifications resolves the action-required notifications a user
// holds for one request or invite.
func deleteActionNotifications(ctx context.Context, db querier, userID string, typ domain.NotificationType, referenceID string) error {
	const q = `
		DELETE FROM notifications
		WHERE user_id = $1 AND type = $2 AND requires_action AND reference_id = $3
	`
	if _, err := db.Exec(ctx, q, userID, typ, referenceID); err != nil {
		return fmt.Errorf("delete %s notifications: %w", typ, err)
	}
	return nil
}
