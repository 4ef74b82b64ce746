package postgres

import (
	"context"
	"errors"
	"fmt"

	"RosterRoyalsServer/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type GroupsStore struct {
	db DB
}

func NewGroupsStore(db DB) *GroupsStore {
	return &GroupsStore{db: db}
}

const groupSelect = `
	SELECT g.id, g.name, g.description, g.sports, g.president_id, g.created_at,
		p.username, p.points
	FROM betting_groups g
	JOIN users p ON p.id = g.president_id
`

func scanGroup(row rowScanner) (domain.BettingGroup, error) {
	var (
		g        domain.BettingGroup
		idUUID   pgtype.UUID
		presUUID pgtype.UUID
		sports   pgtype.FlatArray[string]
	)
	if err := row.Scan(&idUUID, &g.Name, &g.Description, &sports, &presUUID, &g.CreatedAt, &g.President.Username, &g.President.Points); err != nil {
		return domain.BettingGroup{}, err
	}
	g.ID = uuidOrEmpty(idUUID)
	g.PresidentID = uuidOrEmpty(presUUID)
	g.President.ID = g.PresidentID
	g.Sports = sportsOrEmpty(sports)
	return g, nil
}

// CreateGroup inserts the group and enrolls the president as its first member.
func (s *GroupsStore) CreateGroup(ctx context.Context, presidentID string, attrs domain.GroupAttrs) (domain.BettingGroup, error) {
	if attrs.Sports == nil {
		attrs.Sports = []string{}
	}
	var id pgtype.UUID
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		const ins = `
			INSERT INTO betting_groups (name, description, sports, president_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		if err := tx.QueryRow(ctx, ins, attrs.Name, attrs.Description, attrs.Sports, presidentID).Scan(&id); err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		_, err := addMember(ctx, tx, uuidOrEmpty(id), presidentID)
		return err
	})
	if err != nil {
		return domain.BettingGroup{}, err
	}
	return s.GetGroup(ctx, uuidOrEmpty(id))
}

func (s *GroupsStore) GetGroup(ctx context.Context, groupID string) (domain.BettingGroup, error) {
	g, err := scanGroup(s.db.QueryRow(ctx, groupSelect+` WHERE g.id = $1`, groupID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BettingGroup{}, domain.ErrNotFound
		}
		return domain.BettingGroup{}, fmt.Errorf("get group: %w", err)
	}
	members, err := s.listMembers(ctx, []string{g.ID})
	if err != nil {
		return domain.BettingGroup{}, err
	}
	g.Members = members[g.ID]
	if g.Members == nil {
		g.Members = []domain.UserSummary{}
	}
	return g, nil
}

func (s *GroupsStore) ListGroupsForMember(ctx context.Context, userID string) ([]domain.BettingGroup, error) {
	const where = `
		WHERE EXISTS (SELECT 1 FROM group_members m WHERE m.group_id = g.id AND m.user_id = $1)
		ORDER BY g.created_at DESC
	`
	rows, err := s.db.Query(ctx, groupSelect+where, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	out := []domain.BettingGroup{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, len(out))
	for i, g := range out {
		ids[i] = g.ID
	}
	members, err := s.listMembers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Members = members[out[i].ID]
		if out[i].Members == nil {
			out[i].Members = []domain.UserSummary{}
		}
	}
	return out, nil
}

func (s *GroupsStore) listMembers(ctx context.Context, groupIDs []string) (map[string][]domain.UserSummary, error) {
	const q = `
		SELECT m.group_id, u.id, u.username, u.points
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = ANY($1::uuid[])
		ORDER BY m.joined_at ASC, u.username ASC
	`
	rows, err := s.db.Query(ctx, q, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.UserSummary, len(groupIDs))
	for rows.Next() {
		var groupUUID pgtype.UUID
		u, err := scanSummary(rows, &groupUUID)
		if err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		gid := uuidOrEmpty(groupUUID)
		out[gid] = append(out[gid], u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return out, nil
}

// AddMember is idempotent; added reports whether a new membership was written.
func (s *GroupsStore) AddMember(ctx context.Context, groupID, userID string) (bool, error) {
	return addMember(ctx, s.db, groupID, userID)
}

func addMember(ctx context.Context, db querier, groupID, userID string) (bool, error) {
	const q = `
		INSERT INTO group_members (group_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`
	ct, err := db.Exec(ctx, q, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("add group member: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *GroupsStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`
	var ok bool
	if err := s.db.QueryRow(ctx, q, groupID, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check group member: %w", err)
	}
	return ok, nil
}

const inviteColumns = `id, group_id, to_user_id, status, created_at, responded_at`

func scanInvite(row rowScanner) (domain.GroupInvite, error) {
	var (
		inv         domain.GroupInvite
		idUUID      pgtype.UUID
		groupUUID   pgtype.UUID
		toUUID      pgtype.UUID
		respondedTS pgtype.Timestamptz
	)
	if err := row.Scan(&idUUID, &groupUUID, &toUUID, &inv.Status, &inv.CreatedAt, &respondedTS); err != nil {
		return domain.GroupInvite{}, err
	}
	inv.ID = uuidOrEmpty(idUUID)
	inv.GroupID = uuidOrEmpty(groupUUID)
	inv.ToUserID = uuidOrEmpty(toUUID)
	inv.RespondedAt = timestamptzPtr(respondedTS)
	return inv, nil
}

func (s *GroupsStore) GetInvite(ctx context.Context, groupID, userID string) (domain.GroupInvite, error) {
	const q = `SELECT ` + inviteColumns + ` FROM group_invites WHERE group_id = $1 AND to_user_id = $2`
	inv, err := scanInvite(s.db.QueryRow(ctx, q, groupID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GroupInvite{}, domain.ErrNotFound
		}
		return domain.GroupInvite{}, fmt.Errorf("get group invite: %w", err)
	}
	return inv, nil
}

func (s *GroupsStore) GetInviteByID(ctx context.Context, inviteID string) (domain.GroupInvite, error) {
	const q = `SELECT ` + inviteColumns + ` FROM group_invites WHERE id = $1`
	inv, err := scanInvite(s.db.QueryRow(ctx, q, inviteID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.GroupInvite{}, domain.ErrNotFound
		}
		return domain.GroupInvite{}, fmt.Errorf("get group invite by id: %w", err)
	}
	return inv, nil
}

// CreateInvite stores a pending invite with the invitee's notification. A
// terminal invite for the same pair is replaced.
func (s *GroupsStore) CreateInvite(ctx context.Context, inv domain.GroupInvite, notify domain.Notification) (domain.InviteReceipt, error) {
	var receipt domain.InviteReceipt
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		const clear = `
			DELETE FROM group_invites
			WHERE group_id = $1 AND to_user_id = $2 AND status IN ('accepted', 'rejected')
		`
		if _, err := tx.Exec(ctx, clear, inv.GroupID, inv.ToUserID); err != nil {
			return fmt.Errorf("clear resolved group invite: %w", err)
		}

		const ins = `
			INSERT INTO group_invites (id, group_id, to_user_id, status)
			VALUES ($1, $2, $3, 'pending')
			RETURNING ` + inviteColumns
		created, err := scanInvite(tx.QueryRow(ctx, ins, inv.ID, inv.GroupID, inv.ToUserID))
		if err != nil {
			if name, ok := uniqueConstraint(err); ok && name == "group_invites_pair_uq" {
				return domain.Conflict("user already has a pending invite to this group")
			}
			return fmt.Errorf("create group invite: %w", err)
		}
		receipt.Invite = created

		receipt.Notification, err = insertNotification(ctx, tx, notify)
		return err
	})
	if err != nil {
		return domain.InviteReceipt{}, err
	}
	return receipt, nil
}

// ResolveInvite is the group counterpart of FriendshipsStore.ResolveRequest.
func (s *GroupsStore) ResolveInvite(ctx context.Context, res domain.GroupInviteResolution) (domain.GroupInvite, *domain.Notification, error) {
	var (
		out     domain.GroupInvite
		created *domain.Notification
	)
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		const upd = `
			UPDATE group_invites
			SET status = $3, responded_at = $4
			WHERE id = $1 AND to_user_id = $2 AND status = 'pending'
			RETURNING ` + inviteColumns
		inv, err := scanInvite(tx.QueryRow(ctx, upd, res.InviteID, res.AddresseeID, res.Status, res.RespondedAt))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.NotFound("group invite not found")
			}
			return fmt.Errorf("resolve group invite: %w", err)
		}
		out = inv

		if inv.Status == domain.RequestAccepted {
			if _, err := addMember(ctx, tx, inv.GroupID, inv.ToUserID); err != nil {
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
		return deleteActionNotifications(ctx, tx, inv.ToUserID, domain.NotificationGroupInvite, inv.ID)
	})
	if err != nil {
		return domain.GroupInvite{}, nil, err
	}
	return out, created, nil
}
