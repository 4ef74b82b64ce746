package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"RosterRoyalsServer/internal/domain"
	"RosterRoyalsServer/internal/metrics"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	maxGroupName        = 100
	maxGroupDescription = 1000
	maxGroupSports      = 20
)

var (
	textPolicy   = bluemonday.StrictPolicy()
	sportKeyExpr = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,49}$`)
)

type GroupsStore interface {
	CreateGroup(ctx context.Context, presidentID string, attrs domain.GroupAttrs) (domain.BettingGroup, error)
	GetGroup(ctx context.Context, groupID string) (domain.BettingGroup, error)
	ListGroupsForMember(ctx context.Context, userID string) ([]domain.BettingGroup, error)
	AddMember(ctx context.Context, groupID, userID string) (bool, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	GetInvite(ctx context.Context, groupID, userID string) (domain.GroupInvite, error)
	GetInviteByID(ctx context.Context, inviteID string) (domain.GroupInvite, error)
	CreateInvite(ctx context.Context, inv domain.GroupInvite, notify domain.Notification) (domain.InviteReceipt, error)
	ResolveInvite(ctx context.Context, res domain.GroupInviteResolution) (domain.GroupInvite, *domain.Notification, error)
}

type GroupsService struct {
	Users  UserLookup
	Groups GroupsStore
	Push   Pusher
	Now    func() time.Time
	NewID  func() string
}

func (s *GroupsService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *GroupsService) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

// cleanText strips markup from user-entered text and returns it as plain text.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func normalizeGroupAttrs(attrs domain.GroupAttrs) (domain.GroupAttrs, error) {
	fields := map[string]string{}
	out := domain.GroupAttrs{
		Name:        cleanText(attrs.Name),
		Description: cleanText(attrs.Description),
		Sports:      []string{},
	}

	switch n := utf8.RuneCountInString(out.Name); {
	case n == 0:
		fields["name"] = "required"
	case n > maxGroupName:
		fields["name"] = fmt.Sprintf("must be at most %d characters", maxGroupName)
	}
	if utf8.RuneCountInString(out.Description) > maxGroupDescription {
		fields["description"] = fmt.Sprintf("must be at most %d characters", maxGroupDescription)
	}

	seen := map[string]bool{}
	for _, sport := range attrs.Sports {
		sport = strings.ToLower(strings.TrimSpace(sport))
		if sport == "" || seen[sport] {
			continue
		}
		if !sportKeyExpr.MatchString(sport) {
			fields["sports"] = "must be sport keys like soccer or ice-hockey"
			break
		}
		seen[sport] = true
		out.Sports = append(out.Sports, sport)
	}
	if len(out.Sports) > maxGroupSports {
		fields["sports"] = fmt.Sprintf("at most %d sports", maxGroupSports)
	}

	if len(fields) > 0 {
		return domain.GroupAttrs{}, domain.NewValidationError(fields)
	}
	return out, nil
}

func (s *GroupsService) Create(ctx context.Context, actor domain.User, attrs domain.GroupAttrs) (domain.BettingGroup, error) {
	attrs, err := normalizeGroupAttrs(attrs)
	if err != nil {
		return domain.BettingGroup{}, err
	}
	return s.Groups.CreateGroup(ctx, actor.ID, attrs)
}

func (s *GroupsService) Get(ctx context.Context, groupID string) (domain.BettingGroup, error) {
	g, err := s.Groups.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.BettingGroup{}, domain.NotFound("group not found")
		}
		return domain.BettingGroup{}, err
	}
	return g, nil
}

func (s *GroupsService) List(ctx context.Context, userID string) ([]domain.BettingGroup, error) {
	return s.Groups.ListGroupsForMember(ctx, userID)
}

// presidentGroup loads the group and checks that actor runs it.
func (s *GroupsService) presidentGroup(ctx context.Context, actor domain.User, groupID, denied string) (domain.BettingGroup, error) {
	g, err := s.Get(ctx, groupID)
	if err != nil {
		return domain.BettingGroup{}, err
	}
	if !g.IsPresident(actor.ID) {
		return domain.BettingGroup{}, domain.Forbidden(denied)
	}
	return g, nil
}

// AddMember enrolls a user directly. Adding an existing member is a no-op.
func (s *GroupsService) AddMember(ctx context.Context, actor domain.User, groupID, userID string) error {
	g, err := s.presidentGroup(ctx, actor, groupID, "only the group president can add members")
	if err != nil {
		return err
	}
	u, err := lookupActiveUser(ctx, s.Users, userID)
	if err != nil {
		return err
	}
	_, err = s.Groups.AddMember(ctx, g.ID, u.ID)
	return err
}

func (s *GroupsService) Invite(ctx context.Context, actor domain.User, groupID, toUserID string) (domain.InviteReceipt, error) {
	g, err := s.presidentGroup(ctx, actor, groupID, "only the group president can invite members")
	if err != nil {
		return domain.InviteReceipt{}, err
	}
	invitee, err := lookupActiveUser(ctx, s.Users, toUserID)
	if err != nil {
		return domain.InviteReceipt{}, err
	}

	member, err := s.Groups.IsMember(ctx, g.ID, invitee.ID)
	if err != nil {
		return domain.InviteReceipt{}, err
	}
	if member {
		return domain.InviteReceipt{}, domain.Conflict("user is already a member of this group")
	}

	existing, err := s.Groups.GetInvite(ctx, g.ID, invitee.ID)
	switch {
	case err == nil:
		if existing.Status == domain.RequestPending {
			return domain.InviteReceipt{}, domain.Conflict("user already has a pending invite to this group")
		}
	case !errors.Is(err, domain.ErrNotFound):
		return domain.InviteReceipt{}, err
	}

	inv := domain.GroupInvite{
		ID:       s.newID(),
		GroupID:  g.ID,
		ToUserID: invitee.ID,
		Status:   domain.RequestPending,
	}
	notify := domain.NewNotification(invitee.ID, domain.NotificationGroupInvite,
		fmt.Sprintf("%s invited you to join %s", actor.Username, g.Name), inv.ID)

	receipt, err := s.Groups.CreateInvite(ctx, inv, notify)
	if err != nil {
		return domain.InviteReceipt{}, err
	}
	metrics.NotificationCreated(string(receipt.Notification.Type))
	if s.Push != nil {
		s.Push.Push(ctx, receipt.Notification)
	}
	return receipt, nil
}

// RespondInvite accepts or rejects a pending invite addressed to actor.
// Accepting makes actor a member and tells the president.
func (s *GroupsService) RespondInvite(ctx context.Context, actor domain.User, inviteID, rawAction string) (domain.GroupInvite, error) {
	action, err := domain.ParseRequestAction(rawAction)
	if err != nil {
		return domain.GroupInvite{}, err
	}

	inv, err := s.Groups.GetInviteByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.GroupInvite{}, domain.NotFound("group invite not found")
		}
		return domain.GroupInvite{}, err
	}
	if inv.ToUserID != actor.ID || !inv.Status.CanTransition(action.Resolve()) {
		return domain.GroupInvite{}, domain.NotFound("group invite not found")
	}

	res := domain.GroupInviteResolution{
		InviteID:    inv.ID,
		AddresseeID: actor.ID,
		Status:      action.Resolve(),
		RespondedAt: s.now(),
	}
	if action == domain.ActionAccept {
		g, err := s.Get(ctx, inv.GroupID)
		if err != nil {
			return domain.GroupInvite{}, err
		}
		n := domain.NewNotification(g.PresidentID, domain.NotificationInfo,
			fmt.Sprintf("%s joined %s", actor.Username, g.Name), inv.ID)
		res.Notify = &n
	}

	resolved, n, err := s.Groups.ResolveInvite(ctx, res)
	if err != nil {
		return domain.GroupInvite{}, err
	}
	metrics.Resolved("group_invite", string(resolved.Status))
	if n != nil {
		metrics.NotificationCreated(string(n.Type))
	}
	return resolved, nil
}
