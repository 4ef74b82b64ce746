package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"RosterRoyalsServer/internal/domain"
	"RosterRoyalsServer/internal/metrics"

	"github.com/google/uuid"
)

type FriendshipsStore interface {
	GetRequest(ctx context.Context, fromUserID, toUserID string) (domain.FriendRequest, error)
	GetRequestByID(ctx context.Context, requestID string) (domain.FriendRequest, error)
	AreFriends(ctx context.Context, userID, otherID string) (bool, error)
	CreateRequest(ctx context.Context, req domain.FriendRequest, notify domain.Notification) (domain.FriendRequest, domain.Notification, error)
	ResolveRequest(ctx context.Context, res domain.FriendRequestResolution) (domain.FriendRequest, *domain.Notification, error)
	RemoveFriendship(ctx context.Context, userID, otherID string) error
	ListFriends(ctx context.Context, userID string) ([]domain.UserSummary, error)
	ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequest, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

// Pusher delivers a committed notification to the recipient's devices.
type Pusher interface {
	Push(ctx context.Context, n domain.Notification)
}

type FriendsService struct {
	Users       UserLookup
	Friendships FriendshipsStore
	Push        Pusher
	Now         func() time.Time
	NewID       func() string
}

func (s *FriendsService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *FriendsService) newID() string {
	if s.NewID == nil {
		return uuid.NewString()
	}
	return s.NewID()
}

func (s *FriendsService) List(ctx context.Context, userID string) ([]domain.UserSummary, error) {
	return s.Friendships.ListFriends(ctx, userID)
}

func (s *FriendsService) Incoming(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	return s.Friendships.ListIncoming(ctx, userID)
}

// SendRequest creates a pending request from actor to toUserID and notifies
// the recipient.
func (s *FriendsService) SendRequest(ctx context.Context, actor domain.User, toUserID string) (domain.FriendRequest, error) {
	target, err := lookupActiveUser(ctx, s.Users, toUserID)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if target.ID == actor.ID {
		return domain.FriendRequest{}, domain.Conflict("cannot send friend request to yourself")
	}

	existing, err := s.Friendships.GetRequest(ctx, actor.ID, target.ID)
	switch {
	case err == nil:
		switch existing.Status {
		case domain.RequestPending:
			return domain.FriendRequest{}, domain.Conflict("friend request already sent")
		case domain.RequestAccepted:
			return domain.FriendRequest{}, domain.Conflict("already friends")
		}
	case !errors.Is(err, domain.ErrNotFound):
		return domain.FriendRequest{}, err
	}

	friends, err := s.Friendships.AreFriends(ctx, actor.ID, target.ID)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if friends {
		return domain.FriendRequest{}, domain.Conflict("already friends")
	}

	req := domain.FriendRequest{
		ID:         s.newID(),
		FromUserID: actor.ID,
		ToUserID:   target.ID,
		From:       actor.Summary(),
		Status:     domain.RequestPending,
	}
	notify := domain.NewNotification(target.ID, domain.NotificationFriendRequest,
		fmt.Sprintf("%s sent you a friend request", actor.Username), req.ID)

	created, n, err := s.Friendships.CreateRequest(ctx, req, notify)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	created.From = req.From
	metrics.NotificationCreated(string(n.Type))
	if s.Push != nil {
		s.Push.Push(ctx, n)
	}
	return created, nil
}

// Respond accepts or rejects a pending request addressed to actor.
func (s *FriendsService) Respond(ctx context.Context, actor domain.User, requestID, rawAction string) (domain.FriendRequest, error) {
	action, err := domain.ParseRequestAction(rawAction)
	if err != nil {
		return domain.FriendRequest{}, err
	}

	req, err := s.Friendships.GetRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.FriendRequest{}, domain.NotFound("friend request not found")
		}
		return domain.FriendRequest{}, err
	}
	if req.ToUserID != actor.ID || !req.Status.CanTransition(action.Resolve()) {
		return domain.FriendRequest{}, domain.NotFound("friend request not found")
	}

	res := domain.FriendRequestResolution{
		RequestID:   req.ID,
		AddresseeID: actor.ID,
		Status:      action.Resolve(),
		RespondedAt: s.now(),
	}
	if action == domain.ActionAccept {
		n := domain.NewNotification(req.FromUserID, domain.NotificationFriendAccepted,
			fmt.Sprintf("%s accepted your friend request", actor.Username), req.ID)
		res.Notify = &n
	}

	resolved, n, err := s.Friendships.ResolveRequest(ctx, res)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	metrics.Resolved("friend_request", string(resolved.Status))
	if n != nil {
		metrics.NotificationCreated(string(n.Type))
	}
	return resolved, nil
}

// RemoveFriend drops the friendship and every request between the two users.
// It succeeds when there is nothing to remove.
func (s *FriendsService) RemoveFriend(ctx context.Context, actor domain.User, otherID string) error {
	other, err := lookupActiveUser(ctx, s.Users, otherID)
	if err != nil {
		return err
	}
	return s.Friendships.RemoveFriendship(ctx, actor.ID, other.ID)
}

func lookupActiveUser(ctx context.Context, users UserLookup, id string) (domain.User, error) {
	u, err := users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.NotFound("user not found")
		}
		return domain.User{}, err
	}
	if u.Status == domain.UserStatusDisabled {
		return domain.User{}, domain.NotFound("user not found")
	}
	return u, nil
}
