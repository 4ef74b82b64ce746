package domain

import (
	"strings"
	"time"
)

// RequestStatus is the lifecycle state shared by friend requests and group
// invites: pending moves once to accepted or rejected and stays there.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

func (s RequestStatus) Terminal() bool {
	return s == RequestAccepted || s == RequestRejected
}

// CanTransition reports whether a request in state s may move to next.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	return s == RequestPending && next.Terminal()
}

type RequestAction string

const (
	ActionAccept RequestAction = "accept"
	ActionReject RequestAction = "reject"
)

func ParseRequestAction(raw string) (RequestAction, error) {
	switch a := RequestAction(strings.ToLower(strings.TrimSpace(raw))); a {
	case ActionAccept, ActionReject:
		return a, nil
	default:
		return "", NewValidationError(map[string]string{"action": "must be accept or reject"})
	}
}

// Resolve maps an action to the terminal status it produces.
func (a RequestAction) Resolve() RequestStatus {
	if a == ActionAccept {
		return RequestAccepted
	}
	return RequestRejected
}

type FriendRequest struct {
	ID          string        `json:"id"`
	FromUserID  string        `json:"-"`
	ToUserID    string        `json:"-"`
	From        UserSummary   `json:"from_user"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	RespondedAt *time.Time    `json:"responded_at,omitempty"`
}

// FriendStatus is how a searched user relates to the searcher.
type FriendStatus string

const (
	FriendStatusFriends FriendStatus = "friends"
	FriendStatusPending FriendStatus = "pending"
	FriendStatusNone    FriendStatus = "none"
)

type UserSearchResult struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Points       int          `json:"points"`
	FriendStatus FriendStatus `json:"friendStatus"`
}

// FriendRequestResolution is everything that changes when the addressee of a
// pending friend request answers it.
type FriendRequestResolution struct {
	RequestID   string
	AddresseeID string
	Status      RequestStatus
	RespondedAt time.Time
	// Notify, when set, is delivered to the original sender.
	Notify *Notification
}
