package domain

import "time"

type BettingGroup struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Sports      []string      `json:"sports"`
	PresidentID string        `json:"-"`
	President   UserSummary   `json:"president"`
	Members     []UserSummary `json:"members"`
	CreatedAt   time.Time     `json:"created_at"`
}

func (g BettingGroup) IsPresident(userID string) bool {
	return userID != "" && g.PresidentID == userID
}

type GroupAttrs struct {
	Name        string
	Description string
	Sports      []string
}

type GroupInvite struct {
	ID          string        `json:"id"`
	GroupID     string        `json:"group_id"`
	ToUserID    string        `json:"to_user_id"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	RespondedAt *time.Time    `json:"responded_at,omitempty"`
}

// GroupInviteResolution mirrors FriendRequestResolution for group invites.
type GroupInviteResolution struct {
	InviteID    string
	AddresseeID string
	Status      RequestStatus
	RespondedAt time.Time
	// Notify, when set, is delivered to the group president.
	Notify *Notification
}

type InviteReceipt struct {
	Invite       GroupInvite
	Notification Notification
}
