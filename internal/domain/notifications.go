package domain

import "time"

type NotificationType string

const (
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationFriendAccepted NotificationType = "friend_accepted"
	NotificationGroupInvite    NotificationType = "group_invite"
	NotificationInfo           NotificationType = "info"
)

// RequiresAction is true for types that wait on the recipient to accept or
// reject something.
func (t NotificationType) RequiresAction() bool {
	return t == NotificationFriendRequest || t == NotificationGroupInvite
}

const maxNotificationMessage = 255

type Notification struct {
	ID             string           `json:"id"`
	UserID         string           `json:"-"`
	Message        string           `json:"message"`
	Type           NotificationType `json:"type"`
	IsRead         bool             `json:"is_read"`
	RequiresAction bool             `json:"requires_action"`
	ReferenceID    string           `json:"reference_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// NewNotification builds an unsaved notification. RequiresAction is fixed here
// and never recomputed.
func NewNotification(userID string, typ NotificationType, message, referenceID string) Notification {
	if r := []rune(message); len(r) > maxNotificationMessage {
		message = string(r[:maxNotificationMessage])
	}
	return Notification{
		UserID:         userID,
		Message:        message,
		Type:           typ,
		RequiresAction: typ.RequiresAction(),
		ReferenceID:    referenceID,
	}
}

type NotificationToken struct {
	ID        string    `json:"-"`
	UserID    string    `json:"-"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
