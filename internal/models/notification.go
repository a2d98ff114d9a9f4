package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Notification types known to the platform.
const (
	NotificationTypeMessageReceived   = "message_received"
	NotificationTypeBadgeEarned       = "badge_earned"
	NotificationTypeApplicationStatus = "application_status"
	NotificationTypeAnnouncement      = "announcement"
	NotificationTypeSystem            = "system"
)

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Notification is a persisted record for a recipient. Only the read state is
// ever mutated; deletion is up to the recipient.
type Notification struct {
	ID          int            `db:"id" json:"id"`
	RecipientID int            `db:"recipient_id" json:"recipient_id"`
	SenderID    *int           `db:"sender_id" json:"sender_id,omitempty"`
	Title       string         `db:"title" json:"title"`
	Message     string         `db:"message" json:"message"`
	Type        string         `db:"type" json:"type"`
	Priority    string         `db:"priority" json:"priority"`
	ActionURL   *string        `db:"action_url" json:"action_url,omitempty"`
	Data        types.JSONText `db:"data" json:"data,omitempty"`
	IsRead      bool           `db:"is_read" json:"is_read"`
	ReadAt      *time.Time     `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// NotificationView adds the derived display fields.
type NotificationView struct {
	Notification
	TimeAgo string       `json:"time_ago"`
	Icon    string       `json:"icon"`
	Color   string       `json:"color"`
	Sender  *UserSummary `json:"sender,omitempty"`
}

// NotificationList is a paginated listing plus counts.
type NotificationList struct {
	Notifications []NotificationView `json:"notifications"`
	Total         int                `json:"total"`
	Unread        int                `json:"unread"`
	Page          int                `json:"page"`
	PageSize      int                `json:"page_size"`
}
