package models

import "time"

// UserOnlineStatus is one row per user, overwritten on every connect and
// disconnect. No history is kept.
type UserOnlineStatus struct {
	UserID   int       `db:"user_id" json:"user_id"`
	IsOnline bool      `db:"is_online" json:"is_online"`
	LastSeen time.Time `db:"last_seen" json:"last_seen"`
}

// PresenceView is the API shape of a user's presence.
type PresenceView struct {
	UserID       int        `json:"user_id"`
	IsOnline     bool       `json:"is_online"`
	LastSeen     *time.Time `json:"last_seen,omitempty"`
	LastSeenText string     `json:"last_seen_text"`
}
