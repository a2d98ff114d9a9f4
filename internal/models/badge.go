package models

import "time"

// Badge is an achievement definition. Award rules are keyed by Code, never by
// the display name, so renaming a badge cannot break its rule.
type Badge struct {
	ID          int    `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Icon        string `db:"icon" json:"icon"`
}

// UserBadge records badge ownership.
type UserBadge struct {
	UserID    int       `db:"user_id" json:"user_id"`
	BadgeID   int       `db:"badge_id" json:"badge_id"`
	AwardedAt time.Time `db:"awarded_at" json:"awarded_at"`
}

// ActivityStats feeds the automatic award rules.
type ActivityStats struct {
	MessagesSent         int `db:"messages_sent"`
	ConversationsStarted int `db:"conversations_started"`
}
