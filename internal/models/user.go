package models

import "time"

// User is the platform user row. This service only reads it: recipient
// existence checks and profile enrichment.
type User struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	AvatarURL *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserSummary is the basic profile embedded in views.
type UserSummary struct {
	ID        int     `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url,omitempty"`
}
