package models

import (
	"fmt"
	"time"
)

// Conversation is the single record for an unordered pair of users.
// User1ID is always the lower of the two ids, so the canonical id is stable
// regardless of who opened the conversation.
type Conversation struct {
	ID            string     `db:"id" json:"id"`
	User1ID       int        `db:"user1_id" json:"user1_id"`
	User2ID       int        `db:"user2_id" json:"user2_id"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	LastMessageAt time.Time  `db:"last_message_at" json:"last_message_at"`
	LastMessageID *int       `db:"last_message_id" json:"last_message_id,omitempty"`
	User1Unread   bool       `db:"user1_unread" json:"user1_unread"`
	User2Unread   bool       `db:"user2_unread" json:"user2_unread"`
	Archived      bool       `db:"archived" json:"archived"`
}

// ConversationID builds the canonical id for a pair of users: "{lo}_{hi}".
// External clients parse this format, so the min/max rule must never change.
func ConversationID(a, b int) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}

// OtherParticipant returns the participant that is not userID.
func (c Conversation) OtherParticipant(userID int) int {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// HasParticipant reports whether userID belongs to the conversation.
func (c Conversation) HasParticipant(userID int) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// UnreadFor returns the unread flag for the given participant's slot.
func (c Conversation) UnreadFor(userID int) bool {
	if c.User1ID == userID {
		return c.User1Unread
	}
	return c.User2Unread
}

// ConversationSummary is one entry in a user's conversation listing.
type ConversationSummary struct {
	ConversationID string       `json:"conversation_id"`
	Other          UserSummary  `json:"other_user"`
	LastMessage    *MessageView `json:"last_message,omitempty"`
	UnreadCount    int          `json:"unread_count"`
	LastActivityAt time.Time    `json:"last_activity_at"`
	OtherOnline    bool         `json:"other_online"`
	OtherLastSeen  string       `json:"other_last_seen,omitempty"`
}

// ConversationStats aggregates a user's messaging activity.
type ConversationStats struct {
	TotalConversations  int        `json:"total_conversations"`
	UnreadConversations int        `json:"unread_conversations"`
	UnreadMessages      int        `json:"unread_messages"`
	LastActivityAt      *time.Time `json:"last_activity_at,omitempty"`
}
