package models

import "time"

// Message types. Image and file are derived from the attachment MIME category
// and override whatever the caller supplied.
const (
	MessageTypeText              = "text"
	MessageTypeImage             = "image"
	MessageTypeFile              = "file"
	MessageTypeSystem            = "system"
	MessageTypeApplicationUpdate = "application_update"
)

// DeletedPlaceholder replaces the content of soft-deleted messages.
const DeletedPlaceholder = "Este mensaje fue eliminado"

// Message is one row in a conversation. Deleted messages keep their row; the
// content is replaced with DeletedPlaceholder and the attachment is hidden.
type Message struct {
	ID             int        `db:"id" json:"id"`
	ConversationID string     `db:"conversation_id" json:"conversation_id"`
	SenderID       int        `db:"sender_id" json:"sender_id"`
	RecipientID    int        `db:"recipient_id" json:"recipient_id"`
	Content        string     `db:"content" json:"content"`
	Type           string     `db:"type" json:"type"`
	AttachmentURL  *string    `db:"attachment_url" json:"attachment_url,omitempty"`
	AttachmentName *string    `db:"attachment_name" json:"attachment_name,omitempty"`
	AttachmentMime *string    `db:"attachment_mime" json:"attachment_mime,omitempty"`
	AttachmentSize *int64     `db:"attachment_size" json:"attachment_size,omitempty"`
	ReplyToID      *int       `db:"reply_to_id" json:"reply_to_id,omitempty"`
	IsRead         bool       `db:"is_read" json:"is_read"`
	ReadAt         *time.Time `db:"read_at" json:"read_at,omitempty"`
	IsEdited       bool       `db:"is_edited" json:"is_edited"`
	EditedAt       *time.Time `db:"edited_at" json:"edited_at,omitempty"`
	IsDeleted      bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	SentAt         time.Time  `db:"sent_at" json:"sent_at"`
}

// ReplyPreview is the single-level resolved reply reference.
type ReplyPreview struct {
	ID       int    `json:"id"`
	SenderID int    `json:"sender_id"`
	Content  string `json:"content"`
}

// MessageView is the API shape of a message, enriched with derived display
// fields for the requesting viewer.
type MessageView struct {
	Message
	TimeAgo          string        `json:"time_ago"`
	IsMine           bool          `json:"is_mine"`
	FormattedContent string        `json:"formatted_content,omitempty"`
	ReplyTo          *ReplyPreview `json:"reply_to,omitempty"`
	Sender           *UserSummary  `json:"sender,omitempty"`
}
