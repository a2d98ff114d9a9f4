package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for conversation messages.
type MessageRepository interface {
	Create(ctx context.Context, msg models.Message) (models.Message, error)
	Get(ctx context.Context, messageID int) (models.Message, error)
	ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error)
	UpdateContent(ctx context.Context, messageID int, content string, editedAt time.Time) error
	SoftDelete(ctx context.Context, messageID int, deletedAt time.Time) error
	MarkConversationRead(ctx context.Context, conversationID string, readerID int, readAt time.Time) ([]models.Message, error)
	UnreadCount(ctx context.Context, conversationID string, userID int) (int, error)
	TotalUnreadForUser(ctx context.Context, userID int) (int, error)
	LastActivity(ctx context.Context, userID int) (*time.Time, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, conversation_id, sender_id, recipient_id, content, type,
    attachment_url, attachment_name, attachment_mime, attachment_size, reply_to_id,
    is_read, read_at, is_edited, edited_at, is_deleted, deleted_at, sent_at`

// Create stores a message. The send timestamp is server-assigned.
func (r *MessageRepo) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	var out models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages
        (conversation_id, sender_id, recipient_id, content, type,
         attachment_url, attachment_name, attachment_mime, attachment_size, reply_to_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+messageColumns,
		msg.ConversationID, msg.SenderID, msg.RecipientID, msg.Content, msg.Type,
		msg.AttachmentURL, msg.AttachmentName, msg.AttachmentMime, msg.AttachmentSize, msg.ReplyToID).
		StructScan(&out)
	return out, err
}

// Get retrieves a single message.
func (r *MessageRepo) Get(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListByConversation returns messages ordered by send time ascending.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages
        WHERE conversation_id=$1
        ORDER BY sent_at ASC
        LIMIT $2 OFFSET $3`, conversationID, limit, offset)
	return msgs, err
}

// UpdateContent applies an edit and stamps the edited timestamp. The deleted
// guard makes a concurrent delete win over the edit.
func (r *MessageRepo) UpdateContent(ctx context.Context, messageID int, content string, editedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET content=$2, is_edited=TRUE, edited_at=$3
        WHERE id=$1 AND is_deleted = FALSE`, messageID, content, editedAt)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// SoftDelete keeps the row but replaces the content with the placeholder.
func (r *MessageRepo) SoftDelete(ctx context.Context, messageID int, deletedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_deleted=TRUE, deleted_at=$2, content=$3
        WHERE id=$1 AND is_deleted = FALSE`, messageID, deletedAt, models.DeletedPlaceholder)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// MarkConversationRead flips is_read on every unread message addressed to the
// reader and returns the affected rows so receipts can be pushed per message.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, conversationID string, readerID int, readAt time.Time) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `UPDATE messages SET is_read=TRUE, read_at=$3
        WHERE conversation_id=$1 AND recipient_id=$2 AND is_read = FALSE
        RETURNING `+messageColumns, conversationID, readerID, readAt)
	return msgs, err
}

// UnreadCount counts unread messages addressed to the user in one conversation.
func (r *MessageRepo) UnreadCount(ctx context.Context, conversationID string, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages
        WHERE conversation_id=$1 AND recipient_id=$2 AND is_read = FALSE AND is_deleted = FALSE`, conversationID, userID)
	return count, err
}

// TotalUnreadForUser counts unread messages addressed to the user across all conversations.
func (r *MessageRepo) TotalUnreadForUser(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages
        WHERE recipient_id=$1 AND is_read = FALSE AND is_deleted = FALSE`, userID)
	return count, err
}

// LastActivity returns the timestamp of the user's most recent send or receive.
func (r *MessageRepo) LastActivity(ctx context.Context, userID int) (*time.Time, error) {
	var at sql.NullTime
	err := r.db.GetContext(ctx, &at, `SELECT MAX(sent_at) FROM messages WHERE sender_id=$1 OR recipient_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	if !at.Valid {
		return nil, nil
	}
	return &at.Time, nil
}
