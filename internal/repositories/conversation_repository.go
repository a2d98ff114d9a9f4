package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	Resolve(ctx context.Context, userID int, otherID int) (models.Conversation, error)
	Get(ctx context.Context, id string) (models.Conversation, error)
	ListForUser(ctx context.Context, userID int, limit, offset int) ([]models.Conversation, error)
	CountForUser(ctx context.Context, userID int) (int, error)
	SetLastMessage(ctx context.Context, id string, messageID int, at time.Time) error
	SetUnreadFor(ctx context.Context, id string, userID int, unread bool) error
	Archive(ctx context.Context, id string) error
	Stats(ctx context.Context, userID int) (models.ConversationStats, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

const conversationColumns = `id, user1_id, user2_id, created_at, last_message_at, last_message_id, user1_unread, user2_unread, archived`

// Resolve returns the canonical conversation for the pair, creating it lazily.
// The id is identical regardless of argument order.
func (r *ConversationRepo) Resolve(ctx context.Context, userID int, otherID int) (models.Conversation, error) {
	if userID == otherID {
		return models.Conversation{}, errors.New("cannot start a conversation with yourself")
	}
	lo, hi := userID, otherID
	if lo > hi {
		lo, hi = hi, lo
	}
	id := models.ConversationID(lo, hi)

	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, id)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, err
	}

	err = r.db.QueryRowxContext(ctx, `INSERT INTO conversations (id, user1_id, user2_id) VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
        RETURNING `+conversationColumns, id, lo, hi).StructScan(&conv)
	return conv, err
}

// Get fetches a conversation by its canonical id.
func (r *ConversationRepo) Get(ctx context.Context, id string) (models.Conversation, error) {
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// ListForUser returns the user's non-archived conversations, most recent activity first.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID int, limit, offset int) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.SelectContext(ctx, &convs, `SELECT `+conversationColumns+` FROM conversations
        WHERE (user1_id=$1 OR user2_id=$1) AND archived = FALSE
        ORDER BY last_message_at DESC
        LIMIT $2 OFFSET $3`, userID, limit, offset)
	return convs, err
}

// CountForUser counts the user's non-archived conversations.
func (r *ConversationRepo) CountForUser(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM conversations
        WHERE (user1_id=$1 OR user2_id=$1) AND archived = FALSE`, userID)
	return count, err
}

// SetLastMessage updates the last-message pointer and timestamp.
func (r *ConversationRepo) SetLastMessage(ctx context.Context, id string, messageID int, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE conversations SET last_message_id=$2, last_message_at=$3 WHERE id=$1`, id, messageID, at)
	return err
}

// SetUnreadFor flips the unread flag on whichever participant slot holds userID.
func (r *ConversationRepo) SetUnreadFor(ctx context.Context, id string, userID int, unread bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE conversations SET
        user1_unread = CASE WHEN user1_id=$2 THEN $3 ELSE user1_unread END,
        user2_unread = CASE WHEN user2_id=$2 THEN $3 ELSE user2_unread END
        WHERE id=$1`, id, userID, unread)
	return err
}

// Archive marks a conversation archived. Conversations are never deleted.
func (r *ConversationRepo) Archive(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE conversations SET archived = TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Stats aggregates conversation-level counters for the user. Unread message
// totals and last activity come from the message repository.
func (r *ConversationRepo) Stats(ctx context.Context, userID int) (models.ConversationStats, error) {
	var stats models.ConversationStats
	err := r.db.QueryRowxContext(ctx, `SELECT
        COUNT(*),
        COUNT(*) FILTER (WHERE (user1_id=$1 AND user1_unread) OR (user2_id=$1 AND user2_unread))
        FROM conversations WHERE (user1_id=$1 OR user2_id=$1) AND archived = FALSE`, userID).
		Scan(&stats.TotalConversations, &stats.UnreadConversations)
	return stats, err
}
