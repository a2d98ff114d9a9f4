package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository persists notification records.
type NotificationRepository interface {
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	CreateBulk(ctx context.Context, ns []models.Notification) ([]models.Notification, error)
	Get(ctx context.Context, id int) (models.Notification, error)
	MarkRead(ctx context.Context, id int, recipientID int, readAt time.Time) error
	MarkAllRead(ctx context.Context, recipientID int, readAt time.Time) error
	Delete(ctx context.Context, id int, recipientID int) error
	ListForUser(ctx context.Context, userID int, limit, offset int) ([]models.Notification, error)
	CountForUser(ctx context.Context, userID int) (total int, unread int, err error)
	UnreadCount(ctx context.Context, userID int) (int, error)
}

// NotificationRepo is a sqlx-backed repository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

const notificationColumns = `id, recipient_id, sender_id, title, message, type, priority,
    action_url, data, is_read, read_at, created_at`

const notificationInsert = `INSERT INTO notifications
    (recipient_id, sender_id, title, message, type, priority, action_url, data)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING ` + notificationColumns

// Create stores a single notification.
func (r *NotificationRepo) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	var out models.Notification
	err := r.db.QueryRowxContext(ctx, notificationInsert,
		n.RecipientID, n.SenderID, n.Title, n.Message, n.Type, n.Priority, n.ActionURL, n.Data).
		StructScan(&out)
	return out, err
}

// CreateBulk stores all rows in one transaction so the records are atomic.
func (r *NotificationRepo) CreateBulk(ctx context.Context, ns []models.Notification) ([]models.Notification, error) {
	if len(ns) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	out := make([]models.Notification, 0, len(ns))
	for _, n := range ns {
		var created models.Notification
		if err := tx.QueryRowxContext(ctx, notificationInsert,
			n.RecipientID, n.SenderID, n.Title, n.Message, n.Type, n.Priority, n.ActionURL, n.Data).
			StructScan(&created); err != nil {
			return nil, err
		}
		out = append(out, created)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get retrieves a single notification.
func (r *NotificationRepo) Get(ctx context.Context, id int) (models.Notification, error) {
	var n models.Notification
	err := r.db.GetContext(ctx, &n, `SELECT `+notificationColumns+` FROM notifications WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Notification{}, ErrNotificationNotFound
	}
	return n, err
}

// MarkRead flips the read state, only when the requester owns the row.
func (r *NotificationRepo) MarkRead(ctx context.Context, id int, recipientID int, readAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read=TRUE, read_at=$3
        WHERE id=$1 AND recipient_id=$2`, id, recipientID, readAt)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flips all of the recipient's unread rows in one pass.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID int, readAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read=TRUE, read_at=$2
        WHERE recipient_id=$1 AND is_read = FALSE`, recipientID, readAt)
	return err
}

// Delete removes the row, ownership-checked.
func (r *NotificationRepo) Delete(ctx context.Context, id int, recipientID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id=$1 AND recipient_id=$2`, id, recipientID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// ListForUser returns notifications newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID int, limit, offset int) ([]models.Notification, error) {
	var ns []models.Notification
	err := r.db.SelectContext(ctx, &ns, `SELECT `+notificationColumns+` FROM notifications
        WHERE recipient_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`, userID, limit, offset)
	return ns, err
}

// CountForUser returns the total and unread counts in one query.
func (r *NotificationRepo) CountForUser(ctx context.Context, userID int) (int, int, error) {
	var total, unread int
	err := r.db.QueryRowxContext(ctx, `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_read = FALSE)
        FROM notifications WHERE recipient_id=$1`, userID).Scan(&total, &unread)
	return total, unread, err
}

// UnreadCount counts the recipient's unread notifications.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE recipient_id=$1 AND is_read = FALSE`, userID)
	return count, err
}
