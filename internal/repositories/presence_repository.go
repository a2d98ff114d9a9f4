package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrStatusNotFound = errors.New("online status not found")

// PresenceRepository stores the per-user online status row of record.
type PresenceRepository interface {
	Upsert(ctx context.Context, userID int, online bool, at time.Time) error
	Get(ctx context.Context, userID int) (models.UserOnlineStatus, error)
	ListOnline(ctx context.Context) ([]models.UserOnlineStatus, error)
}

// PresenceRepo is a sqlx-backed repository.
type PresenceRepo struct {
	db *sqlx.DB
}

// NewPresenceRepo constructs PresenceRepo.
func NewPresenceRepo(db *sqlx.DB) *PresenceRepo {
	return &PresenceRepo{db: db}
}

// Upsert overwrites the user's status row. Last-seen is always refreshed,
// whatever the online value.
func (r *PresenceRepo) Upsert(ctx context.Context, userID int, online bool, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO user_online_status (user_id, is_online, last_seen)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET is_online = EXCLUDED.is_online, last_seen = EXCLUDED.last_seen`,
		userID, online, at)
	return err
}

// Get fetches the user's status row.
func (r *PresenceRepo) Get(ctx context.Context, userID int) (models.UserOnlineStatus, error) {
	var status models.UserOnlineStatus
	err := r.db.GetContext(ctx, &status, `SELECT user_id, is_online, last_seen FROM user_online_status WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserOnlineStatus{}, ErrStatusNotFound
	}
	return status, err
}

// ListOnline returns all rows currently flagged online.
func (r *PresenceRepo) ListOnline(ctx context.Context) ([]models.UserOnlineStatus, error) {
	var statuses []models.UserOnlineStatus
	err := r.db.SelectContext(ctx, &statuses, `SELECT user_id, is_online, last_seen FROM user_online_status WHERE is_online = TRUE`)
	return statuses, err
}
