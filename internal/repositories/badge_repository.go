package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrBadgeNotFound = errors.New("badge not found")

// BadgeRepository persists badge definitions and ownership.
type BadgeRepository interface {
	GetByCode(ctx context.Context, code string) (models.Badge, error)
	Award(ctx context.Context, userID int, badgeID int, at time.Time) (bool, error)
	ListForUser(ctx context.Context, userID int) ([]models.Badge, error)
	ActivityStats(ctx context.Context, userID int) (models.ActivityStats, error)
}

// BadgeRepo is a sqlx-backed repository.
type BadgeRepo struct {
	db *sqlx.DB
}

// NewBadgeRepo constructs BadgeRepo.
func NewBadgeRepo(db *sqlx.DB) *BadgeRepo {
	return &BadgeRepo{db: db}
}

// GetByCode fetches a badge definition by its stable code.
func (r *BadgeRepo) GetByCode(ctx context.Context, code string) (models.Badge, error) {
	var badge models.Badge
	err := r.db.GetContext(ctx, &badge, `SELECT id, code, name, description, icon FROM badges WHERE code=$1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Badge{}, ErrBadgeNotFound
	}
	return badge, err
}

// Award inserts the ownership row. A second award of the same badge is a
// no-op and reports false.
func (r *BadgeRepo) Award(ctx context.Context, userID int, badgeID int, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO user_badges (user_id, badge_id, awarded_at)
        VALUES ($1, $2, $3) ON CONFLICT (user_id, badge_id) DO NOTHING`, userID, badgeID, at)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListForUser returns the badges the user owns.
func (r *BadgeRepo) ListForUser(ctx context.Context, userID int) ([]models.Badge, error) {
	var badges []models.Badge
	err := r.db.SelectContext(ctx, &badges, `SELECT b.id, b.code, b.name, b.description, b.icon
        FROM badges b JOIN user_badges ub ON ub.badge_id = b.id
        WHERE ub.user_id=$1 ORDER BY ub.awarded_at ASC`, userID)
	return badges, err
}

// ActivityStats computes the counters the award rules evaluate.
func (r *BadgeRepo) ActivityStats(ctx context.Context, userID int) (models.ActivityStats, error) {
	var stats models.ActivityStats
	err := r.db.QueryRowxContext(ctx, `SELECT
        (SELECT COUNT(*) FROM messages WHERE sender_id=$1),
        (SELECT COUNT(*) FROM conversations WHERE user1_id=$1 OR user2_id=$1)`, userID).
		Scan(&stats.MessagesSent, &stats.ConversationsStarted)
	return stats, err
}
