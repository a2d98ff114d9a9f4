package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"messaging-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository is the user-lookup boundary. Sending a message requires the
// recipient to exist; everything else about users lives outside this service.
type UserRepository interface {
	Get(ctx context.Context, userID int) (models.User, error)
	Summaries(ctx context.Context, ids []int) (map[int]models.UserSummary, error)
}

// UserRepo is a sqlx-backed repository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Get fetches a user by id.
func (r *UserRepo) Get(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, name, email, avatar_url, role, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// Summaries fetches basic profiles for a set of ids in one query.
func (r *UserRepo) Summaries(ctx context.Context, ids []int) (map[int]models.UserSummary, error) {
	out := map[int]models.UserSummary{}
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT id, name, avatar_url FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var summaries []models.UserSummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, err
	}
	for _, s := range summaries {
		out[s.ID] = s
	}
	return out, nil
}
