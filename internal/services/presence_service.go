package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"messaging-service/internal/models"
	"messaging-service/internal/render"
	"messaging-service/internal/repositories"
)

// Presence tracks per-user online state.
type Presence interface {
	SetOnline(ctx context.Context, userID int, online bool) error
	Status(ctx context.Context, userID int) (models.PresenceView, error)
	OnlineUsers(ctx context.Context) ([]models.UserOnlineStatus, error)
}

// PresenceService keeps the Postgres row of record and mirrors it into Redis
// with a TTL so other instances can read liveness cheaply. Redis failures are
// logged, never surfaced.
type PresenceService struct {
	repo    repositories.PresenceRepository
	redis   *redis.Client
	prefix  string
	ttl     time.Duration
	log     *zap.SugaredLogger
	nowFunc func() time.Time
}

// NewPresenceService builds a PresenceService. redis may be nil to run on
// Postgres alone.
func NewPresenceService(repo repositories.PresenceRepository, redisClient *redis.Client, prefix string, ttl time.Duration, log *zap.SugaredLogger) *PresenceService {
	return &PresenceService{repo: repo, redis: redisClient, prefix: prefix, ttl: ttl, log: log, nowFunc: time.Now}
}

type presenceMirror struct {
	Status   string `json:"status"`
	LastSeen int64  `json:"last_seen"`
}

func (s *PresenceService) presenceKey(userID int) string {
	return fmt.Sprintf("%s:presence:%d", s.prefix, userID)
}

// SetOnline upserts the status row. Last-seen is refreshed on both connect and
// disconnect.
func (s *PresenceService) SetOnline(ctx context.Context, userID int, online bool) error {
	now := s.nowFunc()
	if err := s.repo.Upsert(ctx, userID, online, now); err != nil {
		return err
	}

	if s.redis != nil {
		status := "offline"
		ttl := time.Duration(0)
		if online {
			status = "online"
			ttl = s.ttl
		}
		payload, _ := json.Marshal(presenceMirror{Status: status, LastSeen: now.Unix()})
		if err := s.redis.Set(ctx, s.presenceKey(userID), payload, ttl).Err(); err != nil {
			s.log.Warnw("presence mirror write failed", "user_id", userID, "error", err)
		}
	}
	return nil
}

// Status returns the user's presence. A user without a row has never connected.
func (s *PresenceService) Status(ctx context.Context, userID int) (models.PresenceView, error) {
	row, err := s.repo.Get(ctx, userID)
	if errors.Is(err, repositories.ErrStatusNotFound) {
		return models.PresenceView{UserID: userID, LastSeenText: "nunca se conectó"}, nil
	}
	if err != nil {
		return models.PresenceView{}, err
	}

	view := models.PresenceView{
		UserID:   row.UserID,
		IsOnline: row.IsOnline,
		LastSeen: &row.LastSeen,
	}
	if row.IsOnline {
		view.LastSeenText = "en línea"
	} else {
		view.LastSeenText = render.TimeAgo(row.LastSeen, s.nowFunc())
	}
	return view, nil
}

// OnlineUsers returns every row currently flagged online.
func (s *PresenceService) OnlineUsers(ctx context.Context) ([]models.UserOnlineStatus, error) {
	return s.repo.ListOnline(ctx)
}
