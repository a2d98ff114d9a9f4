package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// AwardRule decides whether a user qualifies for the badge identified by Code.
// Rules are keyed by the stable code, never by the display name, so renaming a
// badge cannot break its automatic award.
type AwardRule struct {
	Code      string
	Qualifies func(stats models.ActivityStats) bool
}

// DefaultAwardRules are the messaging-activity rules evaluated after a send.
func DefaultAwardRules() []AwardRule {
	return []AwardRule{
		{Code: "first_message", Qualifies: func(s models.ActivityStats) bool { return s.MessagesSent >= 1 }},
		{Code: "conversador", Qualifies: func(s models.ActivityStats) bool { return s.MessagesSent >= 100 }},
		{Code: "conector", Qualifies: func(s models.ActivityStats) bool { return s.ConversationsStarted >= 10 }},
	}
}

// Badges awards achievements and announces them.
type Badges interface {
	Award(ctx context.Context, userID int, code string) (bool, error)
	Evaluate(ctx context.Context, userID int) ([]models.Badge, error)
	ListForUser(ctx context.Context, userID int) ([]models.Badge, error)
}

// BadgeService implements Badges.
type BadgeService struct {
	repo    repositories.BadgeRepository
	notifs  NotificationCreator
	rules   []AwardRule
	log     *zap.SugaredLogger
	nowFunc func() time.Time
}

// NewBadgeService builds a BadgeService.
func NewBadgeService(repo repositories.BadgeRepository, notifs NotificationCreator, rules []AwardRule, log *zap.SugaredLogger) *BadgeService {
	return &BadgeService{repo: repo, notifs: notifs, rules: rules, log: log, nowFunc: time.Now}
}

// Award grants the badge with the given code. Awarding a badge the user
// already owns is a no-op reporting false, with no duplicate row.
func (s *BadgeService) Award(ctx context.Context, userID int, code string) (bool, error) {
	badge, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return false, err
	}

	awarded, err := s.repo.Award(ctx, userID, badge.ID, s.nowFunc())
	if err != nil || !awarded {
		return false, err
	}

	if s.notifs != nil {
		if _, err := s.notifs.Create(ctx, CreateNotificationInput{
			RecipientID: userID,
			Title:       "¡Nueva insignia!",
			Message:     "Ganaste la insignia \"" + badge.Name + "\"",
			Type:        models.NotificationTypeBadgeEarned,
			Priority:    models.PriorityNormal,
			Data:        map[string]any{"badge_code": badge.Code, "badge_icon": badge.Icon},
		}); err != nil {
			s.log.Warnw("badge notification failed", "user_id", userID, "badge", code, "error", err)
		}
	}
	return true, nil
}

// Evaluate runs every registered rule against the user's current activity and
// returns the badges newly awarded by this pass.
func (s *BadgeService) Evaluate(ctx context.Context, userID int) ([]models.Badge, error) {
	stats, err := s.repo.ActivityStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []models.Badge
	for _, rule := range s.rules {
		if !rule.Qualifies(stats) {
			continue
		}
		granted, err := s.Award(ctx, userID, rule.Code)
		if err != nil {
			s.log.Warnw("badge award failed", "user_id", userID, "badge", rule.Code, "error", err)
			continue
		}
		if granted {
			if badge, err := s.repo.GetByCode(ctx, rule.Code); err == nil {
				awarded = append(awarded, badge)
			}
		}
	}
	return awarded, nil
}

// ListForUser returns the badges the user owns.
func (s *BadgeService) ListForUser(ctx context.Context, userID int) ([]models.Badge, error) {
	return s.repo.ListForUser(ctx, userID)
}
