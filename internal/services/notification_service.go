package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/render"
	"messaging-service/internal/repositories"
	"messaging-service/internal/ws"
)

// bulkPushConcurrency caps the parallel pushes during bulk fan-out.
const bulkPushConcurrency = 8

// CreateNotificationInput is the request to persist one notification.
type CreateNotificationInput struct {
	RecipientID int
	SenderID    *int
	Title       string
	Message     string
	Type        string
	Priority    string
	ActionURL   *string
	Data        map[string]any
}

// Notifications is the notification record service.
type Notifications interface {
	Create(ctx context.Context, input CreateNotificationInput) (models.NotificationView, error)
	CreateBulk(ctx context.Context, recipientIDs []int, input CreateNotificationInput) ([]models.NotificationView, error)
	MarkRead(ctx context.Context, id int, requesterID int) error
	MarkAllRead(ctx context.Context, requesterID int) error
	Delete(ctx context.Context, id int, requesterID int) error
	ListForUser(ctx context.Context, userID int, page, pageSize int) (models.NotificationList, error)
	UnreadCount(ctx context.Context, userID int) (int, error)
}

// NotificationService implements Notifications.
type NotificationService struct {
	repo    repositories.NotificationRepository
	users   repositories.UserRepository
	pusher  Pusher
	log     *zap.SugaredLogger
	nowFunc func() time.Time
}

// NewNotificationService builds a NotificationService.
func NewNotificationService(repo repositories.NotificationRepository, users repositories.UserRepository, pusher Pusher, log *zap.SugaredLogger) *NotificationService {
	return &NotificationService{repo: repo, users: users, pusher: pusher, log: log, nowFunc: time.Now}
}

// Create persists one notification and immediately pushes it plus a refreshed
// unread count to the recipient.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (models.NotificationView, error) {
	row, err := toRow(input)
	if err != nil {
		return models.NotificationView{}, err
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return models.NotificationView{}, err
	}

	view := s.view(ctx, created)
	s.push(ctx, view)
	return view, nil
}

// CreateBulk persists all rows in one batched write, then fans the pushes out
// under a bounded concurrency cap. Pushes are independent and best-effort.
func (s *NotificationService) CreateBulk(ctx context.Context, recipientIDs []int, input CreateNotificationInput) ([]models.NotificationView, error) {
	rows := make([]models.Notification, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		perRecipient := input
		perRecipient.RecipientID = id
		row, err := toRow(perRecipient)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	created, err := s.repo.CreateBulk(ctx, rows)
	if err != nil {
		return nil, err
	}

	views := make([]models.NotificationView, len(created))
	sem := make(chan struct{}, bulkPushConcurrency)
	var wg sync.WaitGroup
	for i, n := range created {
		views[i] = s.view(ctx, n)
		wg.Add(1)
		sem <- struct{}{}
		go func(view models.NotificationView) {
			defer wg.Done()
			defer func() { <-sem }()
			s.push(ctx, view)
		}(views[i])
	}
	wg.Wait()

	return views, nil
}

// MarkRead flips read state, only when the requester owns the notification.
func (s *NotificationService) MarkRead(ctx context.Context, id int, requesterID int) error {
	return s.repo.MarkRead(ctx, id, requesterID, s.nowFunc())
}

// MarkAllRead flips all of the requester's unread rows in one pass.
func (s *NotificationService) MarkAllRead(ctx context.Context, requesterID int) error {
	return s.repo.MarkAllRead(ctx, requesterID, s.nowFunc())
}

// Delete removes the row, ownership-checked.
func (s *NotificationService) Delete(ctx context.Context, id int, requesterID int) error {
	return s.repo.Delete(ctx, id, requesterID)
}

// ListForUser returns a page of notifications newest first plus counts.
func (s *NotificationService) ListForUser(ctx context.Context, userID int, page, pageSize int) (models.NotificationList, error) {
	rows, err := s.repo.ListForUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return models.NotificationList{}, err
	}
	total, unread, err := s.repo.CountForUser(ctx, userID)
	if err != nil {
		return models.NotificationList{}, err
	}

	views := make([]models.NotificationView, 0, len(rows))
	for _, n := range rows {
		views = append(views, s.view(ctx, n))
	}
	return models.NotificationList{
		Notifications: views,
		Total:         total,
		Unread:        unread,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// UnreadCount counts the user's unread notifications.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// push delivers the notification and a refreshed unread count. Failures are
// logged, never propagated: the record is already durable.
func (s *NotificationService) push(ctx context.Context, view models.NotificationView) {
	s.pusher.SendToUser(view.RecipientID, models.Event{Type: ws.EventNotification, Payload: view})
	observability.IncNotificationPushed(view.Type)

	count, err := s.repo.UnreadCount(ctx, view.RecipientID)
	if err != nil {
		s.log.Warnw("unread count failed", "recipient_id", view.RecipientID, "error", err)
		return
	}
	s.pusher.SendToUser(view.RecipientID, models.Event{Type: ws.EventUnreadCount, Payload: models.UnreadCountPayload{Count: count}})
}

func (s *NotificationService) view(ctx context.Context, n models.Notification) models.NotificationView {
	icon, color := displayHints(n.Type, n.Priority)
	view := models.NotificationView{
		Notification: n,
		TimeAgo:      render.TimeAgo(n.CreatedAt, s.nowFunc()),
		Icon:         icon,
		Color:        color,
	}
	if n.SenderID != nil {
		if summaries, err := s.users.Summaries(ctx, []int{*n.SenderID}); err == nil {
			if sender, ok := summaries[*n.SenderID]; ok {
				view.Sender = &sender
			}
		}
	}
	return view
}

// displayHints derives the icon and color from type and priority. Urgent
// always wins the color.
func displayHints(notificationType, priority string) (string, string) {
	icon, color := "bell", "info"
	switch notificationType {
	case models.NotificationTypeMessageReceived:
		icon, color = "chat", "primary"
	case models.NotificationTypeBadgeEarned:
		icon, color = "award", "success"
	case models.NotificationTypeApplicationStatus:
		icon, color = "clipboard", "info"
	case models.NotificationTypeAnnouncement:
		icon, color = "megaphone", "info"
	}
	switch priority {
	case models.PriorityHigh:
		color = "warning"
	case models.PriorityUrgent:
		color = "error"
	}
	return icon, color
}

func toRow(input CreateNotificationInput) (models.Notification, error) {
	row := models.Notification{
		RecipientID: input.RecipientID,
		SenderID:    input.SenderID,
		Title:       input.Title,
		Message:     input.Message,
		Type:        input.Type,
		Priority:    input.Priority,
		ActionURL:   input.ActionURL,
	}
	if row.Priority == "" {
		row.Priority = models.PriorityNormal
	}
	if input.Data != nil {
		data, err := json.Marshal(input.Data)
		if err != nil {
			return models.Notification{}, err
		}
		row.Data = data
	}
	return row, nil
}
