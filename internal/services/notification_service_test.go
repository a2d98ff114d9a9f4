package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"messaging-service/internal/mocks"
	"messaging-service/internal/models"
	"messaging-service/internal/ws"
)

func newNotificationService(t *testing.T) (*NotificationService, *mocks.NotificationRepositoryMock, *mocks.UserRepositoryMock, *mocks.PusherMock) {
	t.Helper()
	repo := new(mocks.NotificationRepositoryMock)
	users := new(mocks.UserRepositoryMock)
	pusher := new(mocks.PusherMock)
	svc := NewNotificationService(repo, users, pusher, zap.NewNop().Sugar())
	return svc, repo, users, pusher
}

func TestCreatePushesNotificationAndUnreadCount(t *testing.T) {
	svc, repo, _, pusher := newNotificationService(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time { return now }

	repo.On("Create", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.RecipientID == 2 && n.Priority == models.PriorityNormal
	})).Return(models.Notification{ID: 1, RecipientID: 2, Title: "hola", Type: models.NotificationTypeSystem, Priority: models.PriorityNormal, CreatedAt: now}, nil).Once()
	repo.On("UnreadCount", mock.Anything, 2).Return(3, nil).Once()
	pusher.On("SendToUser", 2, mock.MatchedBy(func(e models.Event) bool { return e.Type == ws.EventNotification })).Return().Once()
	pusher.On("SendToUser", 2, mock.MatchedBy(func(e models.Event) bool {
		payload, ok := e.Payload.(models.UnreadCountPayload)
		return ok && e.Type == ws.EventUnreadCount && payload.Count == 3
	})).Return().Once()

	view, err := svc.Create(context.Background(), CreateNotificationInput{
		RecipientID: 2,
		Title:       "hola",
		Message:     "mensaje",
		Type:        models.NotificationTypeSystem,
	})
	require.NoError(t, err)
	assert.Equal(t, "bell", view.Icon)
	assert.Equal(t, "info", view.Color)

	repo.AssertExpectations(t)
	pusher.AssertExpectations(t)
}

func TestCreateBulkFansOutToEveryRecipient(t *testing.T) {
	svc, repo, _, pusher := newNotificationService(t)

	recipients := []int{2, 3, 4}
	repo.On("CreateBulk", mock.Anything, mock.MatchedBy(func(rows []models.Notification) bool {
		return len(rows) == 3 && rows[0].RecipientID == 2 && rows[2].RecipientID == 4
	})).Return([]models.Notification{
		{ID: 1, RecipientID: 2, Type: models.NotificationTypeAnnouncement, Priority: models.PriorityNormal},
		{ID: 2, RecipientID: 3, Type: models.NotificationTypeAnnouncement, Priority: models.PriorityNormal},
		{ID: 3, RecipientID: 4, Type: models.NotificationTypeAnnouncement, Priority: models.PriorityNormal},
	}, nil).Once()
	for _, id := range recipients {
		repo.On("UnreadCount", mock.Anything, id).Return(1, nil).Once()
		pusher.On("SendToUser", id, mock.Anything).Return().Times(2)
	}

	views, err := svc.CreateBulk(context.Background(), recipients, CreateNotificationInput{
		Title:   "aviso",
		Message: "para todos",
		Type:    models.NotificationTypeAnnouncement,
	})
	require.NoError(t, err)
	require.Len(t, views, 3)

	repo.AssertExpectations(t)
	pusher.AssertExpectations(t)
}

func TestCreateBulkFailsAtomically(t *testing.T) {
	svc, repo, _, pusher := newNotificationService(t)

	repo.On("CreateBulk", mock.Anything, mock.Anything).Return(([]models.Notification)(nil), assert.AnError).Once()

	_, err := svc.CreateBulk(context.Background(), []int{2, 3}, CreateNotificationInput{
		Title:   "aviso",
		Message: "para todos",
		Type:    models.NotificationTypeAnnouncement,
	})
	require.Error(t, err)
	pusher.AssertNotCalled(t, "SendToUser", mock.Anything, mock.Anything)
}

func TestMarkReadChecksOwnership(t *testing.T) {
	svc, repo, _, _ := newNotificationService(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time { return now }

	repo.On("MarkRead", mock.Anything, 9, 2, now).Return(nil).Once()

	require.NoError(t, svc.MarkRead(context.Background(), 9, 2))
	repo.AssertExpectations(t)
}

func TestListForUserReturnsCounts(t *testing.T) {
	svc, repo, _, _ := newNotificationService(t)

	repo.On("ListForUser", mock.Anything, 2, 20, 0).Return([]models.Notification{
		{ID: 1, RecipientID: 2, Type: models.NotificationTypeMessageReceived, Priority: models.PriorityNormal},
	}, nil).Once()
	repo.On("CountForUser", mock.Anything, 2).Return(5, 2, nil).Once()

	list, err := svc.ListForUser(context.Background(), 2, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 5, list.Total)
	assert.Equal(t, 2, list.Unread)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, "chat", list.Notifications[0].Icon)
	assert.Equal(t, "primary", list.Notifications[0].Color)
}

func TestDisplayHints(t *testing.T) {
	cases := []struct {
		name      string
		notifType string
		priority  string
		wantIcon  string
		wantColor string
	}{
		{"message", models.NotificationTypeMessageReceived, models.PriorityNormal, "chat", "primary"},
		{"badge", models.NotificationTypeBadgeEarned, models.PriorityNormal, "award", "success"},
		{"application", models.NotificationTypeApplicationStatus, models.PriorityNormal, "clipboard", "info"},
		{"announcement", models.NotificationTypeAnnouncement, models.PriorityNormal, "megaphone", "info"},
		{"system", models.NotificationTypeSystem, models.PriorityNormal, "bell", "info"},
		{"high overrides color", models.NotificationTypeMessageReceived, models.PriorityHigh, "chat", "warning"},
		{"urgent always wins", models.NotificationTypeBadgeEarned, models.PriorityUrgent, "award", "error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			icon, color := displayHints(tc.notifType, tc.priority)
			assert.Equal(t, tc.wantIcon, icon)
			assert.Equal(t, tc.wantColor, color)
		})
	}
}
