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
	"messaging-service/internal/repositories"
)

func newPresenceService(t *testing.T) (*PresenceService, *mocks.PresenceRepositoryMock) {
	t.Helper()
	repo := new(mocks.PresenceRepositoryMock)
	svc := NewPresenceService(repo, nil, "messaging", 5*time.Minute, zap.NewNop().Sugar())
	return svc, repo
}

func TestStatusNeverConnected(t *testing.T) {
	svc, repo := newPresenceService(t)

	repo.On("Get", mock.Anything, 9).Return(models.UserOnlineStatus{}, repositories.ErrStatusNotFound).Once()

	view, err := svc.Status(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "nunca se conectó", view.LastSeenText)
	assert.False(t, view.IsOnline)
	assert.Nil(t, view.LastSeen)
}

func TestStatusOnline(t *testing.T) {
	svc, repo := newPresenceService(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	repo.On("Get", mock.Anything, 5).Return(models.UserOnlineStatus{UserID: 5, IsOnline: true, LastSeen: now}, nil).Once()

	view, err := svc.Status(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, view.IsOnline)
	assert.Equal(t, "en línea", view.LastSeenText)
}

func TestStatusOfflineShowsRelativeTime(t *testing.T) {
	svc, repo := newPresenceService(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time { return now }

	repo.On("Get", mock.Anything, 5).Return(models.UserOnlineStatus{UserID: 5, IsOnline: false, LastSeen: now.Add(-2 * time.Hour)}, nil).Once()

	view, err := svc.Status(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, view.IsOnline)
	assert.Equal(t, "hace 2 horas", view.LastSeenText)
}

func TestSetOnlineUpsertsRow(t *testing.T) {
	svc, repo := newPresenceService(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time { return now }

	repo.On("Upsert", mock.Anything, 5, true, now).Return(nil).Once()

	require.NoError(t, svc.SetOnline(context.Background(), 5, true))
	repo.AssertExpectations(t)
}

func TestSetOnlineRefreshesLastSeenOnDisconnect(t *testing.T) {
	svc, repo := newPresenceService(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.nowFunc = func() time.Time { return now }

	repo.On("Upsert", mock.Anything, 5, false, now).Return(nil).Once()

	require.NoError(t, svc.SetOnline(context.Background(), 5, false))
	repo.AssertExpectations(t)
}
