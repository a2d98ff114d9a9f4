package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"messaging-service/internal/models"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Get(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) Summaries(ctx context.Context, ids []int) (map[int]models.UserSummary, error) {
	args := m.Called(ctx, ids)
	var summaries map[int]models.UserSummary
	if val := args.Get(0); val != nil {
		summaries = val.(map[int]models.UserSummary)
	}
	return summaries, args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) Resolve(ctx context.Context, userID int, otherID int) (models.Conversation, error) {
	args := m.Called(ctx, userID, otherID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) Get(ctx context.Context, id string) (models.Conversation, error) {
	args := m.Called(ctx, id)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListForUser(ctx context.Context, userID int, limit, offset int) ([]models.Conversation, error) {
	args := m.Called(ctx, userID, limit, offset)
	var convs []models.Conversation
	if val := args.Get(0); val != nil {
		convs = val.([]models.Conversation)
	}
	return convs, args.Error(1)
}

func (m *ConversationRepositoryMock) CountForUser(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *ConversationRepositoryMock) SetLastMessage(ctx context.Context, id string, messageID int, at time.Time) error {
	args := m.Called(ctx, id, messageID, at)
	return args.Error(0)
}

func (m *ConversationRepositoryMock) SetUnreadFor(ctx context.Context, id string, userID int, unread bool) error {
	args := m.Called(ctx, id, userID, unread)
	return args.Error(0)
}

func (m *ConversationRepositoryMock) Archive(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ConversationRepositoryMock) Stats(ctx context.Context, userID int) (models.ConversationStats, error) {
	args := m.Called(ctx, userID)
	var stats models.ConversationStats
	if val := args.Get(0); val != nil {
		stats = val.(models.ConversationStats)
	}
	return stats, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	args := m.Called(ctx, msg)
	var out models.Message
	if val := args.Get(0); val != nil {
		out = val.(models.Message)
	}
	return out, args.Error(1)
}

func (m *MessageRepositoryMock) Get(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListByConversation(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error) {
	args := m.Called(ctx, conversationID, limit, offset)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) UpdateContent(ctx context.Context, messageID int, content string, editedAt time.Time) error {
	args := m.Called(ctx, messageID, content, editedAt)
	return args.Error(0)
}

func (m *MessageRepositoryMock) SoftDelete(ctx context.Context, messageID int, deletedAt time.Time) error {
	args := m.Called(ctx, messageID, deletedAt)
	return args.Error(0)
}

func (m *MessageRepositoryMock) MarkConversationRead(ctx context.Context, conversationID string, readerID int, readAt time.Time) ([]models.Message, error) {
	args := m.Called(ctx, conversationID, readerID, readAt)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) UnreadCount(ctx context.Context, conversationID string, userID int) (int, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) TotalUnreadForUser(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MessageRepositoryMock) LastActivity(ctx context.Context, userID int) (*time.Time, error) {
	args := m.Called(ctx, userID)
	var at *time.Time
	if val := args.Get(0); val != nil {
		at = val.(*time.Time)
	}
	return at, args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	args := m.Called(ctx, n)
	var out models.Notification
	if val := args.Get(0); val != nil {
		out = val.(models.Notification)
	}
	return out, args.Error(1)
}

func (m *NotificationRepositoryMock) CreateBulk(ctx context.Context, ns []models.Notification) ([]models.Notification, error) {
	args := m.Called(ctx, ns)
	var out []models.Notification
	if val := args.Get(0); val != nil {
		out = val.([]models.Notification)
	}
	return out, args.Error(1)
}

func (m *NotificationRepositoryMock) Get(ctx context.Context, id int) (models.Notification, error) {
	args := m.Called(ctx, id)
	var n models.Notification
	if val := args.Get(0); val != nil {
		n = val.(models.Notification)
	}
	return n, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkRead(ctx context.Context, id int, recipientID int, readAt time.Time) error {
	args := m.Called(ctx, id, recipientID, readAt)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) MarkAllRead(ctx context.Context, recipientID int, readAt time.Time) error {
	args := m.Called(ctx, recipientID, readAt)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) Delete(ctx context.Context, id int, recipientID int) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) ListForUser(ctx context.Context, userID int, limit, offset int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	var ns []models.Notification
	if val := args.Get(0); val != nil {
		ns = val.([]models.Notification)
	}
	return ns, args.Error(1)
}

func (m *NotificationRepositoryMock) CountForUser(ctx context.Context, userID int) (int, int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *NotificationRepositoryMock) UnreadCount(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type PresenceRepositoryMock struct {
	mock.Mock
}

func (m *PresenceRepositoryMock) Upsert(ctx context.Context, userID int, online bool, at time.Time) error {
	args := m.Called(ctx, userID, online, at)
	return args.Error(0)
}

func (m *PresenceRepositoryMock) Get(ctx context.Context, userID int) (models.UserOnlineStatus, error) {
	args := m.Called(ctx, userID)
	var status models.UserOnlineStatus
	if val := args.Get(0); val != nil {
		status = val.(models.UserOnlineStatus)
	}
	return status, args.Error(1)
}

func (m *PresenceRepositoryMock) ListOnline(ctx context.Context) ([]models.UserOnlineStatus, error) {
	args := m.Called(ctx)
	var statuses []models.UserOnlineStatus
	if val := args.Get(0); val != nil {
		statuses = val.([]models.UserOnlineStatus)
	}
	return statuses, args.Error(1)
}

type BadgeRepositoryMock struct {
	mock.Mock
}

func (m *BadgeRepositoryMock) GetByCode(ctx context.Context, code string) (models.Badge, error) {
	args := m.Called(ctx, code)
	var badge models.Badge
	if val := args.Get(0); val != nil {
		badge = val.(models.Badge)
	}
	return badge, args.Error(1)
}

func (m *BadgeRepositoryMock) Award(ctx context.Context, userID int, badgeID int, at time.Time) (bool, error) {
	args := m.Called(ctx, userID, badgeID, at)
	return args.Bool(0), args.Error(1)
}

func (m *BadgeRepositoryMock) ListForUser(ctx context.Context, userID int) ([]models.Badge, error) {
	args := m.Called(ctx, userID)
	var badges []models.Badge
	if val := args.Get(0); val != nil {
		badges = val.([]models.Badge)
	}
	return badges, args.Error(1)
}

func (m *BadgeRepositoryMock) ActivityStats(ctx context.Context, userID int) (models.ActivityStats, error) {
	args := m.Called(ctx, userID)
	var stats models.ActivityStats
	if val := args.Get(0); val != nil {
		stats = val.(models.ActivityStats)
	}
	return stats, args.Error(1)
}

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) Save(ctx context.Context, folder, filename string, content io.Reader) (string, error) {
	args := m.Called(ctx, folder, filename, content)
	return args.String(0), args.Error(1)
}

// PusherMock records pushed events instead of delivering them.
type PusherMock struct {
	mock.Mock
}

func (m *PusherMock) SendToUser(userID int, event models.Event) {
	m.Called(userID, event)
}

func (m *PusherMock) SendToGroup(name string, event models.Event) {
	m.Called(name, event)
}
