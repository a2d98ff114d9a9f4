package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
	"messaging-service/internal/services"
)

type MessagesServiceMock struct {
	mock.Mock
}

func (m *MessagesServiceMock) Send(ctx context.Context, senderID int, input services.SendInput) (models.MessageView, error) {
	args := m.Called(ctx, senderID, input)
	var view models.MessageView
	if val := args.Get(0); val != nil {
		view = val.(models.MessageView)
	}
	return view, args.Error(1)
}

func (m *MessagesServiceMock) Edit(ctx context.Context, messageID int, requesterID int, content string) (models.MessageView, error) {
	args := m.Called(ctx, messageID, requesterID, content)
	var view models.MessageView
	if val := args.Get(0); val != nil {
		view = val.(models.MessageView)
	}
	return view, args.Error(1)
}

func (m *MessagesServiceMock) Delete(ctx context.Context, messageID int, requesterID int) error {
	args := m.Called(ctx, messageID, requesterID)
	return args.Error(0)
}

func (m *MessagesServiceMock) MarkConversationRead(ctx context.Context, conversationID string, readerID int) (int, error) {
	args := m.Called(ctx, conversationID, readerID)
	return args.Int(0), args.Error(1)
}

func (m *MessagesServiceMock) History(ctx context.Context, conversationID string, requesterID int, page, pageSize int) ([]models.MessageView, error) {
	args := m.Called(ctx, conversationID, requesterID, page, pageSize)
	var views []models.MessageView
	if val := args.Get(0); val != nil {
		views = val.([]models.MessageView)
	}
	return views, args.Error(1)
}

func (m *MessagesServiceMock) Typing(ctx context.Context, conversationID string, senderID int, isTyping bool) error {
	args := m.Called(ctx, conversationID, senderID, isTyping)
	return args.Error(0)
}

type ConversationsServiceMock struct {
	mock.Mock
}

func (m *ConversationsServiceMock) List(ctx context.Context, userID int, page, pageSize int) (services.ConversationList, error) {
	args := m.Called(ctx, userID, page, pageSize)
	var list services.ConversationList
	if val := args.Get(0); val != nil {
		list = val.(services.ConversationList)
	}
	return list, args.Error(1)
}

func (m *ConversationsServiceMock) Stats(ctx context.Context, userID int) (models.ConversationStats, error) {
	args := m.Called(ctx, userID)
	var stats models.ConversationStats
	if val := args.Get(0); val != nil {
		stats = val.(models.ConversationStats)
	}
	return stats, args.Error(1)
}

func (m *ConversationsServiceMock) Archive(ctx context.Context, conversationID string, userID int) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/messages", handler.Send)
	r.PUT("/messages/:message_id", handler.Edit)
	r.DELETE("/messages/:message_id", handler.Delete)
	r.POST("/messages/typing", handler.Typing)
	r.GET("/conversations", handler.ListConversations)
	r.GET("/conversations/stats", handler.Stats)
	r.GET("/conversations/:conversation_id/messages", handler.History)
	r.PUT("/conversations/:conversation_id/read", handler.MarkRead)
	r.PUT("/conversations/:conversation_id/archive", handler.Archive)
	return r
}

func TestSendMessageSuccess(t *testing.T) {
	messages := new(MessagesServiceMock)
	handler := NewMessageHandler(messages, new(ConversationsServiceMock), nil)
	router := setupMessageRouter(handler)

	messages.On("Send", mock.Anything, 1, mock.MatchedBy(func(in services.SendInput) bool {
		return in.RecipientID == 2 && in.Content == "hola" && in.Attachment == nil
	})).Return(models.MessageView{Message: models.Message{ID: 7, ConversationID: "1_2"}}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"recipient_id":2,"content":"hola"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messages.AssertExpectations(t)
}

func TestSendMessageEmptyBody(t *testing.T) {
	messages := new(MessagesServiceMock)
	handler := NewMessageHandler(messages, new(ConversationsServiceMock), nil)
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"recipient_id":2,"content":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	messages.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMessageMultipartAttachment(t *testing.T) {
	messages := new(MessagesServiceMock)
	handler := NewMessageHandler(messages, new(ConversationsServiceMock), nil)
	router := setupMessageRouter(handler)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("recipient_id", "2"))
	part, err := writer.CreateFormFile("attachment", "foto.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	messages.On("Send", mock.Anything, 1, mock.MatchedBy(func(in services.SendInput) bool {
		return in.RecipientID == 2 && in.Attachment != nil && in.Attachment.Filename == "foto.png"
	})).Return(models.MessageView{Message: models.Message{ID: 8, ConversationID: "1_2"}}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messages.AssertExpectations(t)
}

func TestSendMessageValidationError(t *testing.T) {
	messages := new(MessagesServiceMock)
	handler := NewMessageHandler(messages, new(ConversationsServiceMock), nil)
	router := setupMessageRouter(handler)

	messages.On("Send", mock.Anything, 1, mock.Anything).Return(models.MessageView{}, &services.ValidationError{Reason: "tipo de archivo no permitido"}).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"recipient_id":2,"content":"hola"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, false, resp["success"])
}

func TestSendMessageRecipientNotFound(t *testing.T) {
	messages := new(MessagesServiceMock)
	handler := NewMessageHandler(messages, new(ConversationsServiceMock), nil)
	router := setupMessageRouter(handler)

	messages.On("Send", mock.Anything, 1, mock.Anything).Return(models.MessageView{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"recipient_id":99,"content":"hola"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditMessageForbidden(t *testing.T) {
	messages := new(MessagesServiceMock)
	handler := NewMessageHandler(messages, new(ConversationsServiceMock), nil)
	router := setupMessageRouter(handler)

	messages.On("Edit", mock.Anything, 7, 1, "cambiado").Return(models.MessageView{}, services.ErrNotSender).Once()

	req := httptest.NewRequest(http.MethodPut, "/messages/7", bytes.NewBufferString(`{"content":"cambiado"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEditMessageInvalidID(t *testing.T) {
	handler := NewMessageHandler(new(MessagesServiceMock), new(ConversationsServiceMock), nil)
	router := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodPut, "/messages/abc", bytes.NewBufferString(`{"content":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMessageSuccess(t *testing.T) {
	messages := new(MessagesServiceMock)
	handler := NewMessageHandler(messages, new(ConversationsServiceMock), nil)
	router := setupMessageRouter(handler)

	messages.On("Delete", mock.Anything, 7, 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/messages/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messages.AssertExpectations(t)
}

func TestHistoryOutsiderForbidden(t *testing.T) {
	messages := new(MessagesServiceMock)
	handler := NewMessageHandler(messages, new(ConversationsServiceMock), nil)
	router := setupMessageRouter(handler)

	messages.On("History", mock.Anything, "2_5", 1, 1, 20).Return(([]models.MessageView)(nil), services.ErrNotParticipant).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/2_5/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkReadReturnsCount(t *testing.T) {
	messages := new(MessagesServiceMock)
	handler := NewMessageHandler(messages, new(ConversationsServiceMock), nil)
	router := setupMessageRouter(handler)

	messages.On("MarkConversationRead", mock.Anything, "1_2", 1).Return(3, nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/conversations/1_2/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data struct {
			Marked int `json:"marked"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Data.Marked)
}

func TestListConversationsSuccess(t *testing.T) {
	conversations := new(ConversationsServiceMock)
	handler := NewMessageHandler(new(MessagesServiceMock), conversations, nil)
	router := setupMessageRouter(handler)

	conversations.On("List", mock.Anything, 1, 1, 20).Return(services.ConversationList{Total: 1, Page: 1, PageSize: 20}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	conversations.AssertExpectations(t)
}

func TestStatsServiceError(t *testing.T) {
	conversations := new(ConversationsServiceMock)
	handler := NewMessageHandler(new(MessagesServiceMock), conversations, nil)
	router := setupMessageRouter(handler)

	conversations.On("Stats", mock.Anything, 1).Return(models.ConversationStats{}, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestArchiveSuccess(t *testing.T) {
	conversations := new(ConversationsServiceMock)
	handler := NewMessageHandler(new(MessagesServiceMock), conversations, nil)
	router := setupMessageRouter(handler)

	conversations.On("Archive", mock.Anything, "1_2", 1).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPut, "/conversations/1_2/archive", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	conversations.AssertExpectations(t)
}

func TestTypingSuccess(t *testing.T) {
	messages := new(MessagesServiceMock)
	handler := NewMessageHandler(messages, new(ConversationsServiceMock), nil)
	router := setupMessageRouter(handler)

	messages.On("Typing", mock.Anything, "1_2", 1, true).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages/typing", bytes.NewBufferString(`{"conversation_id":"1_2","is_typing":true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messages.AssertExpectations(t)
}
