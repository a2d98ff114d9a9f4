package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/services"
)

// NotificationHandler exposes the notification and presence endpoints.
type NotificationHandler struct {
	notifications services.Notifications
	presence      services.Presence
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(notifications services.Notifications, presence services.Presence) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, presence: presence}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	list, err := h.notifications.ListForUser(c.Request.Context(), c.GetInt("userID"), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", list)
}

// UnreadCount returns the caller's unread notification count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"count": count})
}

// MarkRead flips one notification's read state, ownership-checked.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "id de notificación inválido")
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), id, c.GetInt("userID")); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "notificación leída", nil)
}

// MarkAllRead flips every unread notification of the caller.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), c.GetInt("userID")); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "notificaciones leídas", nil)
}

// Delete removes one notification, ownership-checked.
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "id de notificación inválido")
		return
	}
	if err := h.notifications.Delete(c.Request.Context(), id, c.GetInt("userID")); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "notificación eliminada", nil)
}

type createNotificationRequest struct {
	RecipientID int            `json:"recipient_id"`
	Title       string         `json:"title" binding:"required"`
	Message     string         `json:"message" binding:"required"`
	Type        string         `json:"type" binding:"required"`
	Priority    string         `json:"priority"`
	ActionURL   *string        `json:"action_url"`
	Data        map[string]any `json:"data"`
}

// Create persists and pushes one notification.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.RecipientID <= 0 {
		respondError(c, http.StatusBadRequest, "recipient_id es obligatorio")
		return
	}

	senderID := c.GetInt("userID")
	view, err := h.notifications.Create(c.Request.Context(), services.CreateNotificationInput{
		RecipientID: req.RecipientID,
		SenderID:    &senderID,
		Title:       req.Title,
		Message:     req.Message,
		Type:        req.Type,
		Priority:    req.Priority,
		ActionURL:   req.ActionURL,
		Data:        req.Data,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "notificación creada", view)
}

type bulkNotificationRequest struct {
	RecipientIDs []int          `json:"recipient_ids" binding:"required"`
	Title        string         `json:"title" binding:"required"`
	Message      string         `json:"message" binding:"required"`
	Type         string         `json:"type" binding:"required"`
	Priority     string         `json:"priority"`
	ActionURL    *string        `json:"action_url"`
	Data         map[string]any `json:"data"`
}

// CreateBulk persists one notification per recipient and fans the pushes out.
func (h *NotificationHandler) CreateBulk(c *gin.Context) {
	var req bulkNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.RecipientIDs) == 0 {
		respondError(c, http.StatusBadRequest, "recipient_ids no puede estar vacío")
		return
	}

	senderID := c.GetInt("userID")
	views, err := h.notifications.CreateBulk(c.Request.Context(), req.RecipientIDs, services.CreateNotificationInput{
		SenderID:  &senderID,
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		Priority:  req.Priority,
		ActionURL: req.ActionURL,
		Data:      req.Data,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "notificaciones creadas", gin.H{"notifications": views})
}

// OnlineStatus returns one user's presence.
func (h *NotificationHandler) OnlineStatus(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "id de usuario inválido")
		return
	}
	status, err := h.presence.Status(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", status)
}

// OnlineUsers returns every user currently flagged online.
func (h *NotificationHandler) OnlineUsers(c *gin.Context) {
	users, err := h.presence.OnlineUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"online_users": users})
}
