package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/services"
	"messaging-service/internal/telemetry"
)

// MessageHandler exposes the messaging endpoints.
type MessageHandler struct {
	messages      services.Messages
	conversations services.Conversations
	audit         *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messages services.Messages, conversations services.Conversations, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messages: messages, conversations: conversations, audit: audit}
}

type sendMessageRequest struct {
	RecipientID int    `json:"recipient_id" form:"recipient_id" binding:"required"`
	Content     string `json:"content" form:"content"`
	Type        string `json:"type" form:"type"`
	ReplyToID   *int   `json:"reply_to_id" form:"reply_to_id"`
}

// Send stores a message and broadcasts it. Accepts JSON, or multipart form
// data when an attachment travels with the message.
func (h *MessageHandler) Send(c *gin.Context) {
	userID := c.GetInt("userID")

	var req sendMessageRequest
	input := services.SendInput{}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		if fileHeader, err := c.FormFile("attachment"); err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				respondError(c, http.StatusBadRequest, "no se pudo leer el archivo adjunto")
				return
			}
			defer file.Close()
			input.Attachment = &services.AttachmentUpload{
				Filename: fileHeader.Filename,
				MimeType: fileHeader.Header.Get("Content-Type"),
				Size:     fileHeader.Size,
				Content:  file,
			}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.Content == "" && input.Attachment == nil {
		respondError(c, http.StatusBadRequest, "el mensaje no puede estar vacío")
		return
	}

	input.RecipientID = req.RecipientID
	input.Content = req.Content
	input.Type = req.Type
	input.ReplyToID = req.ReplyToID

	view, err := h.messages.Send(c.Request.Context(), userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	requester := strconv.Itoa(userID)
	h.audit.Emit(c.Request.Context(), "info",
		fmt.Sprintf("message sent conversation=%s message=%d", view.ConversationID, view.ID),
		requestIDFromContext(c), &requester)

	respondOK(c, http.StatusCreated, "mensaje enviado", view)
}

// Edit updates a message's content within the edit window.
func (h *MessageHandler) Edit(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "id de mensaje inválido")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.messages.Edit(c.Request.Context(), messageID, c.GetInt("userID"), req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "mensaje editado", view)
}

// Delete soft-deletes a message, sender only.
func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "id de mensaje inválido")
		return
	}

	userID := c.GetInt("userID")
	if err := h.messages.Delete(c.Request.Context(), messageID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	requester := strconv.Itoa(userID)
	h.audit.Emit(c.Request.Context(), "info",
		fmt.Sprintf("message deleted message=%d", messageID),
		requestIDFromContext(c), &requester)

	respondOK(c, http.StatusOK, "mensaje eliminado", nil)
}

// History returns the messages of one conversation.
func (h *MessageHandler) History(c *gin.Context) {
	page, pageSize := pagination(c)
	views, err := h.messages.History(c.Request.Context(), c.Param("conversation_id"), c.GetInt("userID"), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"messages": views})
}

// MarkRead marks every unread message addressed to the caller as read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	marked, err := h.messages.MarkConversationRead(c.Request.Context(), c.Param("conversation_id"), c.GetInt("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "conversación marcada como leída", gin.H{"marked": marked})
}

// ListConversations returns the caller's conversation listing.
func (h *MessageHandler) ListConversations(c *gin.Context) {
	page, pageSize := pagination(c)
	list, err := h.conversations.List(c.Request.Context(), c.GetInt("userID"), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", list)
}

// Stats returns the caller's aggregate messaging stats.
func (h *MessageHandler) Stats(c *gin.Context) {
	stats, err := h.conversations.Stats(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", stats)
}

// Archive hides a conversation from the caller's listing.
func (h *MessageHandler) Archive(c *gin.Context) {
	if err := h.conversations.Archive(c.Request.Context(), c.Param("conversation_id"), c.GetInt("userID")); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "conversación archivada", nil)
}

// Typing forwards the transient typing indicator.
func (h *MessageHandler) Typing(c *gin.Context) {
	var req struct {
		ConversationID string `json:"conversation_id" binding:"required"`
		IsTyping       bool   `json:"is_typing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.messages.Typing(c.Request.Context(), req.ConversationID, c.GetInt("userID"), req.IsTyping); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", nil)
}
