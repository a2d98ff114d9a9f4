package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/repositories"
	"messaging-service/internal/services"
)

// envelope is the uniform response body for every endpoint.
type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string, errs ...string) {
	c.JSON(status, envelope{Success: false, Message: message, Errors: errs})
}

// respondServiceError maps service and repository errors to HTTP statuses.
// Internal details are logged upstream, never exposed to the client.
func respondServiceError(c *gin.Context, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		respondError(c, http.StatusBadRequest, validation.Reason)
	case errors.Is(err, services.ErrNotSender), errors.Is(err, services.ErrNotParticipant):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, repositories.ErrConversationNotFound),
		errors.Is(err, repositories.ErrMessageNotFound),
		errors.Is(err, repositories.ErrNotificationNotFound),
		errors.Is(err, repositories.ErrBadgeNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ocurrió un error inesperado")
	}
}
