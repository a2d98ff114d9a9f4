package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/services"
)

// BadgeHandler exposes badge listing and manual awards.
type BadgeHandler struct {
	badges services.Badges
}

// NewBadgeHandler builds a BadgeHandler.
func NewBadgeHandler(badges services.Badges) *BadgeHandler {
	return &BadgeHandler{badges: badges}
}

// List returns the caller's badges.
func (h *BadgeHandler) List(c *gin.Context) {
	badges, err := h.badges.ListForUser(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"badges": badges})
}

// Award grants a badge by its stable code. Repeated awards are a no-op.
func (h *BadgeHandler) Award(c *gin.Context) {
	var req struct {
		UserID int    `json:"user_id" binding:"required"`
		Code   string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	awarded, err := h.badges.Award(c.Request.Context(), req.UserID, req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !awarded {
		respondError(c, http.StatusConflict, "el usuario ya tiene esta insignia")
		return
	}
	respondOK(c, http.StatusCreated, "insignia otorgada", nil)
}
