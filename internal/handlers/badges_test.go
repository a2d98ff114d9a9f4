package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

type BadgesServiceMock struct {
	mock.Mock
}

func (m *BadgesServiceMock) Award(ctx context.Context, userID int, code string) (bool, error) {
	args := m.Called(ctx, userID, code)
	return args.Bool(0), args.Error(1)
}

func (m *BadgesServiceMock) Evaluate(ctx context.Context, userID int) ([]models.Badge, error) {
	args := m.Called(ctx, userID)
	var badges []models.Badge
	if val := args.Get(0); val != nil {
		badges = val.([]models.Badge)
	}
	return badges, args.Error(1)
}

func (m *BadgesServiceMock) ListForUser(ctx context.Context, userID int) ([]models.Badge, error) {
	args := m.Called(ctx, userID)
	var badges []models.Badge
	if val := args.Get(0); val != nil {
		badges = val.([]models.Badge)
	}
	return badges, args.Error(1)
}

func setupBadgeRouter(handler *BadgeHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/badges", handler.List)
	r.POST("/badges/award", handler.Award)
	return r
}

func TestListBadgesSuccess(t *testing.T) {
	badges := new(BadgesServiceMock)
	handler := NewBadgeHandler(badges)
	router := setupBadgeRouter(handler)

	badges.On("ListForUser", mock.Anything, 1).Return([]models.Badge{{ID: 1, Code: "first_message"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/badges", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	badges.AssertExpectations(t)
}

func TestAwardBadgeSuccess(t *testing.T) {
	badges := new(BadgesServiceMock)
	handler := NewBadgeHandler(badges)
	router := setupBadgeRouter(handler)

	badges.On("Award", mock.Anything, 5, "conector").Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/badges/award", bytes.NewBufferString(`{"user_id":5,"code":"conector"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	badges.AssertExpectations(t)
}

func TestAwardBadgeAlreadyOwned(t *testing.T) {
	badges := new(BadgesServiceMock)
	handler := NewBadgeHandler(badges)
	router := setupBadgeRouter(handler)

	badges.On("Award", mock.Anything, 5, "conector").Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/badges/award", bytes.NewBufferString(`{"user_id":5,"code":"conector"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAwardBadgeUnknownCode(t *testing.T) {
	badges := new(BadgesServiceMock)
	handler := NewBadgeHandler(badges)
	router := setupBadgeRouter(handler)

	badges.On("Award", mock.Anything, 5, "nope").Return(false, repositories.ErrBadgeNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/badges/award", bytes.NewBufferString(`{"user_id":5,"code":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
