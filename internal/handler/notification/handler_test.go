package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) List(ctx context.Context, userID uuid.UUID) ([]*model.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Notification), args.Error(1)
}

func (m *mockService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*model.Notification, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Notification), args.Error(1)
}

func setupRouter(svc Service, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("")
	group.Use(func(c *gin.Context) {
		c.Set(handler.UserIDKey, userID)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(group)
	return r
}

func TestListNotifications(t *testing.T) {
	svc := new(mockService)
	userID := uuid.New()
	svc.On("List", mock.Anything, userID).Return([]*model.Notification{{Content: "New appointment"}}, nil)

	w := httptest.NewRecorder()
	setupRouter(svc, userID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "New appointment")
}

func TestMarkRead(t *testing.T) {
	userID, id := uuid.New(), uuid.New()

	svc := new(mockService)
	svc.On("MarkRead", mock.Anything, userID, id).Return(&model.Notification{Base: model.Base{ID: id}, Read: true}, nil)
	w := httptest.NewRecorder()
	setupRouter(svc, userID).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/notifications/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"read":true`)

	svc = new(mockService)
	svc.On("MarkRead", mock.Anything, userID, id).Return(nil, apperrors.NotFound("notification"))
	w = httptest.NewRecorder()
	setupRouter(svc, userID).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/notifications/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
