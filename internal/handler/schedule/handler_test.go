package schedule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

func (m *mockService) List(ctx context.Context, providerID uuid.UUID, day time.Time) ([]*model.AppointmentWithClient, error) {
	args := m.Called(ctx, providerID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.AppointmentWithClient), args.Error(1)
}

func setupRouter(svc Service, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("")
	group.Use(func(c *gin.Context) {
		c.Set(handler.UserIDKey, userID)
		c.Next()
	})
	NewHandler(svc, time.UTC).RegisterRoutes(group)
	return r
}

func TestListSchedule(t *testing.T) {
	svc := new(mockService)
	providerID := uuid.New()
	svc.On("List", mock.Anything, providerID, mock.Anything).Return([]*model.AppointmentWithClient{}, nil)

	w := httptest.NewRecorder()
	setupRouter(svc, providerID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schedule?date=2024-01-10", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestListSchedule_NotAProvider(t *testing.T) {
	svc := new(mockService)
	userID := uuid.New()
	svc.On("List", mock.Anything, userID, mock.Anything).Return(nil, apperrors.NotAProvider("user is not a provider"))

	w := httptest.NewRecorder()
	setupRouter(svc, userID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schedule?date=2024-01-10", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "user is not a provider")
}
