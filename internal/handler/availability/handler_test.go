package availability

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

	"github.com/jwalitptl/booking-api/internal/model"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) ListAvailability(ctx context.Context, providerID uuid.UUID, day time.Time) ([]model.Slot, error) {
	args := m.Called(ctx, providerID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Slot), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc, time.UTC).RegisterRoutes(r.Group(""))
	return r
}

func TestListAvailability(t *testing.T) {
	svc := new(mockService)
	providerID := uuid.New()
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	svc.On("ListAvailability", mock.Anything, providerID, mock.MatchedBy(day.Equal)).
		Return([]model.Slot{{Time: "08:00", Value: day.Add(8 * time.Hour), Available: true}}, nil)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/providers/"+providerID.String()+"/available?date=2024-01-10", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"time":"08:00"`)
	assert.Contains(t, w.Body.String(), `"available":true`)
	svc.AssertExpectations(t)
}

func TestListAvailability_BadInput(t *testing.T) {
	svc := new(mockService)

	w := httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/providers/nope/available?date=2024-01-10", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	setupRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/providers/"+uuid.NewString()+"/available", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertNotCalled(t, "ListAvailability", mock.Anything, mock.Anything, mock.Anything)
}
