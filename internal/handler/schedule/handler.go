package schedule

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
)

type Service interface {
	List(ctx context.Context, providerID uuid.UUID, day time.Time) ([]*model.AppointmentWithClient, error)
}

type Handler struct {
	service  Service
	location *time.Location
}

func NewHandler(service Service, loc *time.Location) *Handler {
	return &Handler{service: service, location: loc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/schedule", h.ListSchedule)
}

// ListSchedule returns the authenticated provider's appointments for a day.
func (h *Handler) ListSchedule(c *gin.Context) {
	userID, ok := handler.MustUserID(c)
	if !ok {
		return
	}
	day, ok := handler.QueryDate(c, h.location)
	if !ok {
		return
	}

	appointments, err := h.service.List(c.Request.Context(), userID, day)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}
