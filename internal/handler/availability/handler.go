package availability

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
	ListAvailability(ctx context.Context, providerID uuid.UUID, day time.Time) ([]model.Slot, error)
}

type Handler struct {
	service  Service
	location *time.Location
}

func NewHandler(service Service, loc *time.Location) *Handler {
	return &Handler{service: service, location: loc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/providers/:providerId/available", h.ListAvailability)
}

func (h *Handler) ListAvailability(c *gin.Context) {
	providerID, ok := handler.ParamUUID(c, "providerId")
	if !ok {
		return
	}
	day, ok := handler.QueryDate(c, h.location)
	if !ok {
		return
	}

	slots, err := h.service.ListAvailability(c.Request.Context(), providerID, day)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}
