package appointment

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/clock"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, in model.CreateAppointmentInput) (*model.Appointment, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page int) ([]*model.AppointmentWithProvider, error)
	Cancel(ctx context.Context, requesterID, appointmentID uuid.UUID) (*model.Appointment, error)
}

type Handler struct {
	service  Service
	location *time.Location
}

// NewHandler parses dates without an offset in loc.
func NewHandler(service Service, loc *time.Location) *Handler {
	return &Handler{service: service, location: loc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.DELETE("/:id", h.CancelAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	userID, ok := handler.MustUserID(c)
	if !ok {
		return
	}

	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	date, err := clock.ParseInstant(req.Date, h.location)
	if err != nil {
		handler.RespondError(c, apperrors.Validation("invalid date"))
		return
	}

	appointment, err := h.service.Create(c.Request.Context(), userID, model.CreateAppointmentInput{
		ProviderID: uuid.MustParse(req.ProviderID),
		Date:       date,
	})
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	userID, ok := handler.MustUserID(c)
	if !ok {
		return
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			handler.RespondError(c, apperrors.Validation("invalid page"))
			return
		}
		page = p
	}

	appointments, err := h.service.ListForUser(c.Request.Context(), userID, page)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	userID, ok := handler.MustUserID(c)
	if !ok {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	appointment, err := h.service.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}
