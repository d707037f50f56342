package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/booking-api/pkg/clock"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

// UserIDKey is the gin context key holding the authenticated user's id.
const UserIDKey = "user_id"

var statusByKind = map[apperrors.Kind]int{
	apperrors.KindValidation:         http.StatusBadRequest,
	apperrors.KindPastDate:           http.StatusBadRequest,
	apperrors.KindSelfBooking:        http.StatusBadRequest,
	apperrors.KindCancellationWindow: http.StatusBadRequest,
	apperrors.KindNotAProvider:       http.StatusUnauthorized,
	apperrors.KindUnauthorized:       http.StatusUnauthorized,
	apperrors.KindPermission:         http.StatusForbidden,
	apperrors.KindNotFound:           http.StatusNotFound,
	apperrors.KindSlotUnavailable:    http.StatusConflict,
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	if status, ok := statusByKind[apperrors.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondError writes the error envelope. Infrastructure failures are logged
// and their message is not exposed.
func RespondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status := StatusFor(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString("request_id")).
			Msg("Request failed")
		message = "internal server error"
	}

	c.AbortWithStatusJSON(status, &Response{
		Status:  "error",
		Message: message,
		Code:    string(kind),
	})
}

// BindJSON binds and validates the body into req. It writes a 400 and returns
// false on failure.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		RespondError(c, apperrors.Validation(bindingMessage(err)))
		return false
	}
	return true
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "uuid":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid id", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must have at least %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return "validation fails: " + strings.Join(msgs, ", ")
}

// CurrentUserID returns the id stored by the auth middleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// MustUserID aborts with 401 when no user is attached to the request.
func MustUserID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := CurrentUserID(c)
	if !ok {
		RespondError(c, apperrors.Unauthorized("token not provided"))
	}
	return id, ok
}

// ParamUUID parses a path parameter, writing a 400 when malformed.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, apperrors.Validation(fmt.Sprintf("invalid %s", name)))
		return uuid.Nil, false
	}
	return id, true
}

// QueryDate parses the date query parameter in loc.
func QueryDate(c *gin.Context, loc *time.Location) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		RespondError(c, apperrors.Validation("date is required"))
		return time.Time{}, false
	}
	t, err := clock.ParseInstant(raw, loc)
	if err != nil {
		RespondError(c, apperrors.Validation("invalid date"))
		return time.Time{}, false
	}
	return t, true
}
