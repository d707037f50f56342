package file

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type Service interface {
	Save(ctx context.Context, name string, size int64, r io.Reader) (*model.File, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/files", h.UploadFile)
}

// UploadFile stores the multipart field "file".
func (h *Handler) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		handler.RespondError(c, apperrors.Validation("file is required"))
		return
	}

	src, err := header.Open()
	if err != nil {
		handler.RespondError(c, apperrors.Infrastructure("failed to read upload", err))
		return
	}
	defer src.Close()

	f, err := h.service.Save(c.Request.Context(), header.Filename, header.Size, src)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(f))
}
