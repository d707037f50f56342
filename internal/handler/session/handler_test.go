package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/booking-api/internal/model"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type stubService struct {
	session *model.Session
	err     error
	got     *model.SessionRequest
}

func (s *stubService) Create(ctx context.Context, req *model.SessionRequest) (*model.Session, error) {
	s.got = req
	return s.session, s.err
}

func post(svc Service, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group(""))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateSession(t *testing.T) {
	svc := &stubService{session: &model.Session{User: &model.User{Name: "Ana", PasswordHash: "secret-hash"}, Token: "jwt"}}

	w := post(svc, `{"email":"ana@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"jwt"`)
	assert.NotContains(t, w.Body.String(), "secret-hash")
	assert.Equal(t, "ana@example.com", svc.got.Email)
}

func TestCreateSession_Invalid(t *testing.T) {
	w := post(&stubService{}, `{"email":"ana@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(&stubService{err: apperrors.Unauthorized("invalid email or password")}, `{"email":"ana@example.com","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
