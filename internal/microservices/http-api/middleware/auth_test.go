package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"yamdb/internal/access"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAuthService struct {
	service.AuthService
	mock.Mock
}

func (m *mockAuthService) Authenticate(ctx context.Context, token string) (*access.Actor, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*access.Actor), args.Error(1)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newRouter(svc service.AuthService, rule access.Rule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(svc, quietLogger()))
	handlers := []gin.HandlerFunc{}
	if rule != nil {
		handlers = append(handlers, Authorize(rule))
	}
	handlers = append(handlers, func(c *gin.Context) {
		actor := CurrentActor(c)
		if actor == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, actor.Username)
	})
	r.Any("/x", handlers...)
	return r
}

func do(r http.Handler, method, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("Authenticate", "good").Return(&access.Actor{UserID: "u1", Username: "alice", Role: access.RoleUser}, nil)
	svc.On("Authenticate", "stale").Return(nil, service.ErrUnauthenticated)
	svc.On("Authenticate", "dbdown").Return(nil, errors.New("connection reset"))
	r := newRouter(svc, nil)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no header is anonymous", "", http.StatusOK, "anonymous"},
		{"valid token", "Bearer good", http.StatusOK, "alice"},
		{"lowercase scheme", "bearer good", http.StatusOK, "alice"},
		{"wrong scheme", "Token good", http.StatusUnauthorized, ""},
		{"missing token", "Bearer", http.StatusUnauthorized, ""},
		{"rejected token", "Bearer stale", http.StatusUnauthorized, ""},
		{"store failure", "Bearer dbdown", http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.header)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("Authenticate", "user").Return(&access.Actor{UserID: "u1", Username: "alice", Role: access.RoleUser}, nil)
	svc.On("Authenticate", "admin").Return(&access.Actor{UserID: "u2", Username: "root", Role: access.RoleAdmin}, nil)

	t.Run("general rule", func(t *testing.T) {
		r := newRouter(svc, access.General)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "").Code)
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "").Code)
		assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "Bearer user").Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "Bearer admin").Code)
	})

	t.Run("authenticated rule", func(t *testing.T) {
		r := newRouter(svc, access.Authenticated)
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "").Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodPatch, "Bearer user").Code)
	})

	t.Run("admin only", func(t *testing.T) {
		r := newRouter(svc, access.AdminOnly)
		assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "Bearer user").Code)
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "Bearer admin").Code)
	})
}
