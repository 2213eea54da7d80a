package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/cpquest/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(token)

	r := gin.New()
	svc := r.Group("", m.RequireService())
	svc.GET("/jobs", func(c *gin.Context) { c.Status(http.StatusOK) })
	user := svc.Group("", m.RequireUser())
	user.GET("/me", func(c *gin.Context) {
		id, err := response.GetUserID(c)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.String(http.StatusOK, id.String())
	})
	return r
}

func TestRequireService(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"valid", "s3cret", "Bearer s3cret", http.StatusOK},
		{"wrong token", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"malformed", "s3cret", "s3cret", http.StatusUnauthorized},
		{"not configured", "", "Bearer ", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			newRouter(tt.token).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireUser(t *testing.T) {
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	req.Header.Set(UserHeader, id.String())
	w := httptest.NewRecorder()
	newRouter("s3cret").ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	req.Header.Set(UserHeader, "alice")
	w = httptest.NewRecorder()
	newRouter("s3cret").ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
