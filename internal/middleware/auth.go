package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"anoa.com/cpquest/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHeader carries the end user the host application is acting for.
const UserHeader = "X-User-ID"

// AuthMiddleware trusts a single host application holding the service token.
// End-user authentication happens upstream.
type AuthMiddleware struct {
	token string
}

func NewAuthMiddleware(token string) *AuthMiddleware {
	return &AuthMiddleware{token: token}
}

func (m *AuthMiddleware) RequireService() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.token == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service token not configured"})
			c.Abort()
			return
		}

		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(tokenString), []byte(m.token)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid service token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireUser must run after RequireService.
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserHeader)
		if _, err := uuid.Parse(raw); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		c.Set(response.ContextUserID, raw)
		c.Next()
	}
}
