package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"vinyl-reserve/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const ctxAliasKey = "alias"

// AuthMiddleware resolves the shopper alias from a session token. The
// alias is the whole identity; there are no roles or accounts here.
type AuthMiddleware struct {
	sessions *jwt.Service
}

func NewAuthMiddleware(sessions *jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

func (m *AuthMiddleware) RequireAlias() gin.HandlerFunc {
	return func(c *gin.Context) {
		alias, err := m.aliasFromToken(c)
		if err != nil {
			slog.Warn("session validation failed", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired session",
			})
			c.Abort()
			return
		}
		if alias == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Session token required",
			})
			c.Abort()
			return
		}

		c.Set(ctxAliasKey, alias)
		c.Next()
	}
}

// OptionalAlias authenticates when a token is present but never
// aborts; anonymous viewers get the public status view.
func (m *AuthMiddleware) OptionalAlias() gin.HandlerFunc {
	return func(c *gin.Context) {
		alias, err := m.aliasFromToken(c)
		if err == nil && alias != "" {
			c.Set(ctxAliasKey, alias)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) aliasFromToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", nil
	}
	token := strings.TrimSpace(authHeader[len("Bearer "):])
	if token == "" {
		return "", nil
	}

	claims, err := m.sessions.ValidateToken(token)
	if err != nil {
		return "", err
	}
	return claims.Alias, nil
}

func GetAlias(c *gin.Context) (string, bool) {
	alias, exists := c.Get(ctxAliasKey)
	if !exists {
		return "", false
	}
	a, ok := alias.(string)
	return a, ok && a != ""
}
