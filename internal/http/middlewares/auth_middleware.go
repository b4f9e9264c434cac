package middlewares

import (
	"net/http"

	"github.com/geocoder89/authhub/internal/auth"
	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie the session token travels in.
const SessionCookieName = "token"

// TokenVerifier is the slice of the jwt manager the middleware needs.
type TokenVerifier interface {
	VerifySessionToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func rejectUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// RequireAuth reads the session cookie and rejects the request when it is
// missing, tampered with or expired. Identity claims land on the gin context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookieName)

		if err != nil || raw == "" {
			rejectUnauthorized(c, "Missing session cookie")
			return
		}

		claims, err := m.jwt.VerifySessionToken(raw)

		if err != nil {
			rejectUnauthorized(c, "Invalid or expired session")
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxUsernameKey, claims.Username)
		c.Set(ctxEmailKey, claims.Email)

		c.Next()
	}
}

// Handlers read identity through these instead of the raw context keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, ctxUserIDKey)
}

func EmailFromContext(c *gin.Context) (string, bool) {
	return stringFromContext(c, ctxEmailKey)
}

func stringFromContext(c *gin.Context, key string) (string, bool) {
	v, ok := c.Get(key)

	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}
