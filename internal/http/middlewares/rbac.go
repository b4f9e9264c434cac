package middlewares

import (
	"context"
	"net/http"

	"github.com/geocoder89/authhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// AdminChecker loads the caller's record; session claims do not carry the
// admin flag so it has to come from the store.
type AdminChecker interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

func (m *AuthMiddleware) RequireAdmin(users AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := UserIDFromContext(c)

		if !ok || id == "" {
			rejectUnauthorized(c, "Missing identity context")
			return
		}

		u, err := users.GetByID(c.Request.Context(), id)

		if err != nil || !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Admin access required",
				},
			})
			return
		}

		c.Next()
	}
}
