package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func hasJSONBody(c *gin.Context) bool {
	ct := strings.ToLower(c.GetHeader("Content-Type"))

	return strings.HasPrefix(ct, "application/json")
}

// RequireJSON rejects mutating requests whose body is not json. Body-less
// posts pass through; logout sends one.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if c.Request.ContentLength != 0 && !hasJSONBody(c) {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error": gin.H{
						"code":    "unsupported_media_type",
						"message": "Content-Type must be application/json",
					},
				})
				return
			}
		}

		c.Next()
	}
}
