package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireStaff gates the admin surface. Superusers pass implicitly.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetCurrentUserIsStaff(c) && !GetCurrentUserIsSuperuser(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"code": 40302, "message": "staff access required"},
			})
			return
		}
		c.Next()
	}
}
