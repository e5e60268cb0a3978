package middleware

import (
	"net/http"
	"strings"

	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-gonic/gin"
)

// TokenKey extracts the opaque token from the Authorization header. Both
// "Token <key>" and "Bearer <key>" schemes are accepted; anything else
// yields the empty string.
func TokenKey(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	for _, scheme := range []string{"Token ", "Bearer "} {
		if strings.HasPrefix(authHeader, scheme) {
			return strings.TrimSpace(authHeader[len(scheme):])
		}
	}
	return ""
}

func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			abortUnauthorized(c, 40101, "authentication credentials were not provided")
			return
		}
		key := TokenKey(c)
		if key == "" {
			abortUnauthorized(c, 40101, "invalid authorization header")
			return
		}

		user, err := authService.Authenticate(key)
		if err != nil {
			abortUnauthorized(c, 40103, "invalid token")
			return
		}

		c.Set("userID", user.ID)
		c.Set("isStaff", user.IsStaff)
		c.Set("isSuperuser", user.IsSuperuser)
		c.Set("user", user)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"code": code, "message": message},
	})
}

func GetCurrentUser(c *gin.Context) *model.User {
	u, exists := c.Get("user")
	if !exists {
		return nil
	}
	return u.(*model.User)
}

func GetCurrentUserID(c *gin.Context) uint {
	id, _ := c.Get("userID")
	return id.(uint)
}

func GetCurrentUserIsStaff(c *gin.Context) bool {
	v, exists := c.Get("isStaff")
	if !exists {
		return false
	}
	return v.(bool)
}

func GetCurrentUserIsSuperuser(c *gin.Context) bool {
	v, exists := c.Get("isSuperuser")
	if !exists {
		return false
	}
	return v.(bool)
}
