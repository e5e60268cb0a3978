package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.AuthToken{}))

	authService := service.NewAuthService(db)
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(authService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetCurrentUserID(c), "is_staff": GetCurrentUserIsStaff(c)})
	})
	return r, authService
}

func TestAuthMiddlewareAcceptsTokenAndBearer(t *testing.T) {
	r, svc := newAuthRouter(t)
	_, token, err := svc.SignUp("anna@example.com", "Anna", "supersecret")
	require.NoError(t, err)

	for _, scheme := range []string{"Token ", "Bearer "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", scheme+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "scheme %q", scheme)
	}
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "40101")
}

func TestAuthMiddlewareRejectsUnknownToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token deadbeef")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "40103")
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	r, svc := newAuthRouter(t)
	_, token, err := svc.SignUp("anna@example.com", "Anna", "supersecret")
	require.NoError(t, err)
	require.NoError(t, svc.LogOut(token))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Token "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		c.Set("isStaff", false)
		c.Set("isSuperuser", false)
	}, RequireStaff(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/admin-ok", func(c *gin.Context) {
		c.Set("isStaff", true)
		c.Set("isSuperuser", false)
	}, RequireStaff(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin-ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
