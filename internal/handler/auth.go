package handler

import (
	"github.com/Invcxze/TaskTracker/internal/middleware"
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /auth/sign-up
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		FIO      string `json:"fio" binding:"required,max=120"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	user, token, err := h.authService.SignUp(req.Email, req.FIO, req.Password)
	if err != nil {
		FromError(c, err)
		return
	}

	Created(c, gin.H{
		"token": token,
		"user":  user.Brief(),
	})
}

// POST /auth/log-in
func (h *AuthHandler) LogIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	user, token, err := h.authService.LogIn(req.Email, req.Password)
	if err != nil {
		FromError(c, err)
		return
	}

	Success(c, gin.H{
		"token": token,
		"user":  user.Brief(),
	})
}

// POST /auth/log-out
//
// Not behind the auth middleware: a request without a valid session must get
// 403, not 401, so the handler resolves the token itself.
func (h *AuthHandler) LogOut(c *gin.Context) {
	if err := h.authService.LogOut(middleware.TokenKey(c)); err != nil {
		FromError(c, err)
		return
	}
	NoContent(c)
}

// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	Success(c, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"fio":          user.FIO,
		"is_active":    user.IsActive,
		"is_staff":     user.IsStaff,
		"is_superuser": user.IsSuperuser,
		"created_at":   user.CreatedAt,
	})
}
