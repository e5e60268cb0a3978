package handler

import (
	"strconv"

	"github.com/Invcxze/TaskTracker/internal/search"
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *service.UserService
	index       search.Index
}

func NewUserHandler(userService *service.UserService, index search.Index) *UserHandler {
	return &UserHandler{userService: userService, index: index}
}

// PATCH /admin/users/:id/permissions
func (h *UserHandler) UpdatePermissions(c *gin.Context) {
	id := parseID(c.Param("id"))

	var req service.PermissionUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	user, err := h.userService.UpdatePermissions(id, req)
	if err != nil {
		FromError(c, err)
		return
	}

	Success(c, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"fio":          user.FIO,
		"is_staff":     user.IsStaff,
		"is_superuser": user.IsSuperuser,
	})
}

// GET /admin/users/:id/permissions
func (h *UserHandler) GetPermissions(c *gin.Context) {
	id := parseID(c.Param("id"))

	user, err := h.userService.GetByID(id)
	if err != nil {
		FromError(c, err)
		return
	}

	roles, err := h.userService.WorkspaceRoles(id)
	if err != nil {
		Error(c, 500, 50001, err.Error())
		return
	}
	memberships := make([]gin.H, 0, len(roles))
	for _, r := range roles {
		item := gin.H{
			"workspace_id": r.WorkspaceID,
			"role_id":      r.RoleID,
		}
		if r.Role != nil {
			item["role"] = r.Role.Name
		}
		memberships = append(memberships, item)
	}

	Success(c, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"fio":          user.FIO,
		"is_staff":     user.IsStaff,
		"is_superuser": user.IsSuperuser,
		"memberships":  memberships,
	})
}

// GET /admin/users/search
func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("search")

	var filters search.UserFilters
	if s := c.Query("is_active"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			BadRequest(c, 40001, "is_active must be a boolean")
			return
		}
		filters.IsActive = &v
	}
	if s := c.Query("is_staff"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			BadRequest(c, 40001, "is_staff must be a boolean")
			return
		}
		filters.IsStaff = &v
	}
	if s := c.Query("is_superuser"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			BadRequest(c, 40001, "is_superuser must be a boolean")
			return
		}
		filters.IsSuperuser = &v
	}
	filters.PermissionCode = c.Query("permission")

	ids, err := h.index.SearchUsers(c.Request.Context(), query, filters)
	if err != nil {
		Error(c, 500, 50002, "search is unavailable")
		return
	}

	users, err := h.userService.FetchByIDs(ids)
	if err != nil {
		Error(c, 500, 50001, err.Error())
		return
	}

	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		list = append(list, gin.H{
			"id":           u.ID,
			"email":        u.Email,
			"fio":          u.FIO,
			"is_active":    u.IsActive,
			"is_staff":     u.IsStaff,
			"is_superuser": u.IsSuperuser,
		})
	}
	Success(c, list)
}
