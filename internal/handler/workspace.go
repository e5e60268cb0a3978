package handler

import (
	"github.com/Invcxze/TaskTracker/internal/middleware"
	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-gonic/gin"
)

type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
}

func NewWorkspaceHandler(workspaceService *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

// POST /workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=128"`
		Description string `json:"description" binding:"max=5000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	userID := middleware.GetCurrentUserID(c)
	ws, err := h.workspaceService.Create(req.Name, req.Description, userID)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, ws)
}

// GET /workspaces
func (h *WorkspaceHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	workspaces, err := h.workspaceService.List(userID)
	if err != nil {
		Error(c, 500, 50001, err.Error())
		return
	}
	Success(c, workspaces)
}

// GET /workspaces/:id
func (h *WorkspaceHandler) GetDetail(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	ws, err := h.workspaceService.GetByID(userID, id)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, ws)
}

// PATCH /workspaces/:id
func (h *WorkspaceHandler) Update(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	ws, err := h.workspaceService.Update(userID, id, req.Name, req.Description)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, ws)
}

// DELETE /workspaces/:id
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.workspaceService.Delete(userID, id); err != nil {
		FromError(c, err)
		return
	}
	NoContent(c)
}

func membershipJSON(m *model.UserWorkspaceRole) gin.H {
	item := gin.H{
		"id":           m.ID,
		"user_id":      m.UserID,
		"workspace_id": m.WorkspaceID,
		"role_id":      m.RoleID,
	}
	if m.User != nil {
		item["user"] = m.User.Brief()
	}
	if m.Role != nil {
		item["role"] = m.Role.Name
	}
	return item
}

// GET /workspaces/:id/roles
//
// Membership endpoints are open to any authenticated user: the first role in
// a fresh workspace has to come from someone who is not yet a member.
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	id := parseID(c.Param("id"))

	members, err := h.workspaceService.ListMembers(id)
	if err != nil {
		Error(c, 500, 50001, err.Error())
		return
	}
	list := make([]gin.H, 0, len(members))
	for i := range members {
		list = append(list, membershipJSON(&members[i]))
	}
	Success(c, list)
}

// POST /workspaces/:id/roles
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	id := parseID(c.Param("id"))

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
		RoleID uint `json:"role_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	member, err := h.workspaceService.AddMember(id, req.UserID, req.RoleID)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, membershipJSON(member))
}

// PATCH /workspaces/:id/roles/:member_id
func (h *WorkspaceHandler) UpdateMember(c *gin.Context) {
	id := parseID(c.Param("id"))
	memberID := parseID(c.Param("member_id"))

	var req struct {
		RoleID uint `json:"role_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	member, err := h.workspaceService.UpdateMember(id, memberID, req.RoleID)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, membershipJSON(member))
}

// DELETE /workspaces/:id/roles/:member_id
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	id := parseID(c.Param("id"))
	memberID := parseID(c.Param("member_id"))

	if err := h.workspaceService.RemoveMember(id, memberID); err != nil {
		FromError(c, err)
		return
	}
	NoContent(c)
}
