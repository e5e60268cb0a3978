package handler

import (
	"github.com/Invcxze/TaskTracker/internal/middleware"
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-gonic/gin"
)

type DependencyHandler struct {
	dependencyService *service.DependencyService
}

func NewDependencyHandler(dependencyService *service.DependencyService) *DependencyHandler {
	return &DependencyHandler{dependencyService: dependencyService}
}

// POST /task-dependencies
func (h *DependencyHandler) Create(c *gin.Context) {
	var req struct {
		FromTaskID     uint   `json:"from_task_id" binding:"required"`
		ToTaskID       uint   `json:"to_task_id" binding:"required"`
		DependencyType string `json:"dependency_type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	userID := middleware.GetCurrentUserID(c)
	dep, err := h.dependencyService.Create(userID, req.FromTaskID, req.ToTaskID, req.DependencyType)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, dep)
}

// GET /task-dependencies
func (h *DependencyHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	deps, err := h.dependencyService.List(userID)
	if err != nil {
		Error(c, 500, 50001, err.Error())
		return
	}
	Success(c, deps)
}

// GET /task-dependencies/:id
func (h *DependencyHandler) GetDetail(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	dep, err := h.dependencyService.GetByID(userID, id)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, dep)
}

// DELETE /task-dependencies/:id
func (h *DependencyHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.dependencyService.Delete(userID, id); err != nil {
		FromError(c, err)
		return
	}
	NoContent(c)
}
