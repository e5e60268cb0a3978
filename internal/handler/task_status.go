package handler

import (
	"github.com/Invcxze/TaskTracker/internal/middleware"
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-gonic/gin"
)

type TaskStatusHandler struct {
	statusService *service.TaskStatusService
}

func NewTaskStatusHandler(statusService *service.TaskStatusService) *TaskStatusHandler {
	return &TaskStatusHandler{statusService: statusService}
}

// POST /task-statuses
func (h *TaskStatusHandler) Create(c *gin.Context) {
	var req service.TaskStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	userID := middleware.GetCurrentUserID(c)
	status, err := h.statusService.Create(userID, req)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, status)
}

// GET /task-statuses
func (h *TaskStatusHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var workspaceID *uint
	if s := c.Query("workspace"); s != "" {
		v := parseID(s)
		workspaceID = &v
	}

	statuses, err := h.statusService.List(userID, workspaceID)
	if err != nil {
		Error(c, 500, 50001, err.Error())
		return
	}
	Success(c, statuses)
}

// GET /task-statuses/:id
func (h *TaskStatusHandler) GetDetail(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	status, err := h.statusService.GetByID(userID, id)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, status)
}

// PATCH /task-statuses/:id
func (h *TaskStatusHandler) Update(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req service.TaskStatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	status, err := h.statusService.Update(userID, id, req)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, status)
}

// DELETE /task-statuses/:id
func (h *TaskStatusHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.statusService.Delete(userID, id); err != nil {
		FromError(c, err)
		return
	}
	NoContent(c)
}
