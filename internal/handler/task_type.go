package handler

import (
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-gonic/gin"
)

type TaskTypeHandler struct {
	typeService *service.TaskTypeService
}

func NewTaskTypeHandler(typeService *service.TaskTypeService) *TaskTypeHandler {
	return &TaskTypeHandler{typeService: typeService}
}

// POST /task-types
func (h *TaskTypeHandler) Create(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required,max=50"`
		Icon  string `json:"icon" binding:"max=30"`
		Color string `json:"color" binding:"omitempty,len=7"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	taskType, err := h.typeService.Create(req.Name, req.Icon, req.Color)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, taskType)
}

// GET /task-types
func (h *TaskTypeHandler) List(c *gin.Context) {
	types, err := h.typeService.List()
	if err != nil {
		Error(c, 500, 50001, err.Error())
		return
	}
	Success(c, types)
}

// GET /task-types/:id
func (h *TaskTypeHandler) GetDetail(c *gin.Context) {
	id := parseID(c.Param("id"))
	taskType, err := h.typeService.GetByID(id)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, taskType)
}

// PATCH /task-types/:id
func (h *TaskTypeHandler) Update(c *gin.Context) {
	id := parseID(c.Param("id"))

	var req struct {
		Name  *string `json:"name"`
		Icon  *string `json:"icon"`
		Color *string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	taskType, err := h.typeService.Update(id, req.Name, req.Icon, req.Color)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, taskType)
}

// DELETE /task-types/:id
func (h *TaskTypeHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))
	if err := h.typeService.Delete(id); err != nil {
		FromError(c, err)
		return
	}
	NoContent(c)
}
