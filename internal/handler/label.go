package handler

import (
	"github.com/Invcxze/TaskTracker/internal/middleware"
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-gonic/gin"
)

type LabelHandler struct {
	labelService *service.LabelService
}

func NewLabelHandler(labelService *service.LabelService) *LabelHandler {
	return &LabelHandler{labelService: labelService}
}

// POST /labels
func (h *LabelHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,max=50"`
		WorkspaceID uint   `json:"workspace_id" binding:"required"`
		Color       string `json:"color" binding:"omitempty,len=7"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	userID := middleware.GetCurrentUserID(c)
	label, err := h.labelService.Create(userID, req.WorkspaceID, req.Name, req.Color)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, label)
}

// GET /labels
func (h *LabelHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var workspaceID *uint
	if s := c.Query("workspace"); s != "" {
		v := parseID(s)
		workspaceID = &v
	}

	labels, err := h.labelService.List(userID, workspaceID)
	if err != nil {
		Error(c, 500, 50001, err.Error())
		return
	}
	Success(c, labels)
}

// GET /labels/:id
func (h *LabelHandler) GetDetail(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	label, err := h.labelService.GetByID(userID, id)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, label)
}

// PATCH /labels/:id
func (h *LabelHandler) Update(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	label, err := h.labelService.Update(userID, id, req.Name, req.Color)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, label)
}

// DELETE /labels/:id
func (h *LabelHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.labelService.Delete(userID, id); err != nil {
		FromError(c, err)
		return
	}
	NoContent(c)
}
