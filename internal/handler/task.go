package handler

import (
	"strconv"
	"time"

	"github.com/Invcxze/TaskTracker/internal/middleware"
	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/search"
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService *service.TaskService
	index       search.Index
}

func NewTaskHandler(taskService *service.TaskService, index search.Index) *TaskHandler {
	return &TaskHandler{taskService: taskService, index: index}
}

// POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req service.TaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	userID := middleware.GetCurrentUserID(c)
	task, err := h.taskService.Create(userID, req)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, task)
}

// GET /tasks
func (h *TaskHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var f service.TaskListFilters
	if s := c.Query("workspace"); s != "" {
		v := parseID(s)
		f.WorkspaceID = &v
	}
	if s := c.Query("status"); s != "" {
		v := parseID(s)
		f.StatusID = &v
	}
	if s := c.Query("task_type"); s != "" {
		v := parseID(s)
		f.TaskTypeID = &v
	}
	if s := c.Query("assignee"); s != "" {
		v := parseID(s)
		f.AssigneeID = &v
	}
	if s := c.Query("creator"); s != "" {
		v := parseID(s)
		f.CreatorID = &v
	}
	f.Priority = c.Query("priority")
	f.Page, f.PageSize = parsePage(c)

	tasks, err := h.taskService.List(userID, f)
	if err != nil {
		Error(c, 500, 50001, err.Error())
		return
	}
	Success(c, tasks)
}

// GET /tasks/:id
func (h *TaskHandler) GetDetail(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	task, err := h.taskService.GetByID(userID, id)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, task)
}

// PATCH /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req service.TaskUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	task, err := h.taskService.Update(userID, id, req)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, task)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.taskService.Delete(userID, id); err != nil {
		FromError(c, err)
		return
	}
	NoContent(c)
}

// POST /tasks/:id/add_watcher
func (h *TaskHandler) AddWatcher(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	if err := h.taskService.AddWatcher(userID, id, req.UserID); err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"task_id": id, "user_id": req.UserID, "watching": true})
}

// POST /tasks/:id/remove_watcher
func (h *TaskHandler) RemoveWatcher(c *gin.Context) {
	id := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	if err := h.taskService.RemoveWatcher(userID, id, req.UserID); err != nil {
		FromError(c, err)
		return
	}
	Success(c, gin.H{"task_id": id, "user_id": req.UserID, "watching": false})
}

// GET /tasks/search
func (h *TaskHandler) Search(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	query := c.Query("q")

	var filters search.TaskFilters
	if s := c.Query("workspace"); s != "" {
		v := parseID(s)
		filters.WorkspaceID = &v
	}
	if s := c.Query("status"); s != "" {
		v := parseID(s)
		filters.StatusID = &v
	}
	if s := c.Query("assignee"); s != "" {
		v := parseID(s)
		filters.AssigneeID = &v
	}
	if s := c.Query("creator"); s != "" {
		v := parseID(s)
		filters.CreatorID = &v
	}
	if s := c.Query("is_closed"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			BadRequest(c, 40001, "is_closed must be a boolean")
			return
		}
		filters.IsClosed = &v
	}
	for _, p := range c.QueryArray("priority") {
		if !model.ValidPriority(p) {
			BadRequest(c, 40001, "invalid priority: "+p)
			return
		}
		filters.Priorities = append(filters.Priorities, p)
	}
	for _, s := range c.QueryArray("labels") {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			BadRequest(c, 40001, "labels must be numeric ids")
			return
		}
		filters.LabelIDs = append(filters.LabelIDs, uint(id))
	}
	if s := c.Query("due_date_before"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			BadRequest(c, 40001, "due_date_before must be RFC 3339")
			return
		}
		filters.DueBefore = &t
	}
	if s := c.Query("due_date_after"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			BadRequest(c, 40001, "due_date_after must be RFC 3339")
			return
		}
		filters.DueAfter = &t
	}

	ids, err := h.index.SearchTasks(c.Request.Context(), query, filters)
	if err != nil {
		Error(c, 500, 50002, "search is unavailable")
		return
	}

	// Primary rows come back in index order; the scope drops anything the
	// caller cannot see.
	tasks, err := h.taskService.FetchByIDs(userID, ids)
	if err != nil {
		Error(c, 500, 50001, err.Error())
		return
	}
	Success(c, tasks)
}
