package handler

import (
	"github.com/Invcxze/TaskTracker/internal/middleware"
	"github.com/Invcxze/TaskTracker/internal/service"
	"github.com/gin-gonic/gin"
)

type TaskDetailHandler struct {
	detailService *service.TaskDetailService
}

func NewTaskDetailHandler(detailService *service.TaskDetailService) *TaskDetailHandler {
	return &TaskDetailHandler{detailService: detailService}
}

// Comments

// GET /tasks/:id/comments
func (h *TaskDetailHandler) ListComments(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	comments, err := h.detailService.ListComments(userID, taskID)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, comments)
}

// POST /tasks/:id/comments
func (h *TaskDetailHandler) CreateComment(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Content  string `json:"content" binding:"required"`
		IsPinned bool   `json:"is_pinned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	comment, err := h.detailService.CreateComment(userID, taskID, req.Content, req.IsPinned)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, comment)
}

// PATCH /tasks/:id/comments/:comment_id
func (h *TaskDetailHandler) UpdateComment(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	commentID := parseID(c.Param("comment_id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Content  *string `json:"content"`
		IsPinned *bool   `json:"is_pinned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	comment, err := h.detailService.UpdateComment(userID, taskID, commentID, req.Content, req.IsPinned)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, comment)
}

// DELETE /tasks/:id/comments/:comment_id
func (h *TaskDetailHandler) DeleteComment(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	commentID := parseID(c.Param("comment_id"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.detailService.DeleteComment(userID, taskID, commentID); err != nil {
		FromError(c, err)
		return
	}
	NoContent(c)
}

// Attachments

// GET /tasks/:id/attachments
func (h *TaskDetailHandler) ListAttachments(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	attachments, err := h.detailService.ListAttachments(userID, taskID)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, attachments)
}

// POST /tasks/:id/attachments  (multipart: file, optional file_name)
func (h *TaskDetailHandler) CreateAttachment(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, 40001, "file is required")
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		Error(c, 500, 50001, "cannot read upload")
		return
	}
	defer src.Close()

	attachment, err := h.detailService.CreateAttachment(
		userID, taskID, src,
		fileHeader.Filename, c.PostForm("file_name"), fileHeader.Size,
	)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, attachment)
}

// GET /tasks/:id/attachments/:attachment_id/download
func (h *TaskDetailHandler) DownloadAttachment(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	attachmentID := parseID(c.Param("attachment_id"))
	userID := middleware.GetCurrentUserID(c)

	attachment, err := h.detailService.GetAttachment(userID, taskID, attachmentID)
	if err != nil {
		FromError(c, err)
		return
	}
	c.FileAttachment(attachment.FilePath, attachment.FileName)
}

// DELETE /tasks/:id/attachments/:attachment_id
func (h *TaskDetailHandler) DeleteAttachment(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	attachmentID := parseID(c.Param("attachment_id"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.detailService.DeleteAttachment(userID, taskID, attachmentID); err != nil {
		FromError(c, err)
		return
	}
	NoContent(c)
}

// Checklist

// GET /tasks/:id/checklist
func (h *TaskDetailHandler) ListChecklist(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	items, err := h.detailService.ListChecklist(userID, taskID)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, items)
}

// POST /tasks/:id/checklist
func (h *TaskDetailHandler) CreateChecklistItem(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Text  string `json:"text" binding:"required,max=255"`
		Order uint   `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	item, err := h.detailService.CreateChecklistItem(userID, taskID, req.Text, req.Order)
	if err != nil {
		FromError(c, err)
		return
	}
	Created(c, item)
}

// PATCH /tasks/:id/checklist/:item_id
func (h *TaskDetailHandler) UpdateChecklistItem(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	itemID := parseID(c.Param("item_id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Text        *string `json:"text"`
		IsCompleted *bool   `json:"is_completed"`
		Order       *uint   `json:"order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "request validation failed: "+err.Error())
		return
	}

	item, err := h.detailService.UpdateChecklistItem(userID, taskID, itemID, req.Text, req.IsCompleted, req.Order)
	if err != nil {
		FromError(c, err)
		return
	}
	Success(c, item)
}

// DELETE /tasks/:id/checklist/:item_id
func (h *TaskDetailHandler) DeleteChecklistItem(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	itemID := parseID(c.Param("item_id"))
	userID := middleware.GetCurrentUserID(c)

	if err := h.detailService.DeleteChecklistItem(userID, taskID, itemID); err != nil {
		FromError(c, err)
		return
	}
	NoContent(c)
}

// Logs

// GET /tasks/:id/logs
func (h *TaskDetailHandler) ListLogs(c *gin.Context) {
	taskID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	logs, err := h.detailService.ListLogs(userID, taskID)
	if err != nil {
		FromError(c, err)
		return
	}

	list := make([]gin.H, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		item := gin.H{
			"id":        l.ID,
			"task_id":   l.TaskID,
			"action":    l.Action,
			"changes":   l.Changes,
			"timestamp": l.Timestamp,
		}
		if l.User != nil {
			item["user"] = l.User.Brief()
		}
		if related, err := h.detailService.ResolveRelated(l); err == nil && related != nil {
			item["related_type"] = l.RelatedType
			item["related"] = related
		}
		list = append(list, item)
	}
	Success(c, list)
}
