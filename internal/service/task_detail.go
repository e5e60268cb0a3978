package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Invcxze/TaskTracker/internal/access"
	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/search"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskDetailService covers the resources nested under a task: comments,
// attachments, checklist items and the audit log. Every operation first
// resolves the parent task through the caller's workspace scope.
type TaskDetailService struct {
	db        *gorm.DB
	projector *search.Projector
	uploadDir string
}

func NewTaskDetailService(db *gorm.DB, projector *search.Projector, uploadDir string) *TaskDetailService {
	return &TaskDetailService{db: db, projector: projector, uploadDir: uploadDir}
}

func (s *TaskDetailService) visibleTask(userID, taskID uint) (*model.Task, error) {
	var task model.Task
	err := access.ScopeTasks(s.db, userID).Where("tasks.id = ?", taskID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40402:task not found")
		}
		return nil, err
	}
	return &task, nil
}

// Comments

func (s *TaskDetailService) ListComments(userID, taskID uint) ([]model.TaskComment, error) {
	if _, err := s.visibleTask(userID, taskID); err != nil {
		return nil, err
	}
	var comments []model.TaskComment
	err := s.db.Where("task_id = ?", taskID).
		Preload("Author").
		Order("is_pinned DESC, id").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *TaskDetailService) CreateComment(userID, taskID uint, content string, isPinned bool) (*model.TaskComment, error) {
	task, err := s.visibleTask(userID, taskID)
	if err != nil {
		return nil, err
	}
	comment := &model.TaskComment{
		TaskID:   task.ID,
		AuthorID: &userID,
		Content:  content,
		IsPinned: isPinned,
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, err
	}
	s.writeLog(task.ID, userID, model.LogActionComment, nil, model.RelatedComment, comment.ID)
	s.projector.Notify(search.Change{Kind: search.ChangeComment, ID: comment.ID})
	return comment, nil
}

func (s *TaskDetailService) GetComment(userID, taskID, commentID uint) (*model.TaskComment, error) {
	if _, err := s.visibleTask(userID, taskID); err != nil {
		return nil, err
	}
	var comment model.TaskComment
	err := s.db.Where("task_id = ?", taskID).Preload("Author").First(&comment, commentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:comment not found")
		}
		return nil, err
	}
	return &comment, nil
}

func (s *TaskDetailService) UpdateComment(userID, taskID, commentID uint, content *string, isPinned *bool) (*model.TaskComment, error) {
	comment, err := s.GetComment(userID, taskID, commentID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if content != nil {
		updates["content"] = *content
	}
	if isPinned != nil {
		updates["is_pinned"] = *isPinned
	}
	if len(updates) > 0 {
		if err := s.db.Model(comment).Updates(updates).Error; err != nil {
			return nil, err
		}
		s.projector.Notify(search.Change{Kind: search.ChangeComment, ID: comment.ID})
	}
	return comment, nil
}

func (s *TaskDetailService) DeleteComment(userID, taskID, commentID uint) error {
	comment, err := s.GetComment(userID, taskID, commentID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&model.TaskComment{}, comment.ID).Error; err != nil {
		return err
	}
	// The comment row is gone, so the fan-out has to start from the task.
	s.projector.Notify(search.Change{Kind: search.ChangeTask, ID: taskID})
	return nil
}

// Attachments

func (s *TaskDetailService) ListAttachments(userID, taskID uint) ([]model.TaskAttachment, error) {
	if _, err := s.visibleTask(userID, taskID); err != nil {
		return nil, err
	}
	var attachments []model.TaskAttachment
	err := s.db.Where("task_id = ?", taskID).
		Preload("UploadedBy").
		Order("id").
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

// CreateAttachment streams the upload to disk under a generated name, so two
// files with the same original name never collide. fileName overrides the
// display name; size falls back to the byte count actually written.
func (s *TaskDetailService) CreateAttachment(userID, taskID uint, src io.Reader, originalName, fileName string, size int64) (*model.TaskAttachment, error) {
	task, err := s.visibleTask(userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, err
	}

	storedName := uuid.NewString() + filepath.Ext(originalName)
	storedPath := filepath.Join(s.uploadDir, storedName)
	dst, err := os.Create(storedPath)
	if err != nil {
		return nil, err
	}
	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(storedPath)
		return nil, err
	}

	if fileName == "" {
		fileName = originalName
	}
	if size <= 0 {
		size = written
	}
	attachment := &model.TaskAttachment{
		TaskID:       task.ID,
		FilePath:     storedPath,
		FileName:     fileName,
		FileSize:     uint(size),
		UploadedByID: &userID,
	}
	if err := s.db.Create(attachment).Error; err != nil {
		os.Remove(storedPath)
		return nil, err
	}
	s.writeLog(task.ID, userID, model.LogActionAttachment, nil, model.RelatedAttachment, attachment.ID)
	return attachment, nil
}

func (s *TaskDetailService) GetAttachment(userID, taskID, attachmentID uint) (*model.TaskAttachment, error) {
	if _, err := s.visibleTask(userID, taskID); err != nil {
		return nil, err
	}
	var attachment model.TaskAttachment
	err := s.db.Where("task_id = ?", taskID).Preload("UploadedBy").First(&attachment, attachmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:attachment not found")
		}
		return nil, err
	}
	return &attachment, nil
}

func (s *TaskDetailService) DeleteAttachment(userID, taskID, attachmentID uint) error {
	attachment, err := s.GetAttachment(userID, taskID, attachmentID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&model.TaskAttachment{}, attachment.ID).Error; err != nil {
		return err
	}
	// Best effort; an orphan file on disk is harmless.
	os.Remove(attachment.FilePath)
	return nil
}

// Checklist

func (s *TaskDetailService) ListChecklist(userID, taskID uint) ([]model.TaskChecklistItem, error) {
	if _, err := s.visibleTask(userID, taskID); err != nil {
		return nil, err
	}
	var items []model.TaskChecklistItem
	err := s.db.Where("task_id = ?", taskID).
		Order("order_num, id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *TaskDetailService) CreateChecklistItem(userID, taskID uint, text string, order uint) (*model.TaskChecklistItem, error) {
	task, err := s.visibleTask(userID, taskID)
	if err != nil {
		return nil, err
	}
	item := &model.TaskChecklistItem{
		TaskID: task.ID,
		Text:   text,
		Order:  order,
	}
	if err := s.db.Create(item).Error; err != nil {
		return nil, err
	}
	s.projector.Notify(search.Change{Kind: search.ChangeChecklistItem, ID: item.ID})
	return item, nil
}

func (s *TaskDetailService) GetChecklistItem(userID, taskID, itemID uint) (*model.TaskChecklistItem, error) {
	if _, err := s.visibleTask(userID, taskID); err != nil {
		return nil, err
	}
	var item model.TaskChecklistItem
	err := s.db.Where("task_id = ?", taskID).First(&item, itemID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:checklist item not found")
		}
		return nil, err
	}
	return &item, nil
}

func (s *TaskDetailService) UpdateChecklistItem(userID, taskID, itemID uint, text *string, isCompleted *bool, order *uint) (*model.TaskChecklistItem, error) {
	item, err := s.GetChecklistItem(userID, taskID, itemID)
	if err != nil {
		return nil, err
	}
	if text != nil {
		item.Text = *text
	}
	if isCompleted != nil {
		item.IsCompleted = *isCompleted
	}
	if order != nil {
		item.Order = *order
	}
	item.StampCompletion(time.Now())
	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	s.projector.Notify(search.Change{Kind: search.ChangeChecklistItem, ID: item.ID})
	return item, nil
}

func (s *TaskDetailService) DeleteChecklistItem(userID, taskID, itemID uint) error {
	item, err := s.GetChecklistItem(userID, taskID, itemID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&model.TaskChecklistItem{}, item.ID).Error; err != nil {
		return err
	}
	s.projector.Notify(search.Change{Kind: search.ChangeTask, ID: taskID})
	return nil
}

// Logs

func (s *TaskDetailService) ListLogs(userID, taskID uint) ([]model.TaskLog, error) {
	if _, err := s.visibleTask(userID, taskID); err != nil {
		return nil, err
	}
	var logs []model.TaskLog
	err := s.db.Where("task_id = ?", taskID).
		Preload("User").
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// ResolveRelated loads the entity a log row points at, when it still exists.
func (s *TaskDetailService) ResolveRelated(l *model.TaskLog) (interface{}, error) {
	return l.ResolveRelated(s.db)
}

func (s *TaskDetailService) writeLog(taskID, userID uint, action string, changes model.JSONMap, kind model.RelatedKind, relatedID uint) {
	log := model.TaskLog{
		TaskID:      taskID,
		UserID:      &userID,
		Action:      action,
		Changes:     changes,
		RelatedType: kind,
		RelatedID:   &relatedID,
	}
	// Audit writes never fail the caller's operation.
	s.db.Create(&log)
}
