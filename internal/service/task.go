package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/Invcxze/TaskTracker/internal/access"
	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/search"
	"gorm.io/gorm"
)

type TaskService struct {
	db        *gorm.DB
	evaluator *access.Evaluator
	projector *search.Projector
}

func NewTaskService(db *gorm.DB, evaluator *access.Evaluator, projector *search.Projector) *TaskService {
	return &TaskService{db: db, evaluator: evaluator, projector: projector}
}

// TaskInput carries the writable task fields.
type TaskInput struct {
	Title         string     `json:"title" binding:"required,max=255"`
	Description   string     `json:"description"`
	DueDate       *time.Time `json:"due_date"`
	Priority      string     `json:"priority"`
	EstimatedTime *uint      `json:"estimated_time"`
	ActualTime    *uint      `json:"actual_time"`
	WorkspaceID   uint       `json:"workspace_id" binding:"required"`
	StatusID      *uint      `json:"status_id"`
	TaskTypeID    *uint      `json:"task_type_id"`
	AssigneeID    *uint      `json:"assignee_id"`
	ParentTaskID  *uint      `json:"parent_task_id"`
	LabelIDs      []uint     `json:"label_ids"`
	WatcherIDs    []uint     `json:"watcher_ids"`
}

// TaskListFilters are the equality filters of the task list endpoint, plus
// its page window. PageSize zero means no pagination.
type TaskListFilters struct {
	WorkspaceID *uint
	StatusID    *uint
	TaskTypeID  *uint
	AssigneeID  *uint
	CreatorID   *uint
	Priority    string
	Page        int
	PageSize    int
}

// Create admits against the target workspace before anything is persisted:
// membership somewhere else does not help.
func (s *TaskService) Create(userID uint, in TaskInput) (*model.Task, error) {
	if !s.evaluator.HasWorkspaceAccess(userID, in.WorkspaceID) {
		return nil, fmt.Errorf("40301:you do not have access to this workspace")
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(in.Priority) {
		return nil, fmt.Errorf("40001:invalid priority: %s", in.Priority)
	}
	if err := s.validateTaskRefs(in.WorkspaceID, in.StatusID, in.ParentTaskID, in.LabelIDs); err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:         in.Title,
		Description:   in.Description,
		DueDate:       in.DueDate,
		Priority:      in.Priority,
		EstimatedTime: in.EstimatedTime,
		ActualTime:    in.ActualTime,
		WorkspaceID:   in.WorkspaceID,
		StatusID:      in.StatusID,
		TaskTypeID:    in.TaskTypeID,
		CreatorID:     &userID,
		AssigneeID:    in.AssigneeID,
		ParentTaskID:  in.ParentTaskID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		if len(in.LabelIDs) > 0 {
			var labels []model.Label
			if err := tx.Where("id IN ?", in.LabelIDs).Find(&labels).Error; err != nil {
				return err
			}
			if err := tx.Model(task).Association("Labels").Replace(labels); err != nil {
				return err
			}
		}
		if len(in.WatcherIDs) > 0 {
			var watchers []model.User
			if err := tx.Where("id IN ?", in.WatcherIDs).Find(&watchers).Error; err != nil {
				return err
			}
			if err := tx.Model(task).Association("Watchers").Replace(watchers); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.writeLog(task.ID, &userID, model.LogActionCreate, model.JSONMap{"title": task.Title}, "", nil)
	s.projector.Notify(search.Change{Kind: search.ChangeTask, ID: task.ID})
	return s.GetByID(userID, task.ID)
}

// List applies the membership scope first, then the equality filters.
func (s *TaskService) List(userID uint, f TaskListFilters) ([]model.Task, error) {
	query := access.ScopeTasks(s.db, userID).
		Preload("Status").Preload("TaskType").Preload("Creator").Preload("Assignee").
		Preload("Labels").Preload("Watchers")
	if f.WorkspaceID != nil {
		query = query.Where("tasks.workspace_id = ?", *f.WorkspaceID)
	}
	if f.StatusID != nil {
		query = query.Where("tasks.status_id = ?", *f.StatusID)
	}
	if f.TaskTypeID != nil {
		query = query.Where("tasks.task_type_id = ?", *f.TaskTypeID)
	}
	if f.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *f.AssigneeID)
	}
	if f.CreatorID != nil {
		query = query.Where("tasks.creator_id = ?", *f.CreatorID)
	}
	if f.Priority != "" {
		query = query.Where("tasks.priority = ?", f.Priority)
	}
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * f.PageSize).Limit(f.PageSize)
	}

	var tasks []model.Task
	if err := query.Order("tasks.id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetByID reads through the scope: a task outside the user's workspaces is
// not-found, never forbidden.
func (s *TaskService) GetByID(userID, id uint) (*model.Task, error) {
	var task model.Task
	err := access.ScopeTasks(s.db, userID).
		Preload("Workspace").Preload("Status").Preload("TaskType").
		Preload("Creator").Preload("Assignee").Preload("ParentTask").
		Preload("Labels").Preload("Watchers").
		Where("tasks.id = ?", id).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40402:task not found")
		}
		return nil, err
	}
	return &task, nil
}

// TaskUpdate carries optional task mutations. The workspace binding is
// immutable and deliberately absent.
type TaskUpdate struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	DueDate       *time.Time `json:"due_date"`
	Priority      *string    `json:"priority"`
	EstimatedTime *uint      `json:"estimated_time"`
	ActualTime    *uint      `json:"actual_time"`
	StatusID      *uint      `json:"status_id"`
	TaskTypeID    *uint      `json:"task_type_id"`
	AssigneeID    *uint      `json:"assignee_id"`
	ParentTaskID  *uint      `json:"parent_task_id"`
	LabelIDs      *[]uint    `json:"label_ids"`
}

func (s *TaskService) Update(userID, id uint, upd TaskUpdate) (*model.Task, error) {
	task, err := s.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	changes := model.JSONMap{}
	if upd.Title != nil {
		updates["title"] = *upd.Title
		changes["title"] = *upd.Title
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
		changes["description"] = *upd.Description
	}
	if upd.DueDate != nil {
		updates["due_date"] = *upd.DueDate
		changes["due_date"] = upd.DueDate.Format(time.RFC3339)
	}
	if upd.Priority != nil {
		if !model.ValidPriority(*upd.Priority) {
			return nil, fmt.Errorf("40001:invalid priority: %s", *upd.Priority)
		}
		updates["priority"] = *upd.Priority
		changes["priority"] = *upd.Priority
	}
	if upd.EstimatedTime != nil {
		updates["estimated_time"] = *upd.EstimatedTime
		changes["estimated_time"] = *upd.EstimatedTime
	}
	if upd.ActualTime != nil {
		updates["actual_time"] = *upd.ActualTime
		changes["actual_time"] = *upd.ActualTime
	}
	if upd.StatusID != nil || upd.ParentTaskID != nil {
		if err := s.validateTaskRefs(task.WorkspaceID, upd.StatusID, upd.ParentTaskID, nil); err != nil {
			return nil, err
		}
	}
	if upd.StatusID != nil {
		updates["status_id"] = *upd.StatusID
		changes["status_id"] = *upd.StatusID
	}
	if upd.TaskTypeID != nil {
		updates["task_type_id"] = *upd.TaskTypeID
		changes["task_type_id"] = *upd.TaskTypeID
	}
	if upd.AssigneeID != nil {
		updates["assignee_id"] = *upd.AssigneeID
		changes["assignee_id"] = *upd.AssigneeID
	}
	if upd.ParentTaskID != nil {
		updates["parent_task_id"] = *upd.ParentTaskID
		changes["parent_task_id"] = *upd.ParentTaskID
	}

	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if upd.LabelIDs != nil {
		if err := s.validateTaskRefs(task.WorkspaceID, nil, nil, *upd.LabelIDs); err != nil {
			return nil, err
		}
		var labels []model.Label
		if err := s.db.Where("id IN ?", *upd.LabelIDs).Find(&labels).Error; err != nil {
			return nil, err
		}
		if err := s.db.Model(task).Association("Labels").Replace(labels); err != nil {
			return nil, err
		}
		changes["label_ids"] = *upd.LabelIDs
	}

	if len(changes) > 0 {
		s.writeLog(task.ID, &userID, model.LogActionUpdate, changes, "", nil)
		s.projector.Notify(search.Change{Kind: search.ChangeTask, ID: task.ID})
	}
	return s.GetByID(userID, task.ID)
}

func (s *TaskService) Delete(userID, id uint) error {
	task, err := s.GetByID(userID, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&model.Task{}, task.ID).Error; err != nil {
		return err
	}
	s.projector.Notify(search.Change{Kind: search.ChangeTaskDeleted, ID: task.ID})
	return nil
}

// AddWatcher is idempotent set insertion: watching twice leaves one row.
func (s *TaskService) AddWatcher(userID, taskID, watcherID uint) error {
	task, err := s.GetByID(userID, taskID)
	if err != nil {
		return err
	}
	var watcher model.User
	if err := s.db.First(&watcher, watcherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("40401:user not found")
		}
		return err
	}

	var count int64
	s.db.Table("task_watchers").
		Where("task_id = ? AND user_id = ?", task.ID, watcher.ID).
		Count(&count)
	if count == 0 {
		if err := s.db.Model(task).Association("Watchers").Append(&watcher); err != nil {
			return err
		}
	}
	s.projector.Notify(search.Change{Kind: search.ChangeTask, ID: task.ID})
	return nil
}

// RemoveWatcher of a non-watcher is a no-op, not an error.
func (s *TaskService) RemoveWatcher(userID, taskID, watcherID uint) error {
	task, err := s.GetByID(userID, taskID)
	if err != nil {
		return err
	}
	var watcher model.User
	if err := s.db.First(&watcher, watcherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("40401:user not found")
		}
		return err
	}
	if err := s.db.Model(task).Association("Watchers").Delete(&watcher); err != nil {
		return err
	}
	s.projector.Notify(search.Change{Kind: search.ChangeTask, ID: task.ID})
	return nil
}

// FetchByIDs loads tasks by id preserving the given order; ids the scope
// filters out or that no longer exist are silently skipped.
func (s *TaskService) FetchByIDs(userID uint, ids []uint) ([]model.Task, error) {
	if len(ids) == 0 {
		return []model.Task{}, nil
	}
	var tasks []model.Task
	err := access.ScopeTasks(s.db, userID).
		Preload("Status").Preload("Labels").
		Where("tasks.id IN ?", ids).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	ordered := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

// validateTaskRefs rejects references that would cross the workspace
// boundary. Parent-task cycles are not checked; the hierarchy is caller
// discipline.
func (s *TaskService) validateTaskRefs(workspaceID uint, statusID, parentID *uint, labelIDs []uint) error {
	if statusID != nil {
		var status model.TaskStatus
		if err := s.db.First(&status, *statusID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("40401:status not found")
			}
			return err
		}
		if status.WorkspaceID != workspaceID {
			return fmt.Errorf("40001:status belongs to a different workspace")
		}
	}
	if parentID != nil {
		var parent model.Task
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("40401:parent task not found")
			}
			return err
		}
		if parent.WorkspaceID != workspaceID {
			return fmt.Errorf("40001:parent task belongs to a different workspace")
		}
	}
	if len(labelIDs) > 0 {
		var count int64
		s.db.Model(&model.Label{}).
			Where("id IN ? AND workspace_id = ?", labelIDs, workspaceID).
			Count(&count)
		if count != int64(len(labelIDs)) {
			return fmt.Errorf("40001:labels must belong to the task's workspace")
		}
	}
	return nil
}

// writeLog appends an audit record. Best-effort: a failed log write never
// fails the mutation it describes.
func (s *TaskService) writeLog(taskID uint, userID *uint, action string, changes model.JSONMap, relatedType model.RelatedKind, relatedID *uint) {
	entry := model.TaskLog{
		TaskID:      taskID,
		UserID:      userID,
		Action:      action,
		Changes:     changes,
		RelatedType: relatedType,
		RelatedID:   relatedID,
	}
	s.db.Create(&entry)
}
