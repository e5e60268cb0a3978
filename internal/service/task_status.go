package service

import (
	"errors"
	"fmt"

	"github.com/Invcxze/TaskTracker/internal/access"
	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/search"
	"gorm.io/gorm"
)

type TaskStatusService struct {
	db        *gorm.DB
	evaluator *access.Evaluator
	projector *search.Projector
}

func NewTaskStatusService(db *gorm.DB, evaluator *access.Evaluator, projector *search.Projector) *TaskStatusService {
	return &TaskStatusService{db: db, evaluator: evaluator, projector: projector}
}

type TaskStatusInput struct {
	Name        string `json:"name" binding:"required,max=50"`
	WorkspaceID uint   `json:"workspace_id" binding:"required"`
	Order       uint   `json:"order"`
	IsDefault   bool   `json:"is_default"`
	IsClosed    bool   `json:"is_closed"`
}

func (s *TaskStatusService) Create(userID uint, in TaskStatusInput) (*model.TaskStatus, error) {
	if !s.evaluator.HasWorkspaceAccess(userID, in.WorkspaceID) {
		return nil, fmt.Errorf("40301:you do not have access to this workspace")
	}

	var count int64
	s.db.Model(&model.TaskStatus{}).
		Where("name = ? AND workspace_id = ?", in.Name, in.WorkspaceID).
		Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("40905:status with this name already exists in the workspace")
	}

	status := &model.TaskStatus{
		Name:        in.Name,
		WorkspaceID: in.WorkspaceID,
		Order:       in.Order,
		IsDefault:   in.IsDefault,
		IsClosed:    in.IsClosed,
	}
	if err := s.db.Create(status).Error; err != nil {
		return nil, err
	}
	return status, nil
}

func (s *TaskStatusService) List(userID uint, workspaceID *uint) ([]model.TaskStatus, error) {
	query := access.ScopeStatuses(s.db, userID)
	if workspaceID != nil {
		query = query.Where("task_statuses.workspace_id = ?", *workspaceID)
	}
	var statuses []model.TaskStatus
	if err := query.Order("task_statuses.order_num, task_statuses.id").Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (s *TaskStatusService) GetByID(userID, id uint) (*model.TaskStatus, error) {
	var status model.TaskStatus
	err := access.ScopeStatuses(s.db, userID).Where("task_statuses.id = ?", id).First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:status not found")
		}
		return nil, err
	}
	return &status, nil
}

type TaskStatusUpdate struct {
	Name      *string `json:"name"`
	Order     *uint   `json:"order"`
	IsDefault *bool   `json:"is_default"`
	IsClosed  *bool   `json:"is_closed"`
}

func (s *TaskStatusService) Update(userID, id uint, upd TaskStatusUpdate) (*model.TaskStatus, error) {
	status, err := s.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if upd.Name != nil {
		var count int64
		s.db.Model(&model.TaskStatus{}).
			Where("name = ? AND workspace_id = ? AND id != ?", *upd.Name, status.WorkspaceID, status.ID).
			Count(&count)
		if count > 0 {
			return nil, fmt.Errorf("40905:status with this name already exists in the workspace")
		}
		updates["name"] = *upd.Name
	}
	if upd.Order != nil {
		updates["order_num"] = *upd.Order
	}
	if upd.IsDefault != nil {
		updates["is_default"] = *upd.IsDefault
	}
	if upd.IsClosed != nil {
		updates["is_closed"] = *upd.IsClosed
	}
	if len(updates) > 0 {
		if err := s.db.Model(status).Updates(updates).Error; err != nil {
			return nil, err
		}
		// Tasks embed the status name and closed flag; fan out.
		s.projector.Notify(search.Change{Kind: search.ChangeStatus, ID: status.ID})
	}
	return status, nil
}

func (s *TaskStatusService) Delete(userID, id uint) error {
	status, err := s.GetByID(userID, id)
	if err != nil {
		return err
	}

	var taskIDs []uint
	s.db.Model(&model.Task{}).Where("status_id = ?", status.ID).Pluck("id", &taskIDs)

	if err := s.db.Delete(&model.TaskStatus{}, status.ID).Error; err != nil {
		return err
	}
	for _, taskID := range taskIDs {
		s.projector.Notify(search.Change{Kind: search.ChangeTask, ID: taskID})
	}
	return nil
}
