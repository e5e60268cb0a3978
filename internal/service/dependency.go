package service

import (
	"errors"
	"fmt"

	"github.com/Invcxze/TaskTracker/internal/access"
	"github.com/Invcxze/TaskTracker/internal/model"
	"gorm.io/gorm"
)

type DependencyService struct {
	db *gorm.DB
}

func NewDependencyService(db *gorm.DB) *DependencyService {
	return &DependencyService{db: db}
}

// Create links two tasks. Both endpoints must be visible to the caller and
// must share a workspace; a cross-workspace edge is rejected before anything
// is written, never repaired afterwards.
func (s *DependencyService) Create(userID, fromID, toID uint, depType string) (*model.TaskDependency, error) {
	if !model.ValidDependencyType(depType) {
		return nil, fmt.Errorf("40001:invalid dependency type: %s", depType)
	}
	if fromID == toID {
		return nil, fmt.Errorf("40001:a task cannot depend on itself")
	}

	from, err := s.visibleTask(userID, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.visibleTask(userID, toID)
	if err != nil {
		return nil, err
	}
	if from.WorkspaceID != to.WorkspaceID {
		return nil, fmt.Errorf("40001:tasks must be in the same workspace")
	}

	var count int64
	s.db.Model(&model.TaskDependency{}).
		Where("from_task_id = ? AND to_task_id = ? AND dependency_type = ?", fromID, toID, depType).
		Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("40903:dependency already exists")
	}

	dep := &model.TaskDependency{FromTaskID: fromID, ToTaskID: toID, DependencyType: depType}
	if err := s.db.Create(dep).Error; err != nil {
		return nil, err
	}
	dep.FromTask = from
	dep.ToTask = to
	return dep, nil
}

func (s *DependencyService) List(userID uint) ([]model.TaskDependency, error) {
	var deps []model.TaskDependency
	err := access.ScopeDependencies(s.db, userID).
		Preload("FromTask").Preload("ToTask").
		Order("task_dependencies.id").
		Find(&deps).Error
	if err != nil {
		return nil, err
	}
	return deps, nil
}

func (s *DependencyService) GetByID(userID, id uint) (*model.TaskDependency, error) {
	var dep model.TaskDependency
	err := access.ScopeDependencies(s.db, userID).
		Preload("FromTask").Preload("ToTask").
		Where("task_dependencies.id = ?", id).
		First(&dep).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:dependency not found")
		}
		return nil, err
	}
	return &dep, nil
}

func (s *DependencyService) Delete(userID, id uint) error {
	dep, err := s.GetByID(userID, id)
	if err != nil {
		return err
	}
	return s.db.Delete(&model.TaskDependency{}, dep.ID).Error
}

func (s *DependencyService) visibleTask(userID, taskID uint) (*model.Task, error) {
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
