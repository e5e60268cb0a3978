package service

import (
	"errors"
	"fmt"

	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/search"
	"gorm.io/gorm"
)

// TaskTypeService manages the global task type catalog. Types are not
// workspace-scoped, so any authenticated user may read and write them.
type TaskTypeService struct {
	db        *gorm.DB
	projector *search.Projector
}

func NewTaskTypeService(db *gorm.DB, projector *search.Projector) *TaskTypeService {
	return &TaskTypeService{db: db, projector: projector}
}

func (s *TaskTypeService) Create(name, icon, color string) (*model.TaskType, error) {
	var count int64
	s.db.Model(&model.TaskType{}).Where("name = ?", name).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("40906:task type with this name already exists")
	}
	t := &model.TaskType{Name: name, Icon: icon}
	if color != "" {
		t.Color = color
	}
	if err := s.db.Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskTypeService) List() ([]model.TaskType, error) {
	var types []model.TaskType
	if err := s.db.Order("id").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (s *TaskTypeService) GetByID(id uint) (*model.TaskType, error) {
	var t model.TaskType
	if err := s.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:task type not found")
		}
		return nil, err
	}
	return &t, nil
}

func (s *TaskTypeService) Update(id uint, name, icon, color *string) (*model.TaskType, error) {
	t, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		var count int64
		s.db.Model(&model.TaskType{}).Where("name = ? AND id != ?", *name, t.ID).Count(&count)
		if count > 0 {
			return nil, fmt.Errorf("40906:task type with this name already exists")
		}
		updates["name"] = *name
	}
	if icon != nil {
		updates["icon"] = *icon
	}
	if color != nil {
		updates["color"] = *color
	}
	if len(updates) > 0 {
		if err := s.db.Model(t).Updates(updates).Error; err != nil {
			return nil, err
		}
		s.projector.Notify(search.Change{Kind: search.ChangeTaskType, ID: t.ID})
	}
	return t, nil
}

func (s *TaskTypeService) Delete(id uint) error {
	t, err := s.GetByID(id)
	if err != nil {
		return err
	}

	var taskIDs []uint
	s.db.Model(&model.Task{}).Where("task_type_id = ?", t.ID).Pluck("id", &taskIDs)

	if err := s.db.Delete(&model.TaskType{}, t.ID).Error; err != nil {
		return err
	}
	for _, taskID := range taskIDs {
		s.projector.Notify(search.Change{Kind: search.ChangeTask, ID: taskID})
	}
	return nil
}
