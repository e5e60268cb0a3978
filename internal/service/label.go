package service

import (
	"errors"
	"fmt"

	"github.com/Invcxze/TaskTracker/internal/access"
	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/search"
	"gorm.io/gorm"
)

type LabelService struct {
	db        *gorm.DB
	evaluator *access.Evaluator
	projector *search.Projector
}

func NewLabelService(db *gorm.DB, evaluator *access.Evaluator, projector *search.Projector) *LabelService {
	return &LabelService{db: db, evaluator: evaluator, projector: projector}
}

// Create requires access to the target workspace before the row exists.
func (s *LabelService) Create(userID, workspaceID uint, name, color string) (*model.Label, error) {
	if !s.evaluator.HasWorkspaceAccess(userID, workspaceID) {
		return nil, fmt.Errorf("40301:you do not have access to this workspace")
	}

	var count int64
	s.db.Model(&model.Label{}).Where("name = ? AND workspace_id = ?", name, workspaceID).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("40904:label with this name already exists in the workspace")
	}

	label := &model.Label{Name: name, WorkspaceID: workspaceID}
	if color != "" {
		label.Color = color
	}
	if err := s.db.Create(label).Error; err != nil {
		return nil, err
	}
	return label, nil
}

// List is scoped to the caller's workspaces, optionally narrowed to one.
func (s *LabelService) List(userID uint, workspaceID *uint) ([]model.Label, error) {
	query := access.ScopeLabels(s.db, userID)
	if workspaceID != nil {
		query = query.Where("labels.workspace_id = ?", *workspaceID)
	}
	var labels []model.Label
	if err := query.Order("labels.id").Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

func (s *LabelService) GetByID(userID, id uint) (*model.Label, error) {
	var label model.Label
	err := access.ScopeLabels(s.db, userID).Where("labels.id = ?", id).First(&label).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:label not found")
		}
		return nil, err
	}
	return &label, nil
}

// Update re-checks access against the label's current workspace, not the one
// the caller happens to name.
func (s *LabelService) Update(userID, id uint, name, color *string) (*model.Label, error) {
	label, err := s.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if !s.evaluator.HasWorkspaceAccess(userID, label.WorkspaceID) {
		return nil, fmt.Errorf("40301:you do not have access to this workspace")
	}

	updates := map[string]interface{}{}
	if name != nil {
		var count int64
		s.db.Model(&model.Label{}).
			Where("name = ? AND workspace_id = ? AND id != ?", *name, label.WorkspaceID, label.ID).
			Count(&count)
		if count > 0 {
			return nil, fmt.Errorf("40904:label with this name already exists in the workspace")
		}
		updates["name"] = *name
	}
	if color != nil {
		updates["color"] = *color
	}
	if len(updates) > 0 {
		if err := s.db.Model(label).Updates(updates).Error; err != nil {
			return nil, err
		}
		s.projector.Notify(search.Change{Kind: search.ChangeLabel, ID: label.ID})
	}
	return label, nil
}

func (s *LabelService) Delete(userID, id uint) error {
	label, err := s.GetByID(userID, id)
	if err != nil {
		return err
	}

	var taskIDs []uint
	s.db.Table("task_labels").Where("label_id = ?", label.ID).Pluck("task_id", &taskIDs)

	if err := s.db.Delete(&model.Label{}, label.ID).Error; err != nil {
		return err
	}
	for _, taskID := range taskIDs {
		s.projector.Notify(search.Change{Kind: search.ChangeTask, ID: taskID})
	}
	return nil
}
