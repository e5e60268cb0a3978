package service

import (
	"errors"
	"fmt"

	"github.com/Invcxze/TaskTracker/internal/access"
	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/search"
	"gorm.io/gorm"
)

type WorkspaceService struct {
	db        *gorm.DB
	projector *search.Projector
}

func NewWorkspaceService(db *gorm.DB, projector *search.Projector) *WorkspaceService {
	return &WorkspaceService{db: db, projector: projector}
}

// Create records the creator but deliberately does not grant membership: the
// creator still needs an explicit UserWorkspaceRole row to pass access checks.
func (s *WorkspaceService) Create(name, description string, creatorID uint) (*model.Workspace, error) {
	ws := &model.Workspace{
		Name:        name,
		Description: description,
		CreatedByID: &creatorID,
	}
	if err := s.db.Create(ws).Error; err != nil {
		return nil, err
	}
	return ws, nil
}

// List returns only the workspaces the user is a member of.
func (s *WorkspaceService) List(userID uint) ([]model.Workspace, error) {
	var workspaces []model.Workspace
	if err := access.ScopeWorkspaces(s.db, userID).Order("id").Find(&workspaces).Error; err != nil {
		return nil, err
	}
	return workspaces, nil
}

func (s *WorkspaceService) GetByID(userID, id uint) (*model.Workspace, error) {
	var ws model.Workspace
	err := access.ScopeWorkspaces(s.db, userID).Where("id = ?", id).First(&ws).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:workspace not found")
		}
		return nil, err
	}
	return &ws, nil
}

func (s *WorkspaceService) Update(userID, id uint, name, description *string) (*model.Workspace, error) {
	ws, err := s.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) > 0 {
		if err := s.db.Model(ws).Updates(updates).Error; err != nil {
			return nil, err
		}
		s.projector.Notify(search.Change{Kind: search.ChangeWorkspace, ID: ws.ID})
	}
	return ws, nil
}

func (s *WorkspaceService) Delete(userID, id uint) error {
	ws, err := s.GetByID(userID, id)
	if err != nil {
		return err
	}

	var taskIDs []uint
	s.db.Model(&model.Task{}).Where("workspace_id = ?", ws.ID).Pluck("id", &taskIDs)
	var memberIDs []uint
	s.db.Model(&model.UserWorkspaceRole{}).Where("workspace_id = ?", ws.ID).Distinct().Pluck("user_id", &memberIDs)

	if err := s.db.Delete(ws).Error; err != nil {
		return err
	}
	for _, taskID := range taskIDs {
		s.projector.Notify(search.Change{Kind: search.ChangeTaskDeleted, ID: taskID})
	}
	for _, memberID := range memberIDs {
		s.projector.Notify(search.Change{Kind: search.ChangeMembership, ID: memberID})
	}
	return nil
}

// ListMembers lists the membership rows of one workspace.
func (s *WorkspaceService) ListMembers(workspaceID uint) ([]model.UserWorkspaceRole, error) {
	var roles []model.UserWorkspaceRole
	err := s.db.Preload("User").Preload("Role").
		Where("workspace_id = ?", workspaceID).
		Order("id").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// AddMember grants a role in a workspace. The unique constraint is the full
// (user, workspace, role) triple: the same role twice is a conflict, a second
// distinct role is fine.
func (s *WorkspaceService) AddMember(workspaceID, userID, roleID uint) (*model.UserWorkspaceRole, error) {
	var ws model.Workspace
	if err := s.db.First(&ws, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:workspace not found")
		}
		return nil, err
	}
	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:user not found")
		}
		return nil, err
	}
	var role model.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:role not found")
		}
		return nil, err
	}

	var count int64
	s.db.Model(&model.UserWorkspaceRole{}).
		Where("user_id = ? AND workspace_id = ? AND role_id = ?", userID, workspaceID, roleID).
		Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("40902:user already holds this role in this workspace")
	}

	uwr := &model.UserWorkspaceRole{UserID: userID, WorkspaceID: workspaceID, RoleID: roleID}
	if err := s.db.Create(uwr).Error; err != nil {
		return nil, err
	}
	uwr.User = &user
	uwr.Workspace = &ws
	uwr.Role = &role

	s.projector.Notify(search.Change{Kind: search.ChangeMembership, ID: userID})
	return uwr, nil
}

// UpdateMember swaps the role on an existing membership row. The triple
// uniqueness check applies to the new role too.
func (s *WorkspaceService) UpdateMember(workspaceID, membershipID, roleID uint) (*model.UserWorkspaceRole, error) {
	var uwr model.UserWorkspaceRole
	err := s.db.Where("workspace_id = ?", workspaceID).First(&uwr, membershipID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:membership not found")
		}
		return nil, err
	}
	var role model.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:role not found")
		}
		return nil, err
	}

	if roleID != uwr.RoleID {
		var count int64
		s.db.Model(&model.UserWorkspaceRole{}).
			Where("user_id = ? AND workspace_id = ? AND role_id = ?", uwr.UserID, workspaceID, roleID).
			Count(&count)
		if count > 0 {
			return nil, fmt.Errorf("40902:user already holds this role in this workspace")
		}
		if err := s.db.Model(&uwr).Update("role_id", roleID).Error; err != nil {
			return nil, err
		}
		s.projector.Notify(search.Change{Kind: search.ChangeMembership, ID: uwr.UserID})
	}
	uwr.Role = &role
	return &uwr, nil
}

func (s *WorkspaceService) RemoveMember(workspaceID, membershipID uint) error {
	var uwr model.UserWorkspaceRole
	err := s.db.Where("workspace_id = ?", workspaceID).First(&uwr, membershipID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("40401:membership not found")
		}
		return err
	}
	if err := s.db.Delete(&uwr).Error; err != nil {
		return err
	}
	s.projector.Notify(search.Change{Kind: search.ChangeMembership, ID: uwr.UserID})
	return nil
}
