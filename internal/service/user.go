package service

import (
	"errors"
	"fmt"

	"github.com/Invcxze/TaskTracker/internal/model"
	"github.com/Invcxze/TaskTracker/internal/search"
	"gorm.io/gorm"
)

type UserService struct {
	db        *gorm.DB
	projector *search.Projector
}

func NewUserService(db *gorm.DB, projector *search.Projector) *UserService {
	return &UserService{db: db, projector: projector}
}

// PermissionUpdate is the admin PATCH payload. RoleIDs fully replaces the
// user's roles within WorkspaceID; it never merges.
type PermissionUpdate struct {
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
	RoleIDs     *[]uint `json:"role_ids"`
	WorkspaceID *uint   `json:"workspace_id"`
}

func (s *UserService) UpdatePermissions(userID uint, upd PermissionUpdate) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:user not found")
		}
		return nil, err
	}

	if upd.RoleIDs != nil && upd.WorkspaceID == nil {
		return nil, fmt.Errorf("40001:workspace_id is required when assigning roles")
	}

	updates := map[string]interface{}{}
	if upd.IsStaff != nil {
		updates["is_staff"] = *upd.IsStaff
	}
	if upd.IsSuperuser != nil {
		updates["is_superuser"] = *upd.IsSuperuser
	}
	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	if upd.RoleIDs != nil {
		var ws model.Workspace
		if err := s.db.First(&ws, *upd.WorkspaceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("40401:workspace not found")
			}
			return nil, err
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("user_id = ? AND workspace_id = ?", user.ID, ws.ID).
				Delete(&model.UserWorkspaceRole{}).Error; err != nil {
				return err
			}
			for _, roleID := range *upd.RoleIDs {
				var role model.Role
				if err := tx.First(&role, roleID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("40401:role not found: id=%d", roleID)
					}
					return err
				}
				uwr := model.UserWorkspaceRole{UserID: user.ID, WorkspaceID: ws.ID, RoleID: roleID}
				if err := tx.Create(&uwr).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.projector.Notify(search.Change{Kind: search.ChangeUser, ID: user.ID})
	return &user, nil
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("40401:user not found")
		}
		return nil, err
	}
	return &user, nil
}

// WorkspaceRoles lists the user's membership rows across all workspaces.
func (s *UserService) WorkspaceRoles(userID uint) ([]model.UserWorkspaceRole, error) {
	var roles []model.UserWorkspaceRole
	err := s.db.Preload("Role").Preload("Workspace").
		Where("user_id = ?", userID).
		Order("id").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// FetchByIDs resolves index hits back into user rows, preserving index order.
func (s *UserService) FetchByIDs(ids []uint) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	var users []model.User
	if err := s.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}
