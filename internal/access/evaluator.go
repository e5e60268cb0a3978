package access

import (
	"github.com/Invcxze/TaskTracker/internal/model"
	"gorm.io/gorm"
)

// Evaluator answers workspace admission questions. It only ever reads; a
// missing workspace denies instead of erroring.
type Evaluator struct {
	db *gorm.DB
}

func NewEvaluator(db *gorm.DB) *Evaluator {
	return &Evaluator{db: db}
}

// HasWorkspaceAccess reports whether any membership row exists for the
// (user, workspace) pair. The role held does not matter: membership existence
// is baseline access.
func (e *Evaluator) HasWorkspaceAccess(userID, workspaceID uint) bool {
	if userID == 0 || workspaceID == 0 {
		return false
	}
	var count int64
	e.db.Model(&model.UserWorkspaceRole{}).
		Where("user_id = ? AND workspace_id = ?", userID, workspaceID).
		Count(&count)
	return count > 0
}

// HasPermission reports whether any of the user's roles in the workspace
// grants the permission code. Rights never cross workspace boundaries: admin
// in workspace A means nothing in workspace B.
func (e *Evaluator) HasPermission(userID, workspaceID uint, code string) bool {
	if userID == 0 || workspaceID == 0 || code == "" {
		return false
	}
	var count int64
	e.db.Model(&model.UserWorkspaceRole{}).
		Joins("JOIN role_permissions ON role_permissions.role_id = user_workspace_roles.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("user_workspace_roles.user_id = ? AND user_workspace_roles.workspace_id = ? AND permissions.code = ?",
			userID, workspaceID, code).
		Count(&count)
	return count > 0
}

// WorkspaceIDs returns the ids of every workspace the user is a member of.
func (e *Evaluator) WorkspaceIDs(userID uint) []uint {
	var ids []uint
	e.db.Model(&model.UserWorkspaceRole{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("workspace_id", &ids)
	return ids
}
