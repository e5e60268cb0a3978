package access

import (
	"github.com/Invcxze/TaskTracker/internal/model"
	"gorm.io/gorm"
)

// Scoped query builders: one per resource kind, each rewriting a listing into
// "rows whose transitive workspace has a membership row for the user". The
// ownership chains are enumerated statically: a resource either carries a
// workspace FK directly or reaches one through its owning task. Every read
// and every mutation in the services flows through one of these; a row the
// scope filters out reads as not-found, never as forbidden.

func memberWorkspaces(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.UserWorkspaceRole{}).
		Where("user_id = ?", userID).
		Select("workspace_id")
}

// ScopeWorkspaces lists the workspaces the user belongs to.
func ScopeWorkspaces(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.Workspace{}).
		Where("id IN (?)", memberWorkspaces(db, userID))
}

// ScopeTasks: direct workspace FK.
func ScopeTasks(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.Task{}).
		Where("tasks.workspace_id IN (?)", memberWorkspaces(db, userID))
}

// ScopeStatuses: direct workspace FK.
func ScopeStatuses(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.TaskStatus{}).
		Where("task_statuses.workspace_id IN (?)", memberWorkspaces(db, userID))
}

// ScopeLabels: direct workspace FK.
func ScopeLabels(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.Label{}).
		Where("labels.workspace_id IN (?)", memberWorkspaces(db, userID))
}

// ScopeComments: via the owning task's workspace.
func ScopeComments(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.TaskComment{}).
		Joins("JOIN tasks ON tasks.id = task_comments.task_id").
		Where("tasks.workspace_id IN (?)", memberWorkspaces(db, userID))
}

// ScopeAttachments: via the owning task's workspace.
func ScopeAttachments(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.TaskAttachment{}).
		Joins("JOIN tasks ON tasks.id = task_attachments.task_id").
		Where("tasks.workspace_id IN (?)", memberWorkspaces(db, userID))
}

// ScopeChecklistItems: via the owning task's workspace.
func ScopeChecklistItems(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.TaskChecklistItem{}).
		Joins("JOIN tasks ON tasks.id = task_checklist_items.task_id").
		Where("tasks.workspace_id IN (?)", memberWorkspaces(db, userID))
}

// ScopeLogs: via the owning task's workspace.
func ScopeLogs(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.TaskLog{}).
		Joins("JOIN tasks ON tasks.id = task_logs.task_id").
		Where("tasks.workspace_id IN (?)", memberWorkspaces(db, userID))
}

// ScopeDependencies: both endpoints must resolve to an accessible task.
func ScopeDependencies(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.TaskDependency{}).
		Joins("JOIN tasks AS from_tasks ON from_tasks.id = task_dependencies.from_task_id").
		Joins("JOIN tasks AS to_tasks ON to_tasks.id = task_dependencies.to_task_id").
		Where("from_tasks.workspace_id IN (?)", memberWorkspaces(db, userID)).
		Where("to_tasks.workspace_id IN (?)", memberWorkspaces(db, userID))
}
