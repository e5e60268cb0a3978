package model

import (
	"time"
)

// Workspace is the tenant boundary: every task-related resource belongs to
// exactly one workspace and dies with it.
type Workspace struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedByID *uint     `gorm:"index:idx_created_by" json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`

	CreatedBy *User               `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"created_by,omitempty"`
	UserRoles []UserWorkspaceRole `gorm:"foreignKey:WorkspaceID" json:"user_roles,omitempty"`
}

func (Workspace) TableName() string { return "workspaces" }

// UserWorkspaceRole is a membership row. Existence of any row for a
// (user, workspace) pair grants baseline access to the workspace. The unique
// constraint is on the full triple: a user may hold several distinct roles in
// one workspace but the same role only once.
type UserWorkspaceRole struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	UserID      uint `gorm:"not null;uniqueIndex:uk_user_workspace_role;index:idx_uwr_user" json:"user_id"`
	WorkspaceID uint `gorm:"not null;uniqueIndex:uk_user_workspace_role;index:idx_uwr_workspace" json:"workspace_id"`
	RoleID      uint `gorm:"not null;uniqueIndex:uk_user_workspace_role" json:"role_id"`

	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Workspace *Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"workspace,omitempty"`
	Role      *Role      `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"role,omitempty"`
}

func (UserWorkspaceRole) TableName() string { return "user_workspace_roles" }
