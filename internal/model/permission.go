package model

// Role is a global named role. Roles are not workspace-scoped themselves;
// UserWorkspaceRole binds a role to a user inside one workspace.
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex:uk_role_name;not null" json:"name"`

	RolePermissions []RolePermission `gorm:"foreignKey:RoleID" json:"role_permissions,omitempty"`
}

func (Role) TableName() string { return "roles" }

// Permission is an atomic grantable capability, identified by its code.
type Permission struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"type:varchar(100);uniqueIndex:uk_permission_code;not null" json:"code"`
	Description string `gorm:"type:text" json:"description"`
}

func (Permission) TableName() string { return "permissions" }

type RolePermission struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	RoleID       uint `gorm:"not null;uniqueIndex:uk_role_permission" json:"role_id"`
	PermissionID uint `gorm:"not null;uniqueIndex:uk_role_permission" json:"permission_id"`

	Role       *Role       `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"role,omitempty"`
	Permission *Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE" json:"permission,omitempty"`
}

func (RolePermission) TableName() string { return "role_permissions" }
