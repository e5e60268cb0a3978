package model

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(128);uniqueIndex:uk_email;not null" json:"email"`
	FIO          string    `gorm:"type:varchar(120);not null" json:"fio"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	IsStaff      bool      `gorm:"default:false" json:"is_staff"`
	IsSuperuser  bool      `gorm:"default:false" json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	WorkspaceRoles []UserWorkspaceRole `gorm:"foreignKey:UserID" json:"workspace_roles,omitempty"`
}

func (User) TableName() string { return "users" }

type UserBrief struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	FIO   string `json:"fio"`
}

func (u *User) Brief() UserBrief {
	return UserBrief{
		ID:    u.ID,
		Email: u.Email,
		FIO:   u.FIO,
	}
}

// AuthToken is an opaque bearer token. A user holds at most one row at a time:
// log-in reuses the existing key, log-out deletes it.
type AuthToken struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Key       string    `gorm:"type:varchar(64);uniqueIndex:uk_token_key;not null" json:"-"`
	UserID    uint      `gorm:"uniqueIndex:uk_token_user;not null" json:"-"`
	CreatedAt time.Time `json:"-"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (AuthToken) TableName() string { return "auth_tokens" }
