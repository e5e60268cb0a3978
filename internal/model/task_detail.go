package model

import (
	"time"
)

type TaskComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TaskID    uint      `gorm:"not null;index:idx_comment_task" json:"task_id"`
	AuthorID  *uint     `json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsPinned  bool      `gorm:"default:false" json:"is_pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Task   *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
}

func (TaskComment) TableName() string { return "task_comments" }

type TaskAttachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TaskID       uint      `gorm:"not null;index:idx_attachment_task" json:"task_id"`
	FilePath     string    `gorm:"type:varchar(512);not null" json:"-"`
	FileName     string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FileSize     uint      `json:"file_size"`
	UploadedByID *uint     `json:"uploaded_by_id"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	Task       *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
	UploadedBy *User `gorm:"foreignKey:UploadedByID;constraint:OnDelete:SET NULL" json:"uploaded_by,omitempty"`
}

func (TaskAttachment) TableName() string { return "task_attachments" }

type TaskChecklistItem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TaskID      uint       `gorm:"not null;index:idx_checklist_task" json:"task_id"`
	Text        string     `gorm:"type:varchar(255);not null" json:"text"`
	IsCompleted bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	Order       uint       `gorm:"column:order_num;default:0" json:"order"`
	CreatedAt   time.Time  `json:"created_at"`

	Task *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
}

func (TaskChecklistItem) TableName() string { return "task_checklist_items" }

// StampCompletion keeps CompletedAt in sync with IsCompleted: the timestamp is
// set on the false→true transition, cleared on true→false, and left untouched
// when the flag does not change.
func (i *TaskChecklistItem) StampCompletion(now time.Time) {
	if i.IsCompleted && i.CompletedAt == nil {
		i.CompletedAt = &now
	} else if !i.IsCompleted && i.CompletedAt != nil {
		i.CompletedAt = nil
	}
}
