package model

import (
	"time"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// TaskType is global, not workspace-scoped.
type TaskType struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"type:varchar(50);uniqueIndex:uk_task_type_name;not null" json:"name"`
	Icon  string `gorm:"type:varchar(30)" json:"icon"`
	Color string `gorm:"type:varchar(7);default:#3498db" json:"color"`
}

func (TaskType) TableName() string { return "task_types" }

type TaskStatus struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(50);not null;uniqueIndex:uk_status_name_workspace" json:"name"`
	WorkspaceID uint   `gorm:"not null;uniqueIndex:uk_status_name_workspace;index:idx_status_workspace" json:"workspace_id"`
	Order       uint   `gorm:"column:order_num;default:0" json:"order"`
	IsDefault   bool   `gorm:"default:false" json:"is_default"`
	IsClosed    bool   `gorm:"default:false" json:"is_closed"`

	Workspace *Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"workspace,omitempty"`
}

func (TaskStatus) TableName() string { return "task_statuses" }

type Label struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(50);not null;uniqueIndex:uk_label_name_workspace" json:"name"`
	WorkspaceID uint   `gorm:"not null;uniqueIndex:uk_label_name_workspace;index:idx_label_workspace" json:"workspace_id"`
	Color       string `gorm:"type:varchar(7);default:#3498db" json:"color"`

	Workspace *Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"workspace,omitempty"`
}

func (Label) TableName() string { return "labels" }

type Task struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Description   string     `gorm:"type:text" json:"description"`
	DueDate       *time.Time `json:"due_date"`
	Priority      string     `gorm:"type:varchar(20);default:medium;index:idx_task_priority" json:"priority"`
	EstimatedTime *uint      `json:"estimated_time"`
	ActualTime    *uint      `json:"actual_time"`

	// WorkspaceID is immutable after creation; the update path never touches it.
	WorkspaceID  uint  `gorm:"not null;index:idx_task_workspace" json:"workspace_id"`
	StatusID     *uint `gorm:"index:idx_task_status" json:"status_id"`
	TaskTypeID   *uint `json:"task_type_id"`
	CreatorID    *uint `gorm:"index:idx_task_creator" json:"creator_id"`
	AssigneeID   *uint `gorm:"index:idx_task_assignee" json:"assignee_id"`
	ParentTaskID *uint `json:"parent_task_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Workspace  *Workspace  `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"workspace,omitempty"`
	Status     *TaskStatus `gorm:"foreignKey:StatusID;constraint:OnDelete:SET NULL" json:"status,omitempty"`
	TaskType   *TaskType   `gorm:"foreignKey:TaskTypeID;constraint:OnDelete:SET NULL" json:"task_type,omitempty"`
	Creator    *User       `gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL" json:"creator,omitempty"`
	Assignee   *User       `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"assignee,omitempty"`
	ParentTask *Task       `gorm:"foreignKey:ParentTaskID;constraint:OnDelete:SET NULL" json:"parent_task,omitempty"`

	Labels   []Label `gorm:"many2many:task_labels" json:"labels,omitempty"`
	Watchers []User  `gorm:"many2many:task_watchers" json:"watchers,omitempty"`
}

func (Task) TableName() string { return "tasks" }

const (
	DependencyBlocks      = "blocks"
	DependencyIsBlockedBy = "is_blocked_by"
	DependencyRelatesTo   = "relates_to"
)

func ValidDependencyType(t string) bool {
	switch t {
	case DependencyBlocks, DependencyIsBlockedBy, DependencyRelatesTo:
		return true
	}
	return false
}

// TaskDependency links two tasks. Both endpoints must live in the same
// workspace; the service checks this at write time, the schema does not.
type TaskDependency struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FromTaskID     uint      `gorm:"not null;uniqueIndex:uk_dependency" json:"from_task_id"`
	ToTaskID       uint      `gorm:"not null;uniqueIndex:uk_dependency" json:"to_task_id"`
	DependencyType string    `gorm:"type:varchar(20);not null;uniqueIndex:uk_dependency" json:"dependency_type"`
	CreatedAt      time.Time `json:"created_at"`

	FromTask *Task `gorm:"foreignKey:FromTaskID;constraint:OnDelete:CASCADE" json:"from_task,omitempty"`
	ToTask   *Task `gorm:"foreignKey:ToTaskID;constraint:OnDelete:CASCADE" json:"to_task,omitempty"`
}

func (TaskDependency) TableName() string { return "task_dependencies" }
