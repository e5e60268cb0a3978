package search

import (
	"time"

	"github.com/Invcxze/TaskTracker/internal/model"
	"gorm.io/gorm"
)

// TaskDocument is the denormalized, read-optimized projection of a task. It
// embeds snapshots of everything the search path needs so a query never
// touches the primary store. The document is a rebuildable cache, never the
// source of truth.
type TaskDocument struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Priority      string     `json:"priority"`
	EstimatedTime *uint      `json:"estimated_time,omitempty"`
	ActualTime    *uint      `json:"actual_time,omitempty"`

	// Computed at projection time from the referenced status; false when the
	// task has no status.
	IsClosed bool `json:"is_closed"`

	Workspace  *WorkspaceRef  `json:"workspace,omitempty"`
	Status     *StatusRef     `json:"status,omitempty"`
	TaskType   *TaskTypeRef   `json:"task_type,omitempty"`
	Creator    *UserRef       `json:"creator,omitempty"`
	Assignee   *UserRef       `json:"assignee,omitempty"`
	ParentTask *ParentRef     `json:"parent_task,omitempty"`
	Labels     []LabelRef     `json:"labels"`
	Watchers   []UserRef      `json:"watchers"`
	Comments   []CommentRef   `json:"comments"`
	Checklist  []ChecklistRef `json:"checklist_items"`
}

type WorkspaceRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type StatusRef struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	IsClosed bool   `json:"is_closed"`
}

type TaskTypeRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

type UserRef struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	FIO   string `json:"fio"`
}

type ParentRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type LabelRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type CommentRef struct {
	ID      uint     `json:"id"`
	Content string   `json:"content"`
	Author  *UserRef `json:"author,omitempty"`
}

type ChecklistRef struct {
	ID          uint   `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"is_completed"`
}

// UserDocument mirrors a user for the admin search endpoint, with the
// distinct permission codes and workspaces reachable through the user's
// workspace roles.
type UserDocument struct {
	ID          uint            `json:"id"`
	Email       string          `json:"email"`
	FIO         string          `json:"fio"`
	IsActive    bool            `json:"is_active"`
	IsStaff     bool            `json:"is_staff"`
	IsSuperuser bool            `json:"is_superuser"`
	Permissions []PermissionRef `json:"permissions"`
	Workspaces  []WorkspaceRef  `json:"workspaces"`
}

type PermissionRef struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// Builder assembles documents from the primary store.
type Builder struct {
	db *gorm.DB
}

func NewBuilder(db *gorm.DB) *Builder {
	return &Builder{db: db}
}

// BuildTask loads a task with its related rows and projects it into a
// document. Returns gorm.ErrRecordNotFound when the task no longer exists.
func (b *Builder) BuildTask(taskID uint) (*TaskDocument, error) {
	var task model.Task
	err := b.db.
		Preload("Workspace").
		Preload("Status").
		Preload("TaskType").
		Preload("Creator").
		Preload("Assignee").
		Preload("ParentTask").
		Preload("Labels").
		Preload("Watchers").
		First(&task, taskID).Error
	if err != nil {
		return nil, err
	}

	doc := &TaskDocument{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
		DueDate:       task.DueDate,
		Priority:      task.Priority,
		EstimatedTime: task.EstimatedTime,
		ActualTime:    task.ActualTime,
		Labels:        []LabelRef{},
		Watchers:      []UserRef{},
		Comments:      []CommentRef{},
		Checklist:     []ChecklistRef{},
	}

	if task.Status != nil {
		doc.IsClosed = task.Status.IsClosed
		doc.Status = &StatusRef{ID: task.Status.ID, Name: task.Status.Name, IsClosed: task.Status.IsClosed}
	}
	if task.Workspace != nil {
		doc.Workspace = &WorkspaceRef{ID: task.Workspace.ID, Name: task.Workspace.Name}
	}
	if task.TaskType != nil {
		doc.TaskType = &TaskTypeRef{
			ID:    task.TaskType.ID,
			Name:  task.TaskType.Name,
			Icon:  task.TaskType.Icon,
			Color: task.TaskType.Color,
		}
	}
	if task.Creator != nil {
		doc.Creator = userRef(task.Creator)
	}
	if task.Assignee != nil {
		doc.Assignee = userRef(task.Assignee)
	}
	if task.ParentTask != nil {
		doc.ParentTask = &ParentRef{ID: task.ParentTask.ID, Title: task.ParentTask.Title}
	}
	for _, l := range task.Labels {
		doc.Labels = append(doc.Labels, LabelRef{ID: l.ID, Name: l.Name, Color: l.Color})
	}
	for _, w := range task.Watchers {
		doc.Watchers = append(doc.Watchers, *userRef(&w))
	}

	var comments []model.TaskComment
	if err := b.db.Preload("Author").Where("task_id = ?", task.ID).Order("id").Find(&comments).Error; err != nil {
		return nil, err
	}
	for _, c := range comments {
		ref := CommentRef{ID: c.ID, Content: c.Content}
		if c.Author != nil {
			ref.Author = userRef(c.Author)
		}
		doc.Comments = append(doc.Comments, ref)
	}

	var items []model.TaskChecklistItem
	if err := b.db.Where("task_id = ?", task.ID).Order("order_num").Find(&items).Error; err != nil {
		return nil, err
	}
	for _, i := range items {
		doc.Checklist = append(doc.Checklist, ChecklistRef{ID: i.ID, Text: i.Text, IsCompleted: i.IsCompleted})
	}

	return doc, nil
}

// BuildUser projects a user with the distinct permissions and workspaces
// granted through its workspace roles.
func (b *Builder) BuildUser(userID uint) (*UserDocument, error) {
	var user model.User
	if err := b.db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	doc := &UserDocument{
		ID:          user.ID,
		Email:       user.Email,
		FIO:         user.FIO,
		IsActive:    user.IsActive,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
		Permissions: []PermissionRef{},
		Workspaces:  []WorkspaceRef{},
	}

	rows, err := b.db.Model(&model.UserWorkspaceRole{}).
		Joins("JOIN role_permissions ON role_permissions.role_id = user_workspace_roles.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("user_workspace_roles.user_id = ?", user.ID).
		Distinct().
		Select("permissions.code", "permissions.description").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref PermissionRef
		if err := rows.Scan(&ref.Code, &ref.Description); err != nil {
			return nil, err
		}
		doc.Permissions = append(doc.Permissions, ref)
	}

	wsRows, err := b.db.Model(&model.UserWorkspaceRole{}).
		Joins("JOIN workspaces ON workspaces.id = user_workspace_roles.workspace_id").
		Where("user_workspace_roles.user_id = ?", user.ID).
		Distinct().
		Select("workspaces.id", "workspaces.name").
		Rows()
	if err != nil {
		return nil, err
	}
	defer wsRows.Close()
	for wsRows.Next() {
		var ref WorkspaceRef
		if err := wsRows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		doc.Workspaces = append(doc.Workspaces, ref)
	}

	return doc, nil
}

func userRef(u *model.User) *UserRef {
	return &UserRef{ID: u.ID, Email: u.Email, FIO: u.FIO}
}
