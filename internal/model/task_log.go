package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type JSONMap map[string]interface{}

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	return string(b), err
}

func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	}
	return json.Unmarshal(bytes, j)
}

const (
	LogActionCreate     = "create"
	LogActionUpdate     = "update"
	LogActionDelete     = "delete"
	LogActionComment    = "comment"
	LogActionAttachment = "attachment"
)

// RelatedKind enumerates the entity kinds a TaskLog row may point at. The set
// is closed: log writers pick a kind, readers resolve through ResolveRelated.
type RelatedKind string

const (
	RelatedComment       RelatedKind = "comment"
	RelatedAttachment    RelatedKind = "attachment"
	RelatedChecklistItem RelatedKind = "checklist_item"
	RelatedDependency    RelatedKind = "dependency"
)

// TaskLog is an append-only audit record. Rows are never updated after
// creation.
type TaskLog struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	TaskID      uint        `gorm:"not null;index:idx_log_task" json:"task_id"`
	UserID      *uint       `gorm:"index:idx_log_user" json:"user_id"`
	Action      string      `gorm:"type:varchar(20);not null;index:idx_log_action" json:"action"`
	Changes     JSONMap     `gorm:"type:json" json:"changes"`
	RelatedType RelatedKind `gorm:"type:varchar(20)" json:"related_type,omitempty"`
	RelatedID   *uint       `json:"related_id,omitempty"`
	Timestamp   time.Time   `gorm:"autoCreateTime;index:idx_log_timestamp" json:"timestamp"`

	Task *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
}

func (TaskLog) TableName() string { return "task_logs" }

// ResolveRelated loads the entity a log row points at, one resolver per kind.
// Returns nil when the row has no related object or it has since been deleted.
func (l *TaskLog) ResolveRelated(db *gorm.DB) (interface{}, error) {
	if l.RelatedType == "" || l.RelatedID == nil {
		return nil, nil
	}
	switch l.RelatedType {
	case RelatedComment:
		var c TaskComment
		if err := db.First(&c, *l.RelatedID).Error; err != nil {
			return nil, ignoreNotFound(err)
		}
		return &c, nil
	case RelatedAttachment:
		var a TaskAttachment
		if err := db.First(&a, *l.RelatedID).Error; err != nil {
			return nil, ignoreNotFound(err)
		}
		return &a, nil
	case RelatedChecklistItem:
		var i TaskChecklistItem
		if err := db.First(&i, *l.RelatedID).Error; err != nil {
			return nil, ignoreNotFound(err)
		}
		return &i, nil
	case RelatedDependency:
		var d TaskDependency
		if err := db.First(&d, *l.RelatedID).Error; err != nil {
			return nil, ignoreNotFound(err)
		}
		return &d, nil
	}
	return nil, nil
}

func ignoreNotFound(err error) error {
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	return err
}
