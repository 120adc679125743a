package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task is a dated unit of work. RoutineID is set only on tasks materialized
// from a routine; the (routine_id, task_date) pair is unique.
type Task struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string    `gorm:"type:varchar(36);index" json:"user_id"`
	CategoryID  *string   `gorm:"type:varchar(36);index" json:"category_id"`
	RoutineID   *string   `gorm:"type:varchar(36);uniqueIndex:idx_task_routine_date" json:"routine_id"`
	Title       string    `gorm:"not null" json:"title"`
	Memo        string    `json:"memo"`
	Priority    Priority  `gorm:"type:varchar(10)" json:"priority"`
	IsCompleted bool      `gorm:"default:false" json:"is_completed"`
	TaskDate    Date      `gorm:"type:varchar(10);index;uniqueIndex:idx_task_routine_date" json:"task_date"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// FromRoutine reports whether the task was generated by a routine.
func (t *Task) FromRoutine() bool {
	return t.RoutineID != nil
}

// TaskStatus filters search results by completion.
type TaskStatus string

const (
	StatusAll        TaskStatus = "all"
	StatusCompleted  TaskStatus = "completed"
	StatusIncomplete TaskStatus = "incomplete"
)

// TaskFilter narrows a search over all of a user's tasks.
type TaskFilter struct {
	Query      string
	CategoryID string
	Priority   Priority
	Status     TaskStatus
	Limit      int
}
