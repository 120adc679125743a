package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"routine-planner/internal/model"
)

// DefaultSearchLimit caps search results.
const DefaultSearchLimit = 100

// ErrDuplicate is returned when an insert hits a unique index.
var ErrDuplicate = errors.New("duplicate record")

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create task: %w", ErrDuplicate)
		}
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

// ListByDate returns the tasks of one day in stored position order.
func (r *TaskRepository) ListByDate(ctx context.Context, userID string, date model.Date) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND task_date = ?", userID, date).
		Order("sort_order ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListRange returns tasks dated from..to inclusive.
func (r *TaskRepository) ListRange(ctx context.Context, userID string, from, to model.Date) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND task_date >= ? AND task_date <= ?", userID, from, to).
		Order("task_date ASC, sort_order ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies a partial update and returns the stored row.
func (r *TaskRepository) Update(ctx context.Context, userID, taskID string, fields map[string]interface{}) (*model.Task, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND id = ?", userID, taskID).
		Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("update task: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, userID, taskID)
}

func (r *TaskRepository) UpdateSortOrder(ctx context.Context, userID, taskID string, position int) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND id = ?", userID, taskID).
		Update("sort_order", position)
	if res.Error != nil {
		return fmt.Errorf("update sort order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReassignStale moves every incomplete explicit task dated before today to
// today inside one transaction and returns the moved tasks.
func (r *TaskRepository) ReassignStale(ctx context.Context, userID string, today model.Date, now time.Time) ([]model.Task, error) {
	var stale []model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND is_completed = ? AND task_date < ? AND routine_id IS NULL", userID, false, today).
			Order("task_date ASC, sort_order ASC").
			Find(&stale).Error; err != nil {
			return fmt.Errorf("find stale tasks: %w", err)
		}
		for i := range stale {
			if err := tx.Model(&model.Task{}).Where("id = ?", stale[i].ID).
				Updates(map[string]interface{}{"task_date": today, "updated_at": now}).Error; err != nil {
				return fmt.Errorf("carry over task %s: %w", stale[i].ID, err)
			}
			stale[i].TaskDate = today
			stale[i].UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stale, nil
}

// Search filters all of a user's tasks, newest date first.
func (r *TaskRepository) Search(ctx context.Context, userID string, filter model.TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if text := strings.ToLower(strings.TrimSpace(filter.Query)); text != "" {
		like := "%" + text + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(memo) LIKE ?)", like, like)
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	switch filter.Status {
	case model.StatusCompleted:
		q = q.Where("is_completed = ?", true)
	case model.StatusIncomplete:
		q = q.Where("is_completed = ?", false)
	}
	limit := filter.Limit
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	var tasks []model.Task
	if err := q.Order("task_date DESC, sort_order ASC").Limit(limit).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return tasks, nil
}
