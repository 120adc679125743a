package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"routine-planner/internal/model"
)

// RoutineRepository handles CRUD for routines.
type RoutineRepository struct {
	db *gorm.DB
}

func NewRoutineRepository(db *gorm.DB) *RoutineRepository {
	return &RoutineRepository{db: db}
}

func (r *RoutineRepository) Create(ctx context.Context, routine *model.Routine) error {
	if err := r.db.WithContext(ctx).Create(routine).Error; err != nil {
		return fmt.Errorf("create routine: %w", err)
	}
	return nil
}

// Save writes every field of an existing routine.
func (r *RoutineRepository) Save(ctx context.Context, routine *model.Routine) error {
	res := r.db.WithContext(ctx).Model(&model.Routine{}).
		Where("user_id = ? AND id = ?", routine.UserID, routine.ID).
		Select("*").Omit("id", "user_id", "created_at").
		Updates(routine)
	if res.Error != nil {
		return fmt.Errorf("save routine: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RoutineRepository) FindByID(ctx context.Context, userID, routineID string) (*model.Routine, error) {
	var routine model.Routine
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, routineID).First(&routine).Error; err != nil {
		return nil, notFound(err)
	}
	return &routine, nil
}

func (r *RoutineRepository) ListByUser(ctx context.Context, userID string) ([]model.Routine, error) {
	var routines []model.Routine
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&routines).Error; err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return routines, nil
}

func (r *RoutineRepository) ListActive(ctx context.Context, userID string) ([]model.Routine, error) {
	var routines []model.Routine
	if err := r.db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&routines).Error; err != nil {
		return nil, fmt.Errorf("list active routines: %w", err)
	}
	return routines, nil
}

// Delete removes the routine and detaches the tasks it produced, which then
// count as explicit tasks.
func (r *RoutineRepository) Delete(ctx context.Context, userID, routineID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("user_id = ? AND routine_id = ?", userID, routineID).
			Update("routine_id", nil).Error; err != nil {
			return fmt.Errorf("detach tasks: %w", err)
		}
		res := tx.Where("user_id = ? AND id = ?", userID, routineID).Delete(&model.Routine{})
		if res.Error != nil {
			return fmt.Errorf("delete routine: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
