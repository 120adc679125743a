package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"routine-planner/internal/model"
)

// CategoryService keeps the per-user category list.
type CategoryService struct {
	categories CategoryStore
	logger     *zap.Logger
}

func NewCategoryService(categories CategoryStore, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

// List returns the user's categories, creating the default one on first use.
func (s *CategoryService) List(ctx context.Context, userID string) ([]model.Category, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := s.categories.EnsureDefault(ctx, userID); err != nil {
		return nil, err
	}
	return s.categories.ListByUser(ctx, userID)
}

func (s *CategoryService) Create(ctx context.Context, userID, name, color string) (*model.Category, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyTitle
	}
	color = strings.ToUpper(strings.TrimSpace(color))
	if color == "" {
		color = model.DefaultCategoryColor
	}
	if !model.ValidColor(color) {
		return nil, ErrInvalidColor
	}
	if found, err := s.findByName(ctx, userID, name); err != nil {
		return nil, err
	} else if found != nil {
		return nil, ErrDuplicateCategory
	}

	category, err := s.categories.GetOrCreate(ctx, userID, name, color)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicateCategory
		}
		return nil, err
	}
	s.logger.Info("category created", zap.String("user_id", userID), zap.String("category_id", category.ID))
	return category, nil
}

// Resolve finds a category by name or creates it with the default color.
func (s *CategoryService) Resolve(ctx context.Context, userID, name string) (*model.Category, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return s.categories.EnsureDefault(ctx, userID)
	}
	if found, err := s.findByName(ctx, userID, name); err != nil || found != nil {
		return found, err
	}
	return s.categories.GetOrCreate(ctx, userID, name, model.DefaultCategoryColor)
}

func (s *CategoryService) findByName(ctx context.Context, userID, name string) (*model.Category, error) {
	list, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if strings.EqualFold(list[i].Name, name) {
			return &list[i], nil
		}
	}
	return nil, nil
}

// Update changes the name and/or color; nil leaves a field as is.
func (s *CategoryService) Update(ctx context.Context, userID, id string, name, color *string) (*model.Category, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	fields := make(map[string]interface{})
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return nil, ErrEmptyTitle
		}
		if found, err := s.findByName(ctx, userID, n); err != nil {
			return nil, err
		} else if found != nil && found.ID != id {
			return nil, ErrDuplicateCategory
		}
		fields["name"] = n
	}
	if color != nil {
		c := strings.ToUpper(strings.TrimSpace(*color))
		if !model.ValidColor(c) {
			return nil, ErrInvalidColor
		}
		fields["color"] = c
	}
	if len(fields) == 0 {
		return nil, ErrEmptyPatch
	}
	category, err := s.categories.Update(ctx, userID, id, fields)
	if errors.Is(err, ErrDuplicate) {
		return nil, ErrDuplicateCategory
	}
	return category, err
}

// Delete removes a category; its tasks and routines lose the reference.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	category, err := s.categories.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if category.IsDefault {
		return ErrDefaultCategory
	}
	if err := s.categories.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("category deleted", zap.String("user_id", userID), zap.String("category_id", id))
	return nil
}
