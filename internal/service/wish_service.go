package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"routine-planner/internal/model"
)

// WishPatch lists the wish item fields to change.
type WishPatch struct {
	Title       *string
	Reason      *string
	IsCompleted *bool
}

// WishService manages wish lists and turns wishes into tasks.
type WishService struct {
	wishes WishStore
	tasks  *TaskService
	logger *zap.Logger
}

func NewWishService(wishes WishStore, tasks *TaskService, logger *zap.Logger) *WishService {
	return &WishService{wishes: wishes, tasks: tasks, logger: logger}
}

// Lists returns the user's lists with the default one first.
func (s *WishService) Lists(ctx context.Context, userID string) ([]model.WishList, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := s.wishes.EnsureDefaultList(ctx, userID); err != nil {
		return nil, err
	}
	return s.wishes.ListLists(ctx, userID)
}

func (s *WishService) CreateList(ctx context.Context, userID, title string) (*model.WishList, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	list := model.WishList{UserID: userID, Title: title}
	if err := s.wishes.CreateList(ctx, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (s *WishService) RenameList(ctx context.Context, userID, listID, title string) (*model.WishList, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	return s.wishes.RenameList(ctx, userID, listID, title)
}

// DeleteList removes a list and its items. The default list stays.
func (s *WishService) DeleteList(ctx context.Context, userID, listID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	list, err := s.wishes.FindList(ctx, userID, listID)
	if err != nil {
		return err
	}
	if list.IsDefault {
		return ErrDefaultWishList
	}
	return s.wishes.DeleteList(ctx, userID, listID)
}

// AddItem appends a wish; an empty listID means the default list.
func (s *WishService) AddItem(ctx context.Context, userID, listID, title, reason string) (*model.WishItem, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if listID == "" {
		list, err := s.wishes.EnsureDefaultList(ctx, userID)
		if err != nil {
			return nil, err
		}
		listID = list.ID
	} else if _, err := s.wishes.FindList(ctx, userID, listID); err != nil {
		return nil, err
	}
	item := model.WishItem{
		WishListID: listID,
		UserID:     userID,
		Title:      title,
		Reason:     strings.TrimSpace(reason),
	}
	if err := s.wishes.CreateItem(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Items lists a list's wishes; an empty listID means the default list.
func (s *WishService) Items(ctx context.Context, userID, listID string) ([]model.WishItem, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if listID == "" {
		list, err := s.wishes.EnsureDefaultList(ctx, userID)
		if err != nil {
			return nil, err
		}
		listID = list.ID
	} else if _, err := s.wishes.FindList(ctx, userID, listID); err != nil {
		return nil, err
	}
	return s.wishes.ListItems(ctx, userID, listID)
}

func (s *WishService) UpdateItem(ctx context.Context, userID, itemID string, patch WishPatch) (*model.WishItem, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	fields := make(map[string]interface{})
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		fields["title"] = title
	}
	if patch.Reason != nil {
		fields["reason"] = strings.TrimSpace(*patch.Reason)
	}
	if patch.IsCompleted != nil {
		fields["is_completed"] = *patch.IsCompleted
	}
	if len(fields) == 0 {
		return nil, ErrEmptyPatch
	}
	return s.wishes.UpdateItem(ctx, userID, itemID, fields)
}

func (s *WishService) DeleteItem(ctx context.Context, userID, itemID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	return s.wishes.DeleteItem(ctx, userID, itemID)
}

// Convert creates a task from a wish. The title is copied and the reason
// becomes the memo; the wish itself is left untouched.
func (s *WishService) Convert(ctx context.Context, userID, itemID string, date model.Date, priority string, categoryID *string) (*model.Task, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	item, err := s.wishes.FindItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.create(ctx, userID, TaskInput{
		Title:      item.Title,
		Memo:       item.Reason,
		Priority:   priority,
		CategoryID: categoryID,
		Date:       date,
	}, "wish")
	if err != nil {
		return nil, err
	}
	s.logger.Info("wish converted",
		zap.String("user_id", userID),
		zap.String("wish_id", itemID),
		zap.String("task_id", task.ID),
	)
	return task, nil
}
