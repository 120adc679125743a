package service

import (
	"context"
	"time"

	"routine-planner/internal/model"
)

// TaskStore is the data access the task core needs.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, userID, taskID string) (*model.Task, error)
	ListByDate(ctx context.Context, userID string, date model.Date) ([]model.Task, error)
	ListRange(ctx context.Context, userID string, from, to model.Date) ([]model.Task, error)
	Update(ctx context.Context, userID, taskID string, fields map[string]interface{}) (*model.Task, error)
	UpdateSortOrder(ctx context.Context, userID, taskID string, position int) error
	Delete(ctx context.Context, userID, taskID string) error
	ReassignStale(ctx context.Context, userID string, today model.Date, now time.Time) ([]model.Task, error)
	Search(ctx context.Context, userID string, filter model.TaskFilter) ([]model.Task, error)
}

type RoutineStore interface {
	Create(ctx context.Context, routine *model.Routine) error
	Save(ctx context.Context, routine *model.Routine) error
	FindByID(ctx context.Context, userID, routineID string) (*model.Routine, error)
	ListByUser(ctx context.Context, userID string) ([]model.Routine, error)
	ListActive(ctx context.Context, userID string) ([]model.Routine, error)
	Delete(ctx context.Context, userID, routineID string) error
}

type CategoryStore interface {
	EnsureDefault(ctx context.Context, userID string) (*model.Category, error)
	GetOrCreate(ctx context.Context, userID, name, color string) (*model.Category, error)
	ListByUser(ctx context.Context, userID string) ([]model.Category, error)
	GetByID(ctx context.Context, userID, id string) (*model.Category, error)
	Update(ctx context.Context, userID, id string, fields map[string]interface{}) (*model.Category, error)
	Delete(ctx context.Context, userID, id string) error
}

type WishStore interface {
	EnsureDefaultList(ctx context.Context, userID string) (*model.WishList, error)
	CreateList(ctx context.Context, list *model.WishList) error
	ListLists(ctx context.Context, userID string) ([]model.WishList, error)
	FindList(ctx context.Context, userID, listID string) (*model.WishList, error)
	RenameList(ctx context.Context, userID, listID, title string) (*model.WishList, error)
	DeleteList(ctx context.Context, userID, listID string) error
	CreateItem(ctx context.Context, item *model.WishItem) error
	ListItems(ctx context.Context, userID, listID string) ([]model.WishItem, error)
	FindItem(ctx context.Context, userID, itemID string) (*model.WishItem, error)
	UpdateItem(ctx context.Context, userID, itemID string, fields map[string]interface{}) (*model.WishItem, error)
	DeleteItem(ctx context.Context, userID, itemID string) error
}

type UserStore interface {
	UpsertFromTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error)
	UpsertByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	ListByNotificationTime(ctx context.Context, hhmm string) ([]model.User, error)
	SetNotificationTime(ctx context.Context, id, hhmm string) (*model.User, error)
}

// Clock returns the current time; tests replace it.
type Clock func() time.Time
