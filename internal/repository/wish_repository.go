package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"routine-planner/internal/model"
)

// WishRepository handles wish lists and their items.
type WishRepository struct {
	db *gorm.DB
}

func NewWishRepository(db *gorm.DB) *WishRepository {
	return &WishRepository{db: db}
}

// EnsureDefaultList returns the user's default list, creating it on first use.
func (r *WishRepository) EnsureDefaultList(ctx context.Context, userID string) (*model.WishList, error) {
	var list model.WishList
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ? AND is_default = ?", userID, true).First(&list).Error
	switch {
	case err == nil:
		return &list, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		list = model.WishList{UserID: userID, Title: model.DefaultWishListTitle, IsDefault: true}
		if err := db.Create(&list).Error; err != nil {
			return nil, fmt.Errorf("create wish list: %w", err)
		}
		return &list, nil
	default:
		return nil, fmt.Errorf("find wish list: %w", err)
	}
}

func (r *WishRepository) CreateList(ctx context.Context, list *model.WishList) error {
	next, err := r.nextOrder(ctx, &model.WishList{}, "user_id = ?", list.UserID)
	if err != nil {
		return err
	}
	list.SortOrder = next
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return fmt.Errorf("create wish list: %w", err)
	}
	return nil
}

func (r *WishRepository) ListLists(ctx context.Context, userID string) ([]model.WishList, error) {
	var lists []model.WishList
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC, sort_order ASC").
		Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("list wish lists: %w", err)
	}
	return lists, nil
}

func (r *WishRepository) FindList(ctx context.Context, userID, listID string) (*model.WishList, error) {
	var list model.WishList
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, listID).First(&list).Error; err != nil {
		return nil, notFound(err)
	}
	return &list, nil
}

func (r *WishRepository) RenameList(ctx context.Context, userID, listID, title string) (*model.WishList, error) {
	res := r.db.WithContext(ctx).Model(&model.WishList{}).
		Where("user_id = ? AND id = ?", userID, listID).
		Update("title", title)
	if res.Error != nil {
		return nil, fmt.Errorf("rename wish list: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindList(ctx, userID, listID)
}

// DeleteList removes a list together with its items.
func (r *WishRepository) DeleteList(ctx context.Context, userID, listID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND wish_list_id = ?", userID, listID).Delete(&model.WishItem{}).Error; err != nil {
			return fmt.Errorf("delete wish items: %w", err)
		}
		res := tx.Where("user_id = ? AND id = ?", userID, listID).Delete(&model.WishList{})
		if res.Error != nil {
			return fmt.Errorf("delete wish list: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CreateItem appends an item at the end of its list.
func (r *WishRepository) CreateItem(ctx context.Context, item *model.WishItem) error {
	next, err := r.nextOrder(ctx, &model.WishItem{}, "wish_list_id = ?", item.WishListID)
	if err != nil {
		return err
	}
	item.SortOrder = next
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create wish item: %w", err)
	}
	return nil
}

func (r *WishRepository) ListItems(ctx context.Context, userID, listID string) ([]model.WishItem, error) {
	var items []model.WishItem
	if err := r.db.WithContext(ctx).Where("user_id = ? AND wish_list_id = ?", userID, listID).
		Order("is_completed ASC, sort_order ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list wish items: %w", err)
	}
	return items, nil
}

func (r *WishRepository) FindItem(ctx context.Context, userID, itemID string) (*model.WishItem, error) {
	var item model.WishItem
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, itemID).First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *WishRepository) UpdateItem(ctx context.Context, userID, itemID string, fields map[string]interface{}) (*model.WishItem, error) {
	res := r.db.WithContext(ctx).Model(&model.WishItem{}).
		Where("user_id = ? AND id = ?", userID, itemID).
		Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("update wish item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindItem(ctx, userID, itemID)
}

func (r *WishRepository) DeleteItem(ctx context.Context, userID, itemID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, itemID).Delete(&model.WishItem{})
	if res.Error != nil {
		return fmt.Errorf("delete wish item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *WishRepository) nextOrder(ctx context.Context, table interface{}, where string, arg interface{}) (int, error) {
	var last sql.NullInt64
	row := r.db.WithContext(ctx).Model(table).Where(where, arg).Select("MAX(sort_order)").Row()
	if err := row.Scan(&last); err != nil {
		return 0, fmt.Errorf("max sort order: %w", err)
	}
	if !last.Valid {
		return 0, nil
	}
	return int(last.Int64) + 1, nil
}
