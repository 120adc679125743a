package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultWishListTitle names the list every user starts with.
const DefaultWishListTitle = "Хочу сделать"

// WishList is a tab of undated wishes.
type WishList struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string     `gorm:"type:varchar(36);index" json:"user_id"`
	Title     string     `json:"title"`
	IsDefault bool       `json:"is_default"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Items     []WishItem `gorm:"foreignKey:WishListID;constraint:OnDelete:CASCADE" json:"-"`
}

func (l *WishList) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// WishItem is a backlog entry that can be turned into a task.
type WishItem struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	WishListID  string    `gorm:"type:varchar(36);index" json:"wish_list_id"`
	UserID      string    `gorm:"type:varchar(36);index" json:"user_id"`
	Title       string    `json:"title"`
	Reason      string    `json:"reason"`
	IsCompleted bool      `gorm:"default:false" json:"is_completed"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (i *WishItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
