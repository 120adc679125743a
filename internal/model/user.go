package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the owner of every other record. It doubles as the profile.
type User struct {
	ID               string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	TelegramID       *int64    `gorm:"uniqueIndex" json:"telegram_id,omitempty"`
	Email            *string   `gorm:"type:varchar(255);uniqueIndex" json:"email,omitempty"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Username         string    `json:"username"`
	NotificationTime string    `gorm:"type:varchar(5)" json:"notification_time"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
