package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCategoryName is given to the category every user starts with.
const DefaultCategoryName = "Общее"

// CategoryColors is the palette a category color must come from.
var CategoryColors = []string{
	"#6B7280", "#EF4444", "#F97316", "#F59E0B", "#EAB308", "#84CC16", "#22C55E",
	"#14B8A6", "#06B6D4", "#3B82F6", "#6366F1", "#8B5CF6", "#A855F7", "#EC4899",
}

// DefaultCategoryColor is the gray at the head of the palette.
const DefaultCategoryColor = "#6B7280"

// Category groups tasks and routines under a colored label.
type Category struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);index:idx_user_category_name,unique" json:"user_id"`
	Name      string    `gorm:"index:idx_user_category_name,unique" json:"name"`
	Color     string    `gorm:"type:varchar(7)" json:"color"`
	SortOrder int       `json:"sort_order"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ValidColor reports whether color is part of the palette.
func ValidColor(color string) bool {
	for _, c := range CategoryColors {
		if strings.EqualFold(c, color) {
			return true
		}
	}
	return false
}
