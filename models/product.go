package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a menu item in the catalog. Orders snapshot its
// name/price/image at order time, so edits here never rewrite history.
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Price       float64        `gorm:"not null" json:"price"`
	Image       string         `gorm:"not null" json:"image"`
	Category    string         `gorm:"not null;default:'Main';index" json:"category"`
	Description string         `json:"description,omitempty"`
	Type        string         `json:"type"` // "veg", "non-veg" or ""
	Stock       int            `gorm:"default:0" json:"stock"`
	IsAvailable bool           `gorm:"default:true;index" json:"isAvailable"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
