package model

import "time"

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Slug      string    `gorm:"size:128;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	Name             string           `gorm:"size:255;not null" json:"name"`
	Slug             string           `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	ShortDescription string           `gorm:"size:512" json:"short_description"`
	Description      string           `gorm:"type:text" json:"description"`
	Price            float64          `gorm:"not null" json:"price"`
	ImageURL         string           `gorm:"size:512" json:"image_url"`
	IsActive         bool             `gorm:"not null;index" json:"is_active"`
	Categories       []Category       `gorm:"many2many:product_categories" json:"categories,omitempty"`
	Variants         []ProductVariant `json:"variants,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type ProductVariant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	SKU       string    `gorm:"size:64;uniqueIndex" json:"sku"`
	Color     string    `gorm:"size:64" json:"color"`
	Size      string    `gorm:"size:32" json:"size"`
	Stock     int       `gorm:"not null;default:0" json:"stock"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
