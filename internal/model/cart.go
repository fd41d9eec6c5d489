package model

import "time"

type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Items     []CartItem `json:"items,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CartID    uint           `gorm:"not null;uniqueIndex:idx_cart_variant" json:"cart_id"`
	VariantID uint           `gorm:"not null;uniqueIndex:idx_cart_variant" json:"variant_id"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	Variant   ProductVariant `gorm:"foreignKey:VariantID" json:"variant"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
