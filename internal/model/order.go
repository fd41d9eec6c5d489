package model

import "time"

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
)

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Number          string      `gorm:"size:36;not null;uniqueIndex" json:"number"`
	UserID          uint        `gorm:"not null;index" json:"user_id"`
	Status          string      `gorm:"size:16;not null;index" json:"status"`
	ShippingAddress string      `gorm:"type:text;not null" json:"shipping_address"`
	Subtotal        float64     `gorm:"not null" json:"subtotal"`
	ShippingCost    float64     `gorm:"not null" json:"shipping_cost"`
	Total           float64     `gorm:"not null" json:"total"`
	Items           []OrderItem `json:"items,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem snapshots the product at purchase time; later catalog edits do not
// change placed orders.
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	ProductID   uint      `gorm:"not null;index" json:"product_id"`
	VariantID   uint      `gorm:"not null" json:"variant_id"`
	ProductName string    `gorm:"size:255;not null" json:"product_name"`
	Color       string    `gorm:"size:64" json:"color"`
	Size        string    `gorm:"size:32" json:"size"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	LineTotal   float64   `gorm:"not null" json:"line_total"`
	CreatedAt   time.Time `json:"created_at"`
}
