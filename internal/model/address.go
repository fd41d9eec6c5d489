package model

import "time"

type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Recipient  string    `gorm:"size:128;not null" json:"recipient"`
	Line1      string    `gorm:"size:255;not null" json:"line1"`
	Line2      string    `gorm:"size:255" json:"line2"`
	City       string    `gorm:"size:128;not null" json:"city"`
	State      string    `gorm:"size:128" json:"state"`
	PostalCode string    `gorm:"size:32" json:"postal_code"`
	Country    string    `gorm:"size:64;not null" json:"country"`
	Phone      string    `gorm:"size:32" json:"phone"`
	IsDefault  bool      `gorm:"not null" json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
