package model

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatSession is a conversation thread. Token is the only identity a guest has.
type ChatSession struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         *uint     `gorm:"index" json:"user_id"`
	Token          string    `gorm:"size:64;not null;uniqueIndex" json:"token"`
	LastActivityAt time.Time `gorm:"not null;index" json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ChatMessage struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ChatSessionID  uint      `gorm:"not null;index" json:"session_id"`
	Role           string    `gorm:"size:16;not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	IsProductQuery bool      `gorm:"not null" json:"is_product_query"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Address{},
		&Category{},
		&Product{},
		&ProductVariant{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&ChatSession{},
		&ChatMessage{},
	}
}
