package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tienda-api/internal/model"
)

type ChatSessionRepository struct {
	db *gorm.DB
}

func NewChatSessionRepository(db *gorm.DB) *ChatSessionRepository {
	return &ChatSessionRepository{db: db}
}

// TouchByToken upserts the session keyed by token and stamps its last
// activity. A missing user id is backfilled when userID is given; an existing
// owner is never replaced or cleared. Concurrent callers with the same token
// converge on one row through the unique index on token.
func (r *ChatSessionRepository) TouchByToken(token string, userID *uint, now time.Time) (*model.ChatSession, error) {
	session := &model.ChatSession{
		Token:          token,
		UserID:         userID,
		LastActivityAt: now,
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "token"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_activity_at": now,
				"updated_at":       now,
			}),
		}).Create(session).Error; err != nil {
			return fmt.Errorf("upsert chat session failed: %w", err)
		}
		if userID != nil {
			if err := tx.Model(&model.ChatSession{}).
				Where("token = ? AND user_id IS NULL", token).
				Update("user_id", *userID).Error; err != nil {
				return fmt.Errorf("backfill chat session user failed: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stored, err := r.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("chat session %q vanished after upsert", token)
	}
	return stored, nil
}

func (r *ChatSessionRepository) GetByToken(token string) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat session failed: %w", err)
	}
	return &session, nil
}

// LatestByUserID returns the user's most recently active session.
func (r *ChatSessionRepository) LatestByUserID(userID uint) (*model.ChatSession, error) {
	var session model.ChatSession
	err := r.db.Where("user_id = ?", userID).
		Order("last_activity_at DESC, id DESC").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest chat session failed: %w", err)
	}
	return &session, nil
}
