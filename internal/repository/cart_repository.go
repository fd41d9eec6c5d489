package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tienda-api/internal/model"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetOrCreateByUserID returns the user's cart, creating it on first use.
func (r *CartRepository) GetOrCreateByUserID(userID uint) (*model.Cart, error) {
	cart := &model.Cart{UserID: userID}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(cart).Error; err != nil {
		return nil, fmt.Errorf("create cart failed: %w", err)
	}
	var existing model.Cart
	if err := r.db.Where("user_id = ?", userID).First(&existing).Error; err != nil {
		return nil, fmt.Errorf("get cart failed: %w", err)
	}
	return &existing, nil
}

// ListItems loads the cart lines with their variant and product, oldest first.
func (r *CartRepository) ListItems(cartID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.
		Preload("Variant.Product").
		Where("cart_id = ?", cartID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list cart items failed: %w", err)
	}
	return items, nil
}

func (r *CartRepository) GetItem(cartID, itemID uint) (*model.CartItem, error) {
	return r.firstItem("cart_id = ? AND id = ?", cartID, itemID)
}

func (r *CartRepository) GetItemByVariant(cartID, variantID uint) (*model.CartItem, error) {
	return r.firstItem("cart_id = ? AND variant_id = ?", cartID, variantID)
}

func (r *CartRepository) CreateItem(item *model.CartItem) error {
	if err := r.db.Omit("Variant").Create(item).Error; err != nil {
		return fmt.Errorf("create cart item failed: %w", err)
	}
	return nil
}

func (r *CartRepository) UpdateItemQuantity(itemID uint, quantity int) error {
	if err := r.db.Model(&model.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity).Error; err != nil {
		return fmt.Errorf("update cart item failed: %w", err)
	}
	return nil
}

func (r *CartRepository) DeleteItem(cartID, itemID uint) error {
	if err := r.db.Where("cart_id = ? AND id = ?", cartID, itemID).Delete(&model.CartItem{}).Error; err != nil {
		return fmt.Errorf("delete cart item failed: %w", err)
	}
	return nil
}

func (r *CartRepository) Clear(cartID uint) error {
	if err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		return fmt.Errorf("clear cart failed: %w", err)
	}
	return nil
}

func (r *CartRepository) firstItem(query string, args ...interface{}) (*model.CartItem, error) {
	var item model.CartItem
	if err := r.db.Preload("Variant.Product").Where(query, args...).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart item failed: %w", err)
	}
	return &item, nil
}
