package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tienda-api/internal/model"
)

// ErrStockConflict is returned when a guarded stock decrement finds fewer
// units than the order line needs.
var ErrStockConflict = errors.New("variant stock changed")

// ErrCartChanged is returned when a cart line was removed or its quantity
// edited after the order was built from it.
var ErrCartChanged = errors.New("cart changed while placing order")

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// PlaceFromCart persists the order and its items, decrements the stock of
// every ordered variant and removes the cart lines the order was built from,
// all in one transaction. Lines added to the cart meanwhile are left alone.
func (r *OrderRepository) PlaceFromCart(order *model.Order, lines []model.CartItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("create order failed: %w", err)
		}
		for _, item := range order.Items {
			res := tx.Model(&model.ProductVariant{}).
				Where("id = ? AND stock >= ?", item.VariantID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("decrement stock failed: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("variant %d: %w", item.VariantID, ErrStockConflict)
			}
		}
		for _, line := range lines {
			res := tx.Where("id = ? AND cart_id = ? AND quantity = ?", line.ID, line.CartID, line.Quantity).
				Delete(&model.CartItem{})
			if res.Error != nil {
				return fmt.Errorf("remove ordered cart item failed: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("cart item %d: %w", line.ID, ErrCartChanged)
			}
		}
		return nil
	})
}

func (r *OrderRepository) ListByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := r.db.Preload("Items").Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders failed: %w", err)
	}
	return orders, nil
}

func (r *OrderRepository) GetByNumberAndUserID(number string, userID uint) (*model.Order, error) {
	var order model.Order
	if err := r.db.Preload("Items").Where("number = ? AND user_id = ?", number, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order failed: %w", err)
	}
	return &order, nil
}

// TransitionStatus moves the order from one status to another and reports
// whether a row changed. A second call with the same arguments is a no-op.
func (r *OrderRepository) TransitionStatus(id uint, from, to string) (bool, error) {
	res := r.db.Model(&model.Order{}).Where("id = ? AND status = ?", id, from).Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("update order status failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
