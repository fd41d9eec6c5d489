package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tienda-api/internal/model"
)

type AddressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) ListByUserID(userID uint) ([]model.Address, error) {
	var list []model.Address
	if err := r.db.Where("user_id = ?", userID).Order("is_default DESC, id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list addresses failed: %w", err)
	}
	return list, nil
}

func (r *AddressRepository) GetByIDAndUserID(id, userID uint) (*model.Address, error) {
	var address model.Address
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get address failed: %w", err)
	}
	return &address, nil
}

// Save creates or updates the address. When it is the default, every other
// address of the same user loses the flag in the same transaction. A user
// with addresses always has exactly one default, so an address cannot drop
// the flag unless another address already holds it.
func (r *AddressRepository) Save(address *model.Address) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if !address.IsDefault {
			var otherDefaults int64
			if err := tx.Model(&model.Address{}).
				Where("user_id = ? AND id <> ? AND is_default = ?", address.UserID, address.ID, true).
				Count(&otherDefaults).Error; err != nil {
				return err
			}
			if otherDefaults == 0 {
				address.IsDefault = true
			}
		}
		if err := tx.Save(address).Error; err != nil {
			return err
		}
		if address.IsDefault {
			return tx.Model(&model.Address{}).
				Where("user_id = ? AND id <> ?", address.UserID, address.ID).
				Update("is_default", false).Error
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save address failed: %w", err)
	}
	return nil
}

// DeleteByIDAndUserID removes the address. When it was the default, the
// oldest remaining address of the user takes over.
func (r *AddressRepository) DeleteByIDAndUserID(id, userID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var address model.Address
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Delete(&address).Error; err != nil {
			return err
		}
		if !address.IsDefault {
			return nil
		}
		var next model.Address
		err := tx.Where("user_id = ?", userID).Order("id ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
	if err != nil {
		return fmt.Errorf("delete address failed: %w", err)
	}
	return nil
}
