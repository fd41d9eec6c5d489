package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tienda-api/internal/model"
	"tienda-api/internal/repository"
)

// OrderEventPublisher announces committed orders to downstream consumers.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *model.Order) error
}

type ShippingPolicy struct {
	Fee                   float64
	FreeShippingThreshold float64
}

// Cost returns the shipping charged for a subtotal. A zero threshold disables
// free shipping.
func (p ShippingPolicy) Cost(subtotal float64) float64 {
	if p.FreeShippingThreshold > 0 && subtotal >= p.FreeShippingThreshold {
		return 0
	}
	return roundMoney(p.Fee)
}

type OrderService struct {
	orderRepo   *repository.OrderRepository
	cartRepo    *repository.CartRepository
	addressRepo *repository.AddressRepository
	publisher   OrderEventPublisher
	shipping    ShippingPolicy
	logger      logrus.FieldLogger
}

func NewOrderService(
	orderRepo *repository.OrderRepository,
	cartRepo *repository.CartRepository,
	addressRepo *repository.AddressRepository,
	publisher OrderEventPublisher,
	shipping ShippingPolicy,
	logger logrus.FieldLogger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		publisher:   publisher,
		shipping:    shipping,
		logger:      logger,
	}
}

// Place turns the user's cart into a pending order shipped to addressID.
func (s *OrderService) Place(ctx context.Context, userID, addressID uint) (*model.Order, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	address, err := s.addressRepo.GetByIDAndUserID(addressID, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}

	cart, err := s.cartRepo.GetOrCreateByUserID(userID)
	if err != nil {
		return nil, err
	}
	lines, err := s.cartRepo.ListItems(cart.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	order := &model.Order{
		Number:          uuid.NewString(),
		UserID:          userID,
		Status:          model.OrderStatusPending,
		ShippingAddress: formatShippingAddress(address),
		Items:           make([]model.OrderItem, 0, len(lines)),
	}
	for _, line := range lines {
		product := line.Variant.Product
		if product == nil || !product.IsActive {
			return nil, ErrProductInactive
		}
		if line.Quantity > line.Variant.Stock {
			return nil, ErrInsufficientStock
		}
		unit := roundMoney(product.Price)
		item := model.OrderItem{
			ProductID:   product.ID,
			VariantID:   line.VariantID,
			ProductName: product.Name,
			Color:       line.Variant.Color,
			Size:        line.Variant.Size,
			UnitPrice:   unit,
			Quantity:    line.Quantity,
			LineTotal:   roundMoney(unit * float64(line.Quantity)),
		}
		order.Items = append(order.Items, item)
		order.Subtotal += item.LineTotal
	}
	order.Subtotal = roundMoney(order.Subtotal)
	order.ShippingCost = s.shipping.Cost(order.Subtotal)
	order.Total = roundMoney(order.Subtotal + order.ShippingCost)

	if err := s.orderRepo.PlaceFromCart(order, lines); err != nil {
		switch {
		case errors.Is(err, repository.ErrStockConflict):
			return nil, ErrInsufficientStock
		case errors.Is(err, repository.ErrCartChanged):
			return nil, ErrCartChanged
		}
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{"order_id": order.ID, "order_number": order.Number})
	log.Info("order placed")
	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
			log.WithError(err).Error("publish order placed event failed")
		}
	}
	return order, nil
}

func (s *OrderService) List(userID uint) ([]model.Order, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.orderRepo.ListByUserID(userID)
}

func (s *OrderService) Get(userID uint, number string) (*model.Order, error) {
	number = strings.TrimSpace(number)
	if userID == 0 || number == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByNumberAndUserID(number, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Confirm moves a pending order to confirmed. It reports false when the
// order is unknown or already past pending.
func (s *OrderService) Confirm(orderID uint) (bool, error) {
	return s.orderRepo.TransitionStatus(orderID, model.OrderStatusPending, model.OrderStatusConfirmed)
}
