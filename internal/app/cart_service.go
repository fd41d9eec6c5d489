package app

import (
	"math"

	"tienda-api/internal/model"
	"tienda-api/internal/repository"
)

const (
	MinCartQuantity = 1
	MaxCartQuantity = 99
)

type CartService struct {
	cartRepo    *repository.CartRepository
	productRepo *repository.ProductRepository
}

type CartLine struct {
	ID          uint    `json:"id"`
	VariantID   uint    `json:"variant_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	ProductSlug string  `json:"product_slug"`
	ImageURL    string  `json:"image_url"`
	Color       string  `json:"color"`
	Size        string  `json:"size"`
	Stock       int     `json:"stock"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	LineTotal   float64 `json:"line_total"`
	Available   bool    `json:"available"`
}

type CartView struct {
	ID        uint       `json:"id"`
	Items     []CartLine `json:"items"`
	ItemCount int        `json:"item_count"`
	Subtotal  float64    `json:"subtotal"`
}

func NewCartService(cartRepo *repository.CartRepository, productRepo *repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *CartService) Get(userID uint) (*CartView, error) {
	cart, err := s.cart(userID)
	if err != nil {
		return nil, err
	}
	return s.view(cart.ID)
}

// AddItem puts quantity units of the variant in the cart, merging with an
// existing line for the same variant.
func (s *CartService) AddItem(userID, variantID uint, quantity int) (*CartView, error) {
	if !validQuantity(quantity) {
		return nil, ErrInvalidInput
	}
	cart, err := s.cart(userID)
	if err != nil {
		return nil, err
	}
	variant, err := s.availableVariant(variantID)
	if err != nil {
		return nil, err
	}

	existing, err := s.cartRepo.GetItemByVariant(cart.ID, variantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		total := existing.Quantity + quantity
		if !validQuantity(total) {
			return nil, ErrInvalidInput
		}
		if total > variant.Stock {
			return nil, ErrInsufficientStock
		}
		if err := s.cartRepo.UpdateItemQuantity(existing.ID, total); err != nil {
			return nil, err
		}
		return s.view(cart.ID)
	}

	if quantity > variant.Stock {
		return nil, ErrInsufficientStock
	}
	if err := s.cartRepo.CreateItem(&model.CartItem{
		CartID:    cart.ID,
		VariantID: variantID,
		Quantity:  quantity,
	}); err != nil {
		return nil, err
	}
	return s.view(cart.ID)
}

func (s *CartService) UpdateItem(userID, itemID uint, quantity int) (*CartView, error) {
	if !validQuantity(quantity) {
		return nil, ErrInvalidInput
	}
	cart, err := s.cart(userID)
	if err != nil {
		return nil, err
	}
	item, err := s.cartRepo.GetItem(cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if quantity > item.Variant.Stock {
		return nil, ErrInsufficientStock
	}
	if err := s.cartRepo.UpdateItemQuantity(item.ID, quantity); err != nil {
		return nil, err
	}
	return s.view(cart.ID)
}

func (s *CartService) RemoveItem(userID, itemID uint) (*CartView, error) {
	cart, err := s.cart(userID)
	if err != nil {
		return nil, err
	}
	item, err := s.cartRepo.GetItem(cart.ID, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if err := s.cartRepo.DeleteItem(cart.ID, itemID); err != nil {
		return nil, err
	}
	return s.view(cart.ID)
}

func (s *CartService) Clear(userID uint) (*CartView, error) {
	cart, err := s.cart(userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.Clear(cart.ID); err != nil {
		return nil, err
	}
	return s.view(cart.ID)
}

func (s *CartService) cart(userID uint) (*model.Cart, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.cartRepo.GetOrCreateByUserID(userID)
}

func (s *CartService) availableVariant(variantID uint) (*model.ProductVariant, error) {
	variant, err := s.productRepo.GetVariant(variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil || variant.Product == nil {
		return nil, ErrVariantNotFound
	}
	if !variant.Product.IsActive {
		return nil, ErrProductInactive
	}
	return variant, nil
}

func (s *CartService) view(cartID uint) (*CartView, error) {
	items, err := s.cartRepo.ListItems(cartID)
	if err != nil {
		return nil, err
	}
	view := &CartView{ID: cartID, Items: make([]CartLine, 0, len(items))}
	for _, item := range items {
		line := CartLine{
			ID:        item.ID,
			VariantID: item.VariantID,
			Color:     item.Variant.Color,
			Size:      item.Variant.Size,
			Stock:     item.Variant.Stock,
			Quantity:  item.Quantity,
		}
		if p := item.Variant.Product; p != nil {
			line.ProductID = p.ID
			line.ProductName = p.Name
			line.ProductSlug = p.Slug
			line.ImageURL = p.ImageURL
			line.UnitPrice = roundMoney(p.Price)
			line.Available = p.IsActive && item.Quantity <= item.Variant.Stock
		}
		line.LineTotal = roundMoney(line.UnitPrice * float64(line.Quantity))
		view.Items = append(view.Items, line)
		view.ItemCount += line.Quantity
		view.Subtotal += line.LineTotal
	}
	view.Subtotal = roundMoney(view.Subtotal)
	return view, nil
}

func validQuantity(q int) bool {
	return q >= MinCartQuantity && q <= MaxCartQuantity
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
