package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"tienda-api/internal/logging"
	"tienda-api/internal/model"
	"tienda-api/internal/repository"
	"tienda-api/internal/testutil"
)

type recordingPublisher struct {
	orders []string
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, order *model.Order) error {
	p.orders = append(p.orders, order.Number)
	return p.err
}

type storefront struct {
	db        *gorm.DB
	addresses *AddressService
	carts     *CartService
	orders    *OrderService
	publisher *recordingPublisher
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	db := testutil.NewDB(t)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	publisher := &recordingPublisher{}
	return &storefront{
		db:        db,
		addresses: NewAddressService(addressRepo),
		carts:     NewCartService(cartRepo, productRepo),
		orders: NewOrderService(
			repository.NewOrderRepository(db),
			cartRepo,
			addressRepo,
			publisher,
			ShippingPolicy{Fee: 5000, FreeShippingThreshold: 150000},
			logging.Discard(),
		),
		publisher: publisher,
	}
}

func validAddress(recipient string, isDefault bool) AddressInput {
	return AddressInput{
		Recipient: recipient,
		Line1:     "Calle 10 # 20-30",
		City:      "Bogotá",
		State:     "Cundinamarca",
		Country:   "CO",
		Phone:     "3001234567",
		IsDefault: isDefault,
	}
}

func TestAddressDefaultIsUnique(t *testing.T) {
	s := newStorefront(t)
	user := testutil.CreateUser(t, s.db, "ana")

	home, err := s.addresses.Create(user.ID, validAddress("Casa", false))
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if !home.IsDefault {
		t.Fatalf("first address must become the default")
	}

	office, err := s.addresses.Create(user.ID, validAddress("Oficina", true))
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	list, _ := s.addresses.List(user.ID)
	defaults := 0
	for _, a := range list {
		if a.IsDefault {
			defaults++
			if a.ID != office.ID {
				t.Fatalf("expected office to be default")
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default, got %d", defaults)
	}

	if err := s.addresses.Delete(user.ID, office.ID); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	remaining, err := s.addresses.Get(user.ID, home.ID)
	if err != nil || !remaining.IsDefault {
		t.Fatalf("remaining address should be promoted: %+v %v", remaining, err)
	}

	other := testutil.CreateUser(t, s.db, "bruno")
	if _, err := s.addresses.Update(other.ID, home.ID, validAddress("X", false)); !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("expected ErrAddressNotFound for foreign address, got %v", err)
	}
	if _, err := s.addresses.Create(user.ID, AddressInput{Recipient: "sin calle"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCartAddMergesAndValidates(t *testing.T) {
	s := newStorefront(t)
	user := testutil.CreateUser(t, s.db, "ana")
	shirt := testutil.CreateProduct(t, s.db, testutil.ProductSpec{
		Name:     "Camisa Lino",
		Price:    19999.99,
		Variants: []model.ProductVariant{{Color: "Blanco", Size: "M", Stock: 5}},
	})
	hidden := testutil.CreateProduct(t, s.db, testutil.ProductSpec{
		Name:     "Camisa Retirada",
		Price:    10000,
		Inactive: true,
		Variants: []model.ProductVariant{{Color: "Gris", Size: "M", Stock: 5}},
	})
	variantID := shirt.Variants[0].ID

	if _, err := s.carts.AddItem(user.ID, variantID, 2); err != nil {
		t.Fatalf("AddItem err: %v", err)
	}
	view, err := s.carts.AddItem(user.ID, variantID, 1)
	if err != nil {
		t.Fatalf("AddItem err: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 3 || view.ItemCount != 3 {
		t.Fatalf("expected a single merged line of 3, got %+v", view)
	}
	if view.Subtotal != 59999.97 || view.Items[0].LineTotal != 59999.97 {
		t.Fatalf("unexpected totals: %+v", view)
	}

	if _, err := s.carts.AddItem(user.ID, variantID, 3); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if _, err := s.carts.AddItem(user.ID, variantID, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.carts.AddItem(user.ID, hidden.Variants[0].ID, 1); !errors.Is(err, ErrProductInactive) {
		t.Fatalf("expected ErrProductInactive, got %v", err)
	}
	if _, err := s.carts.AddItem(user.ID, 9999, 1); !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound, got %v", err)
	}

	itemID := view.Items[0].ID
	view, err = s.carts.UpdateItem(user.ID, itemID, 1)
	if err != nil || view.Items[0].Quantity != 1 {
		t.Fatalf("UpdateItem: %+v %v", view, err)
	}
	other := testutil.CreateUser(t, s.db, "bruno")
	if _, err := s.carts.RemoveItem(other.ID, itemID); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}
	view, err = s.carts.RemoveItem(user.ID, itemID)
	if err != nil || len(view.Items) != 0 || view.Subtotal != 0 {
		t.Fatalf("RemoveItem: %+v %v", view, err)
	}
}

func TestPlaceOrder(t *testing.T) {
	s := newStorefront(t)
	user := testutil.CreateUser(t, s.db, "ana")
	address, err := s.addresses.Create(user.ID, validAddress("Ana Pérez", true))
	if err != nil {
		t.Fatalf("Create address: %v", err)
	}
	dress := testutil.CreateProduct(t, s.db, testutil.ProductSpec{
		Name:     "Vestido Midi",
		Price:    45000,
		Variants: []model.ProductVariant{{Color: "Rojo", Size: "M", Stock: 4}},
	})
	variantID := dress.Variants[0].ID

	if _, err := s.orders.Place(context.Background(), user.ID, address.ID); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got %v", err)
	}

	if _, err := s.carts.AddItem(user.ID, variantID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	order, err := s.orders.Place(context.Background(), user.ID, address.ID)
	if err != nil {
		t.Fatalf("Place err: %v", err)
	}
	if order.Status != model.OrderStatusPending || len(order.Number) != 36 {
		t.Fatalf("unexpected order header: %+v", order)
	}
	if order.Subtotal != 90000 || order.ShippingCost != 5000 || order.Total != 95000 {
		t.Fatalf("unexpected totals: %+v", order)
	}
	if !strings.Contains(order.ShippingAddress, "Ana Pérez") || !strings.Contains(order.ShippingAddress, "Bogotá, Cundinamarca") {
		t.Fatalf("unexpected address snapshot: %q", order.ShippingAddress)
	}
	if len(s.publisher.orders) != 1 || s.publisher.orders[0] != order.Number {
		t.Fatalf("expected order event, got %v", s.publisher.orders)
	}

	var variant model.ProductVariant
	s.db.First(&variant, variantID)
	if variant.Stock != 2 {
		t.Fatalf("expected stock 2 after order, got %d", variant.Stock)
	}
	cart, _ := s.carts.Get(user.ID)
	if len(cart.Items) != 0 {
		t.Fatalf("cart should be empty after placing the order")
	}

	// catalog edits do not touch placed orders
	s.db.Model(&model.Product{}).Where("id = ?", dress.ID).Update("price", 1)
	stored, err := s.orders.Get(user.ID, order.Number)
	if err != nil || stored.Items[0].UnitPrice != 45000 || stored.Items[0].ProductName != "Vestido Midi" {
		t.Fatalf("unexpected stored order: %+v %v", stored, err)
	}

	other := testutil.CreateUser(t, s.db, "bruno")
	if _, err := s.orders.Get(other.ID, order.Number); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign order, got %v", err)
	}

	ok, err := s.orders.Confirm(order.ID)
	if err != nil || !ok {
		t.Fatalf("Confirm: %v %v", ok, err)
	}
	ok, err = s.orders.Confirm(order.ID)
	if err != nil || ok {
		t.Fatalf("second Confirm must be a no-op: %v %v", ok, err)
	}
}

func TestPlaceOrderFreeShippingAndPublishFailure(t *testing.T) {
	s := newStorefront(t)
	s.publisher.err = errors.New("broker down")
	user := testutil.CreateUser(t, s.db, "ana")
	address, _ := s.addresses.Create(user.ID, validAddress("Ana", false))
	coat := testutil.CreateProduct(t, s.db, testutil.ProductSpec{
		Name:     "Abrigo Lana",
		Price:    160000,
		Variants: []model.ProductVariant{{Color: "Camel", Size: "L", Stock: 1}},
	})
	if _, err := s.carts.AddItem(user.ID, coat.Variants[0].ID, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	order, err := s.orders.Place(context.Background(), user.ID, address.ID)
	if err != nil {
		t.Fatalf("publish failures must not fail the order: %v", err)
	}
	if order.ShippingCost != 0 || order.Total != 160000 {
		t.Fatalf("expected free shipping, got %+v", order)
	}
}

func TestPlaceOrderStockChangedMeanwhile(t *testing.T) {
	s := newStorefront(t)
	user := testutil.CreateUser(t, s.db, "ana")
	address, _ := s.addresses.Create(user.ID, validAddress("Ana", false))
	skirt := testutil.CreateProduct(t, s.db, testutil.ProductSpec{
		Name:     "Falda Plisada",
		Price:    30000,
		Variants: []model.ProductVariant{{Color: "Verde", Size: "S", Stock: 2}},
	})
	if _, err := s.carts.AddItem(user.ID, skirt.Variants[0].ID, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	s.db.Model(&model.ProductVariant{}).Where("id = ?", skirt.Variants[0].ID).Update("stock", 1)

	if _, err := s.orders.Place(context.Background(), user.ID, address.ID); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	var count int64
	s.db.Model(&model.Order{}).Count(&count)
	if count != 0 {
		t.Fatalf("no order may be stored when stock is short")
	}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewAuthService(repository.NewUserRepository(db), "secret", time.Hour, logging.Discard())

	result, err := svc.Register(RegisterInput{Username: "ana", Email: "Ana@Example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Register err: %v", err)
	}
	if result.Token == "" || result.User.Email != "ana@example.com" {
		t.Fatalf("unexpected register result: %+v", result)
	}

	if _, err := svc.Register(RegisterInput{Username: "ana", Email: "other@example.com", Password: "supersecret"}); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
	if _, err := svc.Register(RegisterInput{Username: "otra", Email: "ana@example.com", Password: "supersecret"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if _, err := svc.Register(RegisterInput{Username: "corta", Email: "c@example.com", Password: "short"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if _, err := svc.Login(LoginInput{Login: "ANA@example.com", Password: "supersecret"}); err != nil {
		t.Fatalf("login by email: %v", err)
	}
	if _, err := svc.Login(LoginInput{Login: "ana", Password: "supersecret"}); err != nil {
		t.Fatalf("login by username: %v", err)
	}
	if _, err := svc.Login(LoginInput{Login: "ana", Password: "wrongpassword"}); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}
