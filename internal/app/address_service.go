package app

import (
	"strings"

	"tienda-api/internal/model"
	"tienda-api/internal/repository"
)

type AddressService struct {
	addressRepo *repository.AddressRepository
}

type AddressInput struct {
	Recipient  string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
	IsDefault  bool
}

func NewAddressService(addressRepo *repository.AddressRepository) *AddressService {
	return &AddressService{addressRepo: addressRepo}
}

func (s *AddressService) List(userID uint) ([]model.Address, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.addressRepo.ListByUserID(userID)
}

func (s *AddressService) Create(userID uint, input AddressInput) (*model.Address, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	address := &model.Address{UserID: userID}
	if err := applyAddressInput(address, input); err != nil {
		return nil, err
	}
	if err := s.addressRepo.Save(address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *AddressService) Update(userID, id uint, input AddressInput) (*model.Address, error) {
	address, err := s.get(userID, id)
	if err != nil {
		return nil, err
	}
	// a default address can only lose the flag by another one taking it
	wasDefault := address.IsDefault
	if err := applyAddressInput(address, input); err != nil {
		return nil, err
	}
	address.IsDefault = input.IsDefault || wasDefault
	if err := s.addressRepo.Save(address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *AddressService) Delete(userID, id uint) error {
	if _, err := s.get(userID, id); err != nil {
		return err
	}
	return s.addressRepo.DeleteByIDAndUserID(id, userID)
}

// Get returns an address owned by the user.
func (s *AddressService) Get(userID, id uint) (*model.Address, error) {
	return s.get(userID, id)
}

func (s *AddressService) get(userID, id uint) (*model.Address, error) {
	if userID == 0 || id == 0 {
		return nil, ErrAddressNotFound
	}
	address, err := s.addressRepo.GetByIDAndUserID(id, userID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func applyAddressInput(address *model.Address, input AddressInput) error {
	address.Recipient = strings.TrimSpace(input.Recipient)
	address.Line1 = strings.TrimSpace(input.Line1)
	address.Line2 = strings.TrimSpace(input.Line2)
	address.City = strings.TrimSpace(input.City)
	address.State = strings.TrimSpace(input.State)
	address.PostalCode = strings.TrimSpace(input.PostalCode)
	address.Country = strings.TrimSpace(input.Country)
	address.Phone = strings.TrimSpace(input.Phone)
	address.IsDefault = input.IsDefault
	if address.Recipient == "" || address.Line1 == "" || address.City == "" || address.Country == "" {
		return ErrInvalidInput
	}
	return nil
}

// formatShippingAddress renders the address snapshot stored on an order.
func formatShippingAddress(a *model.Address) string {
	lines := []string{a.Recipient, a.Line1}
	if a.Line2 != "" {
		lines = append(lines, a.Line2)
	}
	cityLine := a.City
	if a.State != "" {
		cityLine += ", " + a.State
	}
	if a.PostalCode != "" {
		cityLine += " " + a.PostalCode
	}
	lines = append(lines, cityLine, a.Country)
	if a.Phone != "" {
		lines = append(lines, "Tel: "+a.Phone)
	}
	return strings.Join(lines, "\n")
}
