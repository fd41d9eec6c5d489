package repository_test

import (
	"testing"

	"tienda-api/internal/model"
	"tienda-api/internal/repository"
	"tienda-api/internal/testutil"
)

func newAddress(userID uint, recipient string, isDefault bool) *model.Address {
	return &model.Address{
		UserID:    userID,
		Recipient: recipient,
		Line1:     "Calle 10 # 20-30",
		City:      "Medellín",
		Country:   "CO",
		IsDefault: isDefault,
	}
}

func defaultIDs(t *testing.T, repo *repository.AddressRepository, userID uint) []uint {
	t.Helper()
	list, err := repo.ListByUserID(userID)
	if err != nil {
		t.Fatalf("ListByUserID err: %v", err)
	}
	var ids []uint
	for _, a := range list {
		if a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestSaveKeepsExactlyOneDefault(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAddressRepository(db)
	user := testutil.CreateUser(t, db, "ana")

	home := newAddress(user.ID, "Casa", false)
	if err := repo.Save(home); err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if !home.IsDefault {
		t.Fatalf("first address must become the default")
	}

	office := newAddress(user.ID, "Oficina", false)
	if err := repo.Save(office); err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if office.IsDefault {
		t.Fatalf("second address should not take the default")
	}

	home.IsDefault = false
	if err := repo.Save(home); err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if ids := defaultIDs(t, repo, user.ID); len(ids) != 1 || ids[0] != home.ID {
		t.Fatalf("clearing the only default must keep it, defaults=%v", ids)
	}

	office.IsDefault = true
	if err := repo.Save(office); err != nil {
		t.Fatalf("Save err: %v", err)
	}
	if ids := defaultIDs(t, repo, user.ID); len(ids) != 1 || ids[0] != office.ID {
		t.Fatalf("expected office as sole default, defaults=%v", ids)
	}
}

func TestDeleteDefaultPromotesOldest(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAddressRepository(db)
	user := testutil.CreateUser(t, db, "ana")

	first := newAddress(user.ID, "Casa", false)
	second := newAddress(user.ID, "Oficina", false)
	third := newAddress(user.ID, "Finca", true)
	for _, a := range []*model.Address{first, second, third} {
		if err := repo.Save(a); err != nil {
			t.Fatalf("Save err: %v", err)
		}
	}

	if err := repo.DeleteByIDAndUserID(third.ID, user.ID); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if ids := defaultIDs(t, repo, user.ID); len(ids) != 1 || ids[0] != first.ID {
		t.Fatalf("expected oldest address promoted, defaults=%v", ids)
	}
}
