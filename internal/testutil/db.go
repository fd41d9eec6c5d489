// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"tienda-api/internal/model"
	"tienda-api/internal/platform/sqlite"
)

// NewDB returns a migrated in-memory database that lives for the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.New(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// ProductSpec describes a product fixture.
type ProductSpec struct {
	Name             string
	ShortDescription string
	Description      string
	Price            float64
	Inactive         bool
	Categories       []string
	Variants         []model.ProductVariant
}

// CreateProduct inserts a product with its categories and variants.
func CreateProduct(t *testing.T, db *gorm.DB, spec ProductSpec) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:             spec.Name,
		Slug:             slugify(spec.Name),
		ShortDescription: spec.ShortDescription,
		Description:      spec.Description,
		Price:            spec.Price,
		IsActive:         !spec.Inactive,
		Variants:         spec.Variants,
	}
	for _, name := range spec.Categories {
		category := model.Category{Name: name, Slug: slugify(name)}
		if err := db.Where(model.Category{Slug: category.Slug}).FirstOrCreate(&category).Error; err != nil {
			t.Fatalf("create category %s: %v", name, err)
		}
		product.Categories = append(product.Categories, category)
	}
	for i := range product.Variants {
		if product.Variants[i].SKU == "" {
			product.Variants[i].SKU = product.Slug + "-" + slugify(product.Variants[i].Color+"-"+product.Variants[i].Size)
		}
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product %s: %v", spec.Name, err)
	}
	return product
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func slugify(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		}
	}
	return string(out)
}
