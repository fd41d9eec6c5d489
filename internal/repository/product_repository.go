package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"tienda-api/internal/model"
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

type ProductFilter struct {
	CategorySlug string
	Query        string
	Color        string
	Size         string
	MinPrice     *float64
	MaxPrice     *float64
	Sort         string
	Page         int
	PerPage      int
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(product *model.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("create product failed: %w", err)
	}
	return nil
}

// List returns one page of active products and the total number of matches.
func (r *ProductRepository) List(filter ProductFilter) ([]model.Product, int64, error) {
	query := r.db.Model(&model.Product{}).Where("products.is_active = ?", true)

	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		query = query.Where(`EXISTS (
			SELECT 1 FROM product_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.product_id = products.id AND c.slug = ?)`, slug)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		pattern := likePattern(q)
		query = query.Where("(LOWER(products.name) LIKE ? ESCAPE '!' OR LOWER(products.description) LIKE ? ESCAPE '!')", pattern, pattern)
	}
	if color := strings.ToLower(strings.TrimSpace(filter.Color)); color != "" {
		query = query.Where("EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND LOWER(v.color) = ?)", color)
	}
	if size := strings.ToLower(strings.TrimSpace(filter.Size)); size != "" {
		query = query.Where("EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND LOWER(v.size) = ?)", size)
	}
	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products failed: %w", err)
	}

	page, perPage := filter.Page, filter.PerPage
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 50 {
		perPage = 12
	}

	var products []model.Product
	if err := query.
		Preload("Categories").
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order(sortClause(filter.Sort)).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("list products failed: %w", err)
	}
	return products, total, nil
}

func (r *ProductRepository) GetActiveBySlug(slug string) (*model.Product, error) {
	var product model.Product
	err := r.db.
		Preload("Categories").
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product failed: %w", err)
	}
	return &product, nil
}

func (r *ProductRepository) ListActiveByCategoryID(categoryID uint, limit int) ([]model.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var products []model.Product
	err := r.db.
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Joins("JOIN product_categories pc ON pc.product_id = products.id").
		Where("pc.category_id = ? AND products.is_active = ?", categoryID, true).
		Order("products.id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list category products failed: %w", err)
	}
	return products, nil
}

// GetVariant loads a variant together with its product.
func (r *ProductRepository) GetVariant(variantID uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := r.db.Preload("Product").First(&variant, variantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant failed: %w", err)
	}
	return &variant, nil
}

// SearchActiveByTerms returns active products matching every term group. A
// product matches a group when any term of the group is a case-insensitive
// substring of its name, short description, description, one of its category
// names, or the color or size of one of its variants. Results are ordered by
// id so repeated searches over the same catalog agree.
func (r *ProductRepository) SearchActiveByTerms(groups [][]string, limit int) ([]model.Product, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}

	query := r.db.Model(&model.Product{}).Where("products.is_active = ?", true)
	for _, terms := range groups {
		clause, args := termGroupClause(terms)
		if clause == "" {
			continue
		}
		query = query.Where(clause, args...)
	}

	var products []model.Product
	err := query.
		Preload("Categories").
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("products.id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("search products failed: %w", err)
	}
	return products, nil
}

const termMatchSQL = `LOWER(products.name) LIKE ? ESCAPE '!'
	OR LOWER(products.short_description) LIKE ? ESCAPE '!'
	OR LOWER(products.description) LIKE ? ESCAPE '!'
	OR EXISTS (SELECT 1 FROM product_categories pc JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = products.id AND LOWER(c.name) LIKE ? ESCAPE '!')
	OR EXISTS (SELECT 1 FROM product_variants v
		WHERE v.product_id = products.id AND (LOWER(v.color) LIKE ? ESCAPE '!' OR LOWER(v.size) LIKE ? ESCAPE '!'))`

const termMatchArgs = 6

func termGroupClause(terms []string) (string, []interface{}) {
	parts := make([]string, 0, len(terms))
	args := make([]interface{}, 0, len(terms)*termMatchArgs)
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		pattern := likePattern(term)
		parts = append(parts, "("+termMatchSQL+")")
		for i := 0; i < termMatchArgs; i++ {
			args = append(args, pattern)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func sortClause(sort string) string {
	switch sort {
	case SortPriceAsc:
		return "products.price ASC, products.id ASC"
	case SortPriceDesc:
		return "products.price DESC, products.id ASC"
	case SortName:
		return "products.name ASC, products.id ASC"
	default:
		return "products.created_at DESC, products.id DESC"
	}
}
