package app

import (
	"strings"

	"tienda-api/internal/model"
	"tienda-api/internal/repository"
)

const (
	defaultPerPage = 12
	maxPerPage     = 50
)

type CatalogService struct {
	categoryRepo *repository.CategoryRepository
	productRepo  *repository.ProductRepository
}

type CategoryDetail struct {
	Category model.Category  `json:"category"`
	Products []model.Product `json:"products"`
}

type ProductPage struct {
	Items   []model.Product `json:"items"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

func NewCatalogService(categoryRepo *repository.CategoryRepository, productRepo *repository.ProductRepository) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

func (s *CatalogService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.List()
}

func (s *CatalogService) GetCategory(slug string) (*CategoryDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrCategoryNotFound
	}
	category, err := s.categoryRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	products, err := s.productRepo.ListActiveByCategoryID(category.ID, 0)
	if err != nil {
		return nil, err
	}
	return &CategoryDetail{Category: *category, Products: products}, nil
}

func (s *CatalogService) ListProducts(filter repository.ProductFilter) (*ProductPage, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, ErrInvalidInput
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = defaultPerPage
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}

	items, total, err := s.productRepo.List(filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Product{}
	}
	return &ProductPage{
		Items:   items,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}, nil
}

func (s *CatalogService) GetProduct(slug string) (*model.Product, error) {
	product, err := s.productRepo.GetActiveBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}
