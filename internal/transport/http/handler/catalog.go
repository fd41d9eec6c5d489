package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/app"
	"tienda-api/internal/repository"
	"tienda-api/internal/transport/http/middleware"
	"tienda-api/internal/transport/http/response"
)

type CatalogHandler struct {
	catalogService *app.CatalogService
}

type ProductListQuery struct {
	Category string   `form:"category" binding:"max=128"`
	Query    string   `form:"q" binding:"max=128"`
	Color    string   `form:"color" binding:"max=64"`
	Size     string   `form:"size" binding:"max=32"`
	MinPrice *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice *float64 `form:"max_price" binding:"omitempty,gte=0"`
	Sort     string   `form:"sort" binding:"omitempty,oneof=newest price_asc price_desc name"`
	Page     int      `form:"page" binding:"omitempty,gte=1"`
	PerPage  int      `form:"per_page" binding:"omitempty,gte=1,lte=50"`
}

func NewCatalogHandler(catalogService *app.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories()
	if err != nil {
		middleware.Logger(c).WithError(err).Error("list categories failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list categories failed")
		return
	}
	response.OK(c, categories)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	detail, err := h.catalogService.GetCategory(c.Param("slug"))
	if err != nil {
		if errors.Is(err, app.ErrCategoryNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		middleware.Logger(c).WithError(err).Error("get category failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get category failed")
		return
	}
	response.OK(c, detail)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var query ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ValidationFailed(c, response.BindingErrors(err))
		return
	}

	page, err := h.catalogService.ListProducts(repository.ProductFilter{
		CategorySlug: query.Category,
		Query:        query.Query,
		Color:        query.Color,
		Size:         query.Size,
		MinPrice:     query.MinPrice,
		MaxPrice:     query.MaxPrice,
		Sort:         query.Sort,
		Page:         query.Page,
		PerPage:      query.PerPage,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.ValidationFailed(c, map[string][]string{
				"min_price": {"El campo min_price no debe ser mayor que max_price."},
			})
			return
		}
		middleware.Logger(c).WithError(err).Error("list products failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list products failed")
		return
	}
	response.OK(c, page)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Param("slug"))
	if err != nil {
		if errors.Is(err, app.ErrProductNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		middleware.Logger(c).WithError(err).Error("get product failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get product failed")
		return
	}
	response.OK(c, product)
}
