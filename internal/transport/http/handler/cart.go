package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/app"
	"tienda-api/internal/transport/http/middleware"
	"tienda-api/internal/transport/http/response"
)

type CartHandler struct {
	cartService *app.CartService
}

type AddCartItemRequest struct {
	VariantID uint `json:"variant_id" binding:"required,gt=0"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=99"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=99"`
}

func NewCartHandler(cartService *app.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	view, err := h.cartService.Get(userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, view)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, response.BindingErrors(err))
		return
	}
	view, err := h.cartService.AddItem(userID, req.VariantID, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, view)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid cart item id")
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, response.BindingErrors(err))
		return
	}
	view, err := h.cartService.UpdateItem(userID, itemID, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, view)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid cart item id")
		return
	}
	view, err := h.cartService.RemoveItem(userID, itemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, view)
}

func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	view, err := h.cartService.Clear(userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, view)
}

func (h *CartHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrVariantNotFound), errors.Is(err, app.ErrCartItemNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, app.ErrProductInactive):
		response.Error(c, http.StatusConflict, response.CodeProductUnavailable, err.Error())
	case errors.Is(err, app.ErrInsufficientStock):
		response.Error(c, http.StatusConflict, response.CodeInsufficientStock, err.Error())
	default:
		middleware.Logger(c).WithError(err).Error("cart operation failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "cart operation failed")
	}
}
