package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/app"
	"tienda-api/internal/model"
	"tienda-api/internal/transport/http/middleware"
	"tienda-api/internal/transport/http/response"
)

type OrderHandler struct {
	orderService *app.OrderService
}

type PlaceOrderRequest struct {
	AddressID uint `json:"address_id" binding:"required,gt=0"`
}

func NewOrderHandler(orderService *app.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) Place(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, response.BindingErrors(err))
		return
	}

	order, err := h.orderService.Place(c.Request.Context(), userID, req.AddressID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrAddressNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.Is(err, app.ErrCartEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeCartEmpty, err.Error())
		case errors.Is(err, app.ErrInsufficientStock):
			response.Error(c, http.StatusConflict, response.CodeInsufficientStock, err.Error())
		case errors.Is(err, app.ErrCartChanged):
			response.Error(c, http.StatusConflict, response.CodeConflict, err.Error())
		case errors.Is(err, app.ErrProductInactive):
			response.Error(c, http.StatusConflict, response.CodeProductUnavailable, err.Error())
		default:
			middleware.Logger(c).WithError(err).Error("place order failed")
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "place order failed")
		}
		return
	}
	c.JSON(http.StatusCreated, response.APIResponse{Code: response.CodeOK, Message: "created", Data: order})
}

func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	orders, err := h.orderService.List(userID)
	if err != nil {
		middleware.Logger(c).WithError(err).Error("list orders failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list orders failed")
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	response.OK(c, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	order, err := h.orderService.Get(userID, c.Param("number"))
	if err != nil {
		if errors.Is(err, app.ErrOrderNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		middleware.Logger(c).WithError(err).Error("get order failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get order failed")
		return
	}
	response.OK(c, order)
}
