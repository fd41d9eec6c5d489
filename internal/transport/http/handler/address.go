package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/app"
	"tienda-api/internal/transport/http/middleware"
	"tienda-api/internal/transport/http/response"
)

type AddressHandler struct {
	addressService *app.AddressService
}

type AddressRequest struct {
	Recipient  string `json:"recipient" binding:"required,max=128"`
	Line1      string `json:"line1" binding:"required,max=255"`
	Line2      string `json:"line2" binding:"max=255"`
	City       string `json:"city" binding:"required,max=128"`
	State      string `json:"state" binding:"max=128"`
	PostalCode string `json:"postal_code" binding:"max=32"`
	Country    string `json:"country" binding:"required,max=64"`
	Phone      string `json:"phone" binding:"max=32"`
	IsDefault  bool   `json:"is_default"`
}

func (r AddressRequest) input() app.AddressInput {
	return app.AddressInput{
		Recipient:  r.Recipient,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Phone:      r.Phone,
		IsDefault:  r.IsDefault,
	}
}

func NewAddressHandler(addressService *app.AddressService) *AddressHandler {
	return &AddressHandler{addressService: addressService}
}

func (h *AddressHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	list, err := h.addressService.List(userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, list)
}

func (h *AddressHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, response.BindingErrors(err))
		return
	}
	address, err := h.addressService.Create(userID, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, address)
}

func (h *AddressHandler) Update(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid address id")
		return
	}
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, response.BindingErrors(err))
		return
	}
	address, err := h.addressService.Update(userID, id, req.input())
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, address)
}

func (h *AddressHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid address id")
		return
	}
	if err := h.addressService.Delete(userID, id); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

func (h *AddressHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrAddressNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		middleware.Logger(c).WithError(err).Error("address operation failed")
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "address operation failed")
	}
}
