package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"tienda-api/internal/transport/http/middleware"
)

func getUserIDFromContext(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok && userID != 0
}

// optionalUserID is nil for guests.
func optionalUserID(c *gin.Context) *uint {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return nil
	}
	return &userID
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
