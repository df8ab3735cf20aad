package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/response"
)

// managerRoles may look at every cashier's invoices
var managerRoles = map[string]bool{
	"manager":     true,
	"admin":       true,
	"super-admin": true,
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserRoles extracts the user roles from the Gin context
func GetUserRoles(c *gin.Context) []string {
	roles, exists := c.Get("user_roles")
	if !exists {
		return nil
	}
	list, _ := roles.([]string)
	return list
}

// IsManager checks if the user holds a role that oversees all tills
func IsManager(c *gin.Context) bool {
	for _, role := range GetUserRoles(c) {
		if managerRoles[role] {
			return true
		}
	}
	return false
}

// cashierID returns the authenticated cashier or writes a 401
func cashierID(c *gin.Context) (uuid.UUID, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return uuid.Nil, false
	}
	return *userID, true
}
