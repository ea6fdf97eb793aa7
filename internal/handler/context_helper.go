package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/diegocaceres21/saae-discount-api/internal/middleware"
	"github.com/diegocaceres21/saae-discount-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.Claims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.Claims)
	if !ok {
		return nil
	}
	return claims
}

func actorID(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.Subject
}
