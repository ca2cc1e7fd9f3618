package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/HadisehPourali/delyar/internal/models"
)

// CurrentUser pulls the authenticated user placed by the auth middleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	raw, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := raw.(*models.User)
	return user, ok
}
