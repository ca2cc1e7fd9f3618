package user

import (
	"github.com/gin-gonic/gin"

	"github.com/HadisehPourali/delyar/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup) {
	h := NewHandler()

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/user/profile", h.GetProfile)
		authed.PUT("/user/profile", h.UpdateProfile)
		authed.POST("/feedback", h.AddFeedback)
	}
}
