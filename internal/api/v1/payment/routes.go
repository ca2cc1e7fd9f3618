package payment

import (
	"github.com/gin-gonic/gin"

	"github.com/HadisehPourali/delyar/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup) {
	h := NewHandler()

	// Gateway redirect callback is unauthenticated by nature.
	r.GET("/payment/verify", h.VerifyCallback)

	authed := r.Group("/payment")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/request", h.RequestPayment)
	}
}
