package chat

import (
	"github.com/gin-gonic/gin"

	"github.com/HadisehPourali/delyar/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, root *gin.Engine) {
	h := NewHandler()

	authed := r.Group("/chat")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/check-access", h.CheckAccess)
		authed.POST("/start-session", h.StartSession)
		authed.POST("/purchase-session", h.PurchaseSession)
		authed.GET("/sessions", h.ListSessions)
		authed.GET("/sessions/:id", h.GetSession)
	}

	// Legacy top-level proxy paths the web client still calls.
	root.POST("/create-session", middleware.AuthMiddleware(), h.CreateSession)
	root.POST("/respond", middleware.AuthMiddleware(), h.Respond)
}
