package stt

import (
	"github.com/gin-gonic/gin"

	"github.com/HadisehPourali/delyar/internal/middleware"
	sttclient "github.com/HadisehPourali/delyar/internal/upstream/stt"
)

func RegisterRoutes(r *gin.RouterGroup, client *sttclient.Client) {
	h := NewHandler(client)

	authed := r.Group("/stt")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/transcribe", h.Transcribe)
	}
}
