package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/HadisehPourali/delyar/config"
	"github.com/HadisehPourali/delyar/internal/api/v1/auth"
	"github.com/HadisehPourali/delyar/internal/api/v1/chat"
	"github.com/HadisehPourali/delyar/internal/api/v1/payment"
	"github.com/HadisehPourali/delyar/internal/api/v1/stt"
	"github.com/HadisehPourali/delyar/internal/api/v1/user"
	"github.com/HadisehPourali/delyar/internal/database"
	"github.com/HadisehPourali/delyar/internal/middleware"
	"github.com/HadisehPourali/delyar/internal/services"
	"github.com/HadisehPourali/delyar/internal/upstream/metis"
	"github.com/HadisehPourali/delyar/internal/upstream/sms"
	sttclient "github.com/HadisehPourali/delyar/internal/upstream/stt"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if _, err := database.Connect(cfg.DSN()); err != nil {
		return nil, err
	}
	if err := database.ConnectRedis(cfg); err != nil {
		return nil, err
	}

	// Upstream collaborators
	services.SetChatClient(metis.NewClient(cfg.MetisBaseURL, cfg.MetisAPIKey))

	sender, err := sms.NewSender(cfg.KavenegarAPIKey, cfg.KavenegarOTPTmpl)
	if err != nil {
		return nil, err
	}
	services.SetOTPSender(sender)

	var transcriber *sttclient.Client
	if cfg.STTBaseURL != "" {
		transcriber = sttclient.NewClient(cfg.STTBaseURL, cfg.STTAPIKey)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	apiGroup := router.Group("/api")
	{
		auth.RegisterRoutes(apiGroup)
		chat.RegisterRoutes(apiGroup, router)
		payment.RegisterRoutes(apiGroup)
		user.RegisterRoutes(apiGroup)
		stt.RegisterRoutes(apiGroup, transcriber)
	}

	return router, nil
}
