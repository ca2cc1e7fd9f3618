package main

import (
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/HadisehPourali/delyar/config"
	"github.com/HadisehPourali/delyar/internal/api"
	"github.com/HadisehPourali/delyar/internal/database"
	"github.com/HadisehPourali/delyar/internal/models"
	"github.com/HadisehPourali/delyar/internal/services"
	"github.com/HadisehPourali/delyar/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.OTPOverrideCode != "" {
		logger.Log.Warn("OTP override code is enabled; SMS verification can be bypassed. Never run production like this.")
	}

	router, err := api.NewRouter()
	if err != nil {
		logger.Log.Fatal("failed to create router", zap.Error(err))
	}

	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.Purchase{},
		&models.Feedback{},
		&models.PendingTransaction{},
		&models.PaymentConfig{},
		&models.DiscountCode{},
	); err != nil {
		logger.Log.Fatal("failed to migrate database", zap.Error(err))
	}

	if err := services.SeedPaymentConfig(cfg); err != nil {
		logger.Log.Fatal("failed to seed payment config", zap.Error(err))
	}
	if err := services.SeedDiscountCodes(cfg.DiscountCodes); err != nil {
		logger.Log.Fatal("failed to seed discount codes", zap.Error(err))
	}

	addr := ":" + getPort()
	logger.Log.Info("starting delyar backend", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Log.Fatal("server exited", zap.Error(err))
	}
}

func getPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}
