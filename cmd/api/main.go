package main

import (
	"log"
	"os"

	"github.com/address-resolver/app/config"
	"github.com/address-resolver/app/controllers"
	"github.com/address-resolver/app/services"
	"github.com/address-resolver/routes"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// API entry point: serves on-demand address resolution over HTTP.
func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: cannot read .env file: %v", err)
	}

	if err := config.Load("config/app.yaml"); err != nil {
		log.Fatalf("Cannot load configuration: %v", err)
	}

	logger := initLogger()
	defer logger.Sync()

	logger.Info("Starting Address Resolver API")

	resolveService, err := services.NewResolveService(config.C, logger)
	if err != nil {
		logger.Fatal("Failed to build resolve service", zap.Error(err))
	}

	// Redis is optional; without it every request runs the full chain.
	var cacheService services.ICacheService
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisCache, err := services.NewRedisCacheService(redisURL, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis cache", zap.Error(err))
		}
		defer redisCache.Close()
		cacheService = redisCache
	} else {
		logger.Warn("REDIS_URL not set, resolution cache disabled")
	}

	addressController := controllers.NewAddressController(resolveService, cacheService, logger)

	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, addressController)

	port := getEnv("APP_PORT", "8080")
	logger.Info("Address Resolver API starting", zap.String("port", port))

	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func initLogger() *zap.Logger {
	var cfg zap.Config
	if os.Getenv("APP_ENV") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}
	return logger
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
