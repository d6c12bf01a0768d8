package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/address-resolver/app/config"
	"github.com/address-resolver/app/models"
	"github.com/address-resolver/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Batch entry point: resolves both raw datasets end to end and leaves the
// structured address table plus the per-stage artifacts on disk.
func main() {
	// 1. Load .env and configuration
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: cannot read .env file: %v", err)
	}
	loadConfig()

	if err := config.Load(viper.GetString("config_file")); err != nil {
		log.Fatalf("Cannot load configuration: %v", err)
	}

	// 2. Initialize logger
	logger := initLogger()
	defer logger.Sync()

	logger.Info("Starting Address Resolver pipeline",
		zap.String("training", config.C.Paths.TrainingPath()),
		zap.String("testing", config.C.Paths.TestingPath()))

	// 3. Wire the pipeline
	p, err := pipeline.New(config.C, logger)
	if err != nil {
		logger.Fatal("Failed to build pipeline", zap.Error(err))
	}

	// 4. Run with signal-aware cancellation
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rows, err := p.Run(ctx)
	if err != nil {
		logger.Fatal("Pipeline run failed", zap.Error(err))
	}

	// 5. Explode back to one record per raw-dataset row for downstream use
	exploded := pipeline.Explode(rows)
	if err := pipeline.WriteAddressTable(config.C.Paths.ExplodedPath(), exploded); err != nil {
		logger.Fatal("Failed to write exploded address table", zap.Error(err))
	}

	ok, failed := 0, 0
	for _, row := range rows {
		switch row.Status {
		case models.StatusOK:
			ok++
		case models.StatusFailed:
			failed++
		}
	}
	logger.Info("Pipeline finished",
		zap.Int("unique_addresses", len(rows)),
		zap.Int("exploded_rows", len(exploded)),
		zap.Int("ok", ok),
		zap.Int("failed", failed),
		zap.String("output", config.C.Paths.AddressesPath()),
		zap.String("exploded", config.C.Paths.ExplodedPath()))
}

// loadConfig loads defaults and env overrides through viper.
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.env", "development")
	viper.SetDefault("config_file", "config/app.yaml")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}
}

// initLogger builds a structured logger matching the environment.
func initLogger() *zap.Logger {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = viper.GetString("app.env")
	}

	var cfg zap.Config
	if env == "production" {
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
