// @title           Evangel CRM API
// @version         1.0
// @description     Convert follow-up CRM with health scoring, alerting and a simulated voice agent

// @contact.name   API Support
// @contact.email  support@graceevangelical.demo

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer: ` prefix
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/models"
	"github.com/dependify/DemoeCRM/routes"
	"github.com/dependify/DemoeCRM/services"
)

func main() {
	envType := os.Getenv("ENV_TYPE")
	if err := config.SetupLogger(envType); err != nil {
		fmt.Printf("failed to set up logger: %v\n", err)
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		config.Warning("no .env file loaded", zap.Error(err))
	} else {
		config.Info("loaded .env file")
	}

	cfg := config.GetConfig()

	db, err := initDB(cfg)
	if err != nil {
		config.Error("failed to connect to database", zap.Error(err))
		os.Exit(1)
	}

	if err := autoMigrate(db); err != nil {
		config.Error("database migration failed", zap.Error(err))
		os.Exit(1)
	}

	if err := bootstrapData(db, cfg); err != nil {
		config.Error("data bootstrap failed", zap.Error(err))
		os.Exit(1)
	}

	r := routes.SetupRouter(db, cfg)

	port := cfg.ServerPort
	config.Info("server starting", zap.String("addr", "http://localhost:"+port))
	if err := r.Run(":" + port); err != nil {
		config.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
}

// initDB opens the database connection
func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	config.Info("database connection established")
	return db, nil
}

// autoMigrate migrates all models, adding new columns and tables only
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Convert{},
		&models.ActivityRecord{},
		&models.HealthScoreSnapshot{},
		&models.Alert{},
		&models.CallScript{},
		&models.VoiceCall{},
	)
}

// bootstrapData creates the admin account and, when configured, the demo
// dataset
func bootstrapData(db *gorm.DB, cfg *config.Config) error {
	// Nothing is cached before the server starts, so no cache to invalidate
	ctx := context.Background()
	seedService := services.NewSeedService(db, cfg, nil)

	if err := seedService.EnsureAdmin(ctx); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if cfg.SeedDemoData {
		if err := seedService.SeedDemoData(ctx); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}
	return nil
}
