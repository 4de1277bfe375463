package main

import (
	"context"
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	apphttp "github.com/sohepalslamat/shopify-front/internal/http"
	"github.com/sohepalslamat/shopify-front/internal/modules/session"
	"github.com/sohepalslamat/shopify-front/internal/storage"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Database connection
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	sessions, err := session.FromEnv()
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	logger.Info("session store ready", "driver", sessions.Driver)

	store, err := storage.FromEnv(context.Background())
	if err != nil {
		log.Fatalf("asset storage: %v", err)
	}
	logger.Info("asset storage ready", "driver", store.Driver)

	r := apphttp.NewRouter(logger, db, sessions.Store, store.Storage)

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	_ = r.Run(addr)
}
