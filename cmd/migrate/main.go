package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/asgtransit/website-api/internal/config"
	"github.com/asgtransit/website-api/internal/database"
	"github.com/asgtransit/website-api/internal/logger"
	"github.com/asgtransit/website-api/internal/services"
)

// Copies routes.json, alerts.json and drivers.json into the documents table
// in a single transaction. Running it twice leaves the same state.
func main() {
	var dataDir, dbURL string
	flag.StringVar(&dataDir, "data-dir", "", "directory holding the JSON collections (overrides DATA_DIR)")
	flag.StringVar(&dbURL, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	_ = godotenv.Load()

	if dataDir == "" {
		dataDir = envOr("DATA_DIR", "./data")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	logs := logger.New(config.ServerConfig{LogLevel: envOr("LOG_LEVEL", "info")})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	source, err := database.OpenFileStore(dataDir)
	if err != nil {
		log.Fatalf("failed to open file store: %v", err)
	}
	logs.WithField("data_dir", source.Dir()).Info("Reading file store")

	dest, err := database.OpenDocumentStore(ctx, config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
	})
	if err != nil {
		log.Fatalf("failed to open document store: %v", err)
	}
	defer dest.Close()

	result, err := services.NewMigrationService(source, dest, nil, logs).Run(ctx)
	if err != nil {
		var migrationErr *services.MigrationError
		if errors.As(err, &migrationErr) {
			log.Fatal(migrationErr.Error())
		}
		log.Fatalf("failed to read %s: %v", dataDir, err)
	}

	fmt.Println(result.Message)
	if result.Skipped > 0 {
		fmt.Printf("%d records skipped (no usable key)\n", result.Skipped)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
