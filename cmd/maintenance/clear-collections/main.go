package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/asgtransit/website-api/internal/config"
	"github.com/asgtransit/website-api/internal/database"
)

func main() {
	var dbURLFlag, only string
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.StringVar(&only, "collections", "", "comma separated collections to clear (default: all)")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	collections, err := parseCollections(only)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	store, err := database.OpenDocumentStore(ctx, config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	fmt.Println("Connected to database. Clearing collections...")

	removed, err := store.Clear(ctx, collections...)
	if err != nil {
		log.Fatalf("failed to clear collections: %v", err)
	}
	fmt.Printf("%d documents removed.\n", removed)

	fmt.Println("Post-clear document counts:")
	for _, c := range collections {
		count, err := store.Count(ctx, c)
		if err != nil {
			fmt.Printf("  %s: error: %v\n", c, err)
			continue
		}
		fmt.Printf("  %s: %d\n", c, count)
	}
}

func parseCollections(list string) ([]database.Collection, error) {
	if strings.TrimSpace(list) == "" {
		return database.Collections(), nil
	}

	var out []database.Collection
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		found := false
		for _, c := range database.Collections() {
			if string(c) == name {
				out = append(out, c)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown collection %q", name)
		}
	}
	return out, nil
}
