package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	cartpostgres "github.com/Apurer/go-gin-marketplace-server/internal/domains/cart/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/go-gin-marketplace-server/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge carts")
	}

	repo := cartpostgres.NewRepository(db)
	purged, err := repo.PurgeExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Fatalf("failed to purge expired guest carts: %v", err)
	}
	log.Printf("guest cart purge completed, removed %d carts", purged)
}
