package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	pg "certmap/internal/adapters/postgres"
	"certmap/internal/config"
	"certmap/internal/domain"
	"certmap/internal/platform/logger"
	"certmap/internal/services/seeder"
)

// seed migrates the remote store and writes the bundled reference dataset
// into it. DATABASE_URL is required.
func main() {
	cfg, err := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Error("failed to seed certification data", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("failed to seed certification data", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	_, err = seeder.New(db, log).Seed(ctx, domain.ReferenceSensors())
	return err
}
