package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpadapter "certmap/internal/adapters/http"
	pg "certmap/internal/adapters/postgres"
	"certmap/internal/config"
	"certmap/internal/mapview"
	"certmap/internal/platform/logger"
	"certmap/internal/platform/metrics"
	"certmap/internal/ports"
	"certmap/internal/services/dataset"
	"certmap/internal/workers/syncrunner"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	switch {
	case errors.Is(err, config.ErrNoDatabase):
		log.Warn("remote sync disabled, serving bundled reference data", "reason", err)
	case err != nil:
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	store := dataset.NewStore(log)
	defer store.Close()

	// Remote sync is optional: without a database the bundled data stays.
	var source ports.CertificationSource
	if cfg.DatabaseURL != "" {
		source = pg.RemoteSource{URL: cfg.DatabaseURL}
	}

	mapCfg := mapview.Config{AccessToken: cfg.MapboxToken}
	if !mapCfg.Enabled() {
		log.Warn("MAPBOX_ACCESS_TOKEN not set, map view disabled")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httpadapter.New(store, mapCfg, m, log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Sync failures are logged by the runner and never stop the server.
		<-syncrunner.Start(gctx, store, source, cfg.SyncTimeout, m, log)
		return nil
	})
	g.Go(func() error {
		log.Info("listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		// Late sync responses are discarded from here on.
		store.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
