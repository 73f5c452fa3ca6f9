// Package main provides the HTTP server: it runs an analysis pass at startup
// and on POST /v1/passes, and serves the latest results read-only.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"prun-economy-lab/internal/api"
	"prun-economy-lab/internal/bootstrap"
	"prun-economy-lab/internal/config"
	"prun-economy-lab/internal/observability"
	"prun-economy-lab/internal/orchestrator"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── 1. Environment and flags
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("PRUN_CONFIG"), "YAML configuration file")
	catalogPath := flag.String("catalog", "", "Catalog YAML/JSON file, re-read on every pass")
	snapshotPath := flag.String("snapshot", "", "Market snapshot YAML/JSON file, re-read on every pass")
	demo := flag.Bool("demo", false, "Use the embedded demo economy")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	flag.Parse()

	// ── 2. Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
	}
	if *clickhouseDSN != "" {
		cfg.Storage.ClickHouseDSN = *clickhouseDSN
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	// ── 3. Logger
	logger, err := bootstrap.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	// ── 4. Root context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── 5. Stores and metrics
	stores, err := bootstrap.OpenStores(ctx, cfg.Storage)
	if err != nil {
		logger.Error().Err(err).Msg("open stores")
		return 1
	}
	defer stores.Close()

	metrics := observability.NewMetrics(observability.DefaultNamespace, prometheus.DefaultRegisterer)

	src := bootstrap.Source{
		CatalogPath:  *catalogPath,
		SnapshotPath: *snapshotPath,
		Demo:         *demo,
		SnapshotID:   cfg.Storage.SnapshotID,
	}
	state := api.NewState(newPass(cfg, src, stores, metrics, logger))

	// ── 6. Initial pass; the server still starts without one
	if res, err := state.Recompute(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial analysis pass failed, waiting for POST /v1/passes")
	} else {
		logger.Info().Str("run_id", res.RunID).Msg("initial analysis pass completed")
	}

	// ── 7. Fiber app
	app := api.NewApp(api.Options{
		State:             state,
		ReferenceExchange: cfg.Analysis.ReferenceExchange,
		Exchanges:         cfg.Analysis.Exchanges,
		Metrics:           metrics,
		Logger:            logger,
	})

	// ── 8. Graceful shutdown listener
	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutdown signal received")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			logger.Error().Err(err).Msg("error during shutdown")
		}
	}()

	// ── 9. Start server (blocking)
	logger.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
	if err := app.Listen(cfg.Server.Addr); err != nil {
		logger.Error().Err(err).Msg("server failed")
		return 1
	}
	logger.Info().Msg("shutdown complete")
	return 0
}

// newPass returns a PassFunc that reloads inputs before every pass, so a
// recompute sees new snapshot files or the latest stored snapshot.
func newPass(
	cfg *config.Config,
	src bootstrap.Source,
	stores *bootstrap.Stores,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) api.PassFunc {
	return func(ctx context.Context) (*orchestrator.RunResult, error) {
		cat, snap, err := bootstrap.LoadInputs(ctx, src, stores, logger)
		if err != nil {
			metrics.RecordPass(observability.StatusFailure, time.Now())
			return nil, err
		}

		orch, err := orchestrator.New(orchestrator.Options{
			Catalog:  cat,
			Snapshot: snap,
			Config:   cfg,
			Stores:   stores.Results,
			Metrics:  metrics,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		return orch.Run(ctx)
	}
}
