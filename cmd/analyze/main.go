// Command analyze runs one economic analysis pass and writes reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"prun-economy-lab/internal/bootstrap"
	"prun-economy-lab/internal/config"
	"prun-economy-lab/internal/observability"
	"prun-economy-lab/internal/orchestrator"
	"prun-economy-lab/internal/reporting"
)

// Exit codes
const (
	exitOK            = 0
	exitFailure       = 1
	exitInvalidConfig = 2
)

func main() {
	// Load .env file if exists; existing variables win
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:]))
}

// run executes one pass and returns the process exit code. Deferred cleanup
// completes before main exits.
func run(args []string) int {
	// Parse flags (env vars as defaults)
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("PRUN_CONFIG"), "YAML configuration file")
	catalogPath := fs.String("catalog", "", "Catalog YAML/JSON file (materials, recipes, buildings, workforce needs)")
	snapshotPath := fs.String("snapshot", "", "Market snapshot YAML/JSON file")
	snapshotID := fs.String("snapshot-id", "", "Stored snapshot to analyse when no file is given (default latest)")
	demo := fs.Bool("demo", false, "Use the embedded demo economy")
	exchange := fs.String("exchange", "", "Reference exchange for cost resolution (overrides config)")
	outputDir := fs.String("output-dir", "output", "Output directory for generated reports")
	store := fs.String("store", "", "Storage backend: memory or database (overrides config)")
	postgresDSN := fs.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := fs.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	workers := fs.Int("workers", 0, "Concurrent jobs per phase (overrides config)")
	if err := fs.Parse(args); err != nil {
		return exitInvalidConfig
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return failure(err)
	}
	if *exchange != "" {
		cfg.Analysis.ReferenceExchange = strings.ToUpper(*exchange)
	}
	if *store != "" {
		cfg.Storage.Backend = *store
	}
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
	}
	if *clickhouseDSN != "" {
		cfg.Storage.ClickHouseDSN = *clickhouseDSN
	}
	if *workers != 0 {
		cfg.Analysis.Workers = *workers
	}
	if *snapshotID != "" {
		cfg.Storage.SnapshotID = *snapshotID
	}
	if err := cfg.Validate(); err != nil {
		return failure(err)
	}

	logger, err := bootstrap.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return failure(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg.Storage)
	if err != nil {
		logger.Error().Err(err).Msg("open stores")
		return exitFailure
	}
	defer stores.Close()

	cat, snap, err := bootstrap.LoadInputs(ctx, bootstrap.Source{
		CatalogPath:  *catalogPath,
		SnapshotPath: *snapshotPath,
		Demo:         *demo,
		SnapshotID:   cfg.Storage.SnapshotID,
	}, stores, logger)
	if err != nil {
		logger.Error().Err(err).Msg("load inputs")
		if errors.Is(err, bootstrap.ErrNoInputs) {
			fmt.Fprintln(os.Stderr, "Use --catalog/--snapshot or --demo, or store inputs first")
		}
		return exitFailure
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Catalog:  cat,
		Snapshot: snap,
		Config:   cfg,
		Stores:   stores.Results,
		Metrics:  observability.NewMetrics(observability.DefaultNamespace, prometheus.NewRegistry()),
		Logger:   logger,
	})
	if err != nil {
		return failure(err)
	}

	result, err := orch.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("analysis pass failed")
		return exitFailure
	}

	report := reporting.NewGenerator(cat, *stores.Results).FromResult(result, cfg.Analysis.ReferenceExchange)
	paths, err := reporting.WriteFiles(*outputDir, report)
	if err != nil {
		logger.Error().Err(err).Msg("write reports")
		return exitFailure
	}

	fmt.Printf("Analysis run %s completed:\n", result.RunID)
	for _, p := range paths {
		fmt.Printf("  - %s\n", p)
	}
	return exitOK
}

// failure prints err and maps it to exitInvalidConfig for configuration errors, else exitFailure.
func failure(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.Is(err, config.ErrInvalidConfig) {
		return exitInvalidConfig
	}
	return exitFailure
}
