// Command report renders reports for a stored analysis run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"prun-economy-lab/internal/bootstrap"
	"prun-economy-lab/internal/config"
	"prun-economy-lab/internal/reporting"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run())
}

func run() int {

	configPath := flag.String("config", os.Getenv("PRUN_CONFIG"), "YAML configuration file")
	runID := flag.String("run-id", "", "Run to render (default latest)")
	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	// Stored runs only exist in the database backend.
	cfg.Storage.Backend = config.BackendDatabase
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

	logger, err := bootstrap.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	ctx := context.Background()

	stores, err := bootstrap.OpenStores(ctx, cfg.Storage)
	if err != nil {
		logger.Error().Err(err).Msg("open stores")
		return 1
	}
	defer stores.Close()

	// Catalog supplies material names; an empty one is fine.
	cat, err := stores.Catalog.LoadCatalog(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("catalog unavailable, names omitted")
		cat = nil
	}

	report, err := reporting.NewGenerator(cat, *stores.Results).Generate(ctx, *runID)
	if err != nil {
		logger.Error().Err(err).Str("run_id", *runID).Msg("generate report")
		return 1
	}

	paths, err := reporting.WriteFiles(*outputDir, report)
	if err != nil {
		logger.Error().Err(err).Msg("write reports")
		return 1
	}

	fmt.Printf("Report for run %s generated:\n", report.Run.RunID)
	for _, p := range paths {
		fmt.Printf("  - %s\n", p)
	}
	return 0
}
