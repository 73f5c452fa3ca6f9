package bootstrap

import (
	"context"
	"fmt"

	"prun-economy-lab/internal/config"
	"prun-economy-lab/internal/storage"
	chstore "prun-economy-lab/internal/storage/clickhouse"
	"prun-economy-lab/internal/storage/memory"
	"prun-economy-lab/internal/storage/migrations"
	pgstore "prun-economy-lab/internal/storage/postgres"
)

// Stores bundles every store a command needs.
type Stores struct {
	Catalog storage.CatalogStore
	Market  storage.MarketStore
	Results *storage.ResultStores

	close func()
}

// Close releases database connections. Safe to call on memory stores.
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStores creates stores for the configured backend. The database backend
// applies embedded migrations before returning.
func OpenStores(ctx context.Context, cfg config.StorageConfig) (*Stores, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return MemoryStores(), nil
	case config.BackendDatabase:
		return openDatabaseStores(ctx, cfg.PostgresDSN, cfg.ClickHouseDSN)
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}

// MemoryStores returns fresh in-memory stores.
func MemoryStores() *Stores {
	return &Stores{
		Catalog: memory.NewCatalogStore(),
		Market:  memory.NewMarketStore(),
		Results: &storage.ResultStores{
			Runs:          memory.NewRunStore(),
			Costs:         memory.NewCostStore(),
			Scores:        memory.NewScoreStore(),
			Opportunities: memory.NewOpportunityStore(),
		},
	}
}

// openDatabaseStores connects to PostgreSQL and ClickHouse and creates stores.
func openDatabaseStores(ctx context.Context, postgresDSN, clickhouseDSN string) (*Stores, error) {
	// PostgreSQL: catalog, snapshots, run headers
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	// ClickHouse: per-run analytics
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate clickhouse: %w", err)
	}

	return &Stores{
		Catalog: pgstore.NewCatalogStore(pool),
		Market:  pgstore.NewMarketStore(pool),
		Results: &storage.ResultStores{
			Runs:          pgstore.NewRunStore(pool),
			Costs:         chstore.NewCostStore(chConn),
			Scores:        chstore.NewScoreStore(chConn),
			Opportunities: chstore.NewOpportunityStore(chConn),
		},
		close: func() {
			chConn.Close()
			pool.Close()
		},
	}, nil
}
