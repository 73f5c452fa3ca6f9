package storage

import (
	"context"

	"prun-economy-lab/internal/catalog"
	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/market"
)

// CatalogStore persists reference data.
type CatalogStore interface {
	// SaveCatalog replaces all stored reference data with c.
	SaveCatalog(ctx context.Context, c *catalog.Catalog) error

	// LoadCatalog returns the stored catalog. An empty store yields an empty catalog.
	LoadCatalog(ctx context.Context) (*catalog.Catalog, error)
}

// MarketStore persists market snapshots. Snapshots are append-only.
type MarketStore interface {
	// SaveSnapshot adds a snapshot. Returns ErrDuplicateKey if its ID exists.
	SaveSnapshot(ctx context.Context, s *market.Snapshot) error

	// LoadSnapshot retrieves a snapshot by ID. Returns ErrNotFound if not exists.
	LoadSnapshot(ctx context.Context, snapshotID string) (*market.Snapshot, error)

	// LatestSnapshotID returns the most recently taken snapshot. Returns ErrNotFound if empty.
	LatestSnapshotID(ctx context.Context) (string, error)
}

// RunStore persists analysis run headers.
type RunStore interface {
	// Insert adds a run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, run *domain.AnalysisRun) error

	// GetByID retrieves a run. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.AnalysisRun, error)

	// GetLatest returns the run with the latest finished_at. Returns ErrNotFound if empty.
	GetLatest(ctx context.Context) (*domain.AnalysisRun, error)
}

// CostStore persists cost breakdowns per run.
type CostStore interface {
	// InsertBulk adds breakdowns for a run. Fails entire batch on duplicate (run_id, ticker).
	InsertBulk(ctx context.Context, runID string, costs []domain.CostBreakdown) error

	// GetByRun retrieves breakdowns of a run ordered by ticker.
	GetByRun(ctx context.Context, runID string) ([]domain.CostBreakdown, error)
}

// ScoreStore persists score records per run.
type ScoreStore interface {
	// InsertBulk adds records for a run. Fails entire batch on duplicate (run_id, ticker, exchange).
	InsertBulk(ctx context.Context, runID string, scores []domain.ScoreRecord) error

	// GetByRun retrieves records of a run ordered by investment score DESC, then ticker, exchange.
	GetByRun(ctx context.Context, runID string) ([]domain.ScoreRecord, error)

	// GetByTicker retrieves records of one ticker in a run ordered by exchange.
	GetByTicker(ctx context.Context, runID, ticker string) ([]domain.ScoreRecord, error)
}

// OpportunityStore persists arbitrage opportunities per run. Fills are not stored.
type OpportunityStore interface {
	// InsertBulk adds opportunities for a run. Fails entire batch on duplicate
	// (run_id, ticker, buy_exchange, sell_exchange).
	InsertBulk(ctx context.Context, runID string, opps []domain.ArbitrageOpportunity) error

	// GetByRun retrieves opportunities of a run ordered by total profit DESC.
	GetByRun(ctx context.Context, runID string) ([]domain.ArbitrageOpportunity, error)
}

// ResultStores groups the stores written at the end of an analysis pass.
type ResultStores struct {
	Runs          RunStore
	Costs         CostStore
	Scores        ScoreStore
	Opportunities OpportunityStore
}
