package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"prun-economy-lab/internal/catalog"
	"prun-economy-lab/internal/fixtures"
	"prun-economy-lab/internal/ingest"
	"prun-economy-lab/internal/market"
	"prun-economy-lab/internal/storage"
)

// ErrNoInputs is returned when neither files, the demo economy nor stored data are available.
var ErrNoInputs = errors.New("bootstrap: no catalog or snapshot available")

// Source selects where a pass reads its catalog and snapshot from.
type Source struct {
	CatalogPath  string
	SnapshotPath string
	Demo         bool   // embedded demo economy
	SnapshotID   string // stored snapshot to load; empty = latest
}

// LoadInputs resolves the catalog and snapshot. Inputs read from files or the
// demo fixture are saved to the stores first, so the stores always hold what
// the pass analysed.
func LoadInputs(ctx context.Context, src Source, stores *Stores, logger zerolog.Logger) (*catalog.Catalog, *market.Snapshot, error) {
	c, err := loadCatalog(ctx, src, stores, logger)
	if err != nil {
		return nil, nil, err
	}
	snap, err := loadSnapshot(ctx, src, stores, logger)
	if err != nil {
		return nil, nil, err
	}
	return c, snap, nil
}

func loadCatalog(ctx context.Context, src Source, stores *Stores, logger zerolog.Logger) (*catalog.Catalog, error) {
	var (
		c   *catalog.Catalog
		err error
	)
	switch {
	case src.CatalogPath != "":
		c, err = ingest.LoadCatalog(src.CatalogPath)
	case src.Demo:
		c, err = fixtures.Catalog()
	default:
		c, err = stores.Catalog.LoadCatalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("load stored catalog: %w", err)
		}
		if len(c.Tickers()) == 0 {
			return nil, fmt.Errorf("%w: stored catalog is empty", ErrNoInputs)
		}
		logger.Info().Int("materials", len(c.Tickers())).Msg("catalog loaded from store")
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	if err := stores.Catalog.SaveCatalog(ctx, c); err != nil {
		return nil, fmt.Errorf("save catalog: %w", err)
	}
	logger.Info().
		Int("materials", len(c.Tickers())).
		Int("recipes", len(c.Recipes())).
		Msg("catalog loaded")
	return c, nil
}

func loadSnapshot(ctx context.Context, src Source, stores *Stores, logger zerolog.Logger) (*market.Snapshot, error) {
	var (
		snap *market.Snapshot
		err  error
	)
	switch {
	case src.SnapshotPath != "":
		snap, err = ingest.LoadSnapshot(src.SnapshotPath)
	case src.Demo:
		snap, err = fixtures.Snapshot()
	default:
		return loadStoredSnapshot(ctx, src.SnapshotID, stores, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	err = stores.Market.SaveSnapshot(ctx, snap)
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		logger.Debug().Str("snapshot_id", snap.ID()).Msg("snapshot already stored")
	case err != nil:
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	logger.Info().
		Str("snapshot_id", snap.ID()).
		Int("quotes", len(snap.Quotes())).
		Int("orders", len(snap.Orders())).
		Msg("snapshot loaded")
	return snap, nil
}

func loadStoredSnapshot(ctx context.Context, id string, stores *Stores, logger zerolog.Logger) (*market.Snapshot, error) {
	if id == "" {
		latest, err := stores.Market.LatestSnapshotID(ctx)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: no stored snapshot", ErrNoInputs)
		}
		if err != nil {
			return nil, fmt.Errorf("find latest snapshot: %w", err)
		}
		id = latest
	}

	snap, err := stores.Market.LoadSnapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load stored snapshot %s: %w", id, err)
	}
	logger.Info().Str("snapshot_id", id).Msg("snapshot loaded from store")
	return snap, nil
}
