package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"prun-economy-lab/internal/catalog"
	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/market"
	"prun-economy-lab/internal/storage"
)

func mustSnapshot(t *testing.T, id string, takenAt time.Time) *market.Snapshot {
	t.Helper()
	snap, err := market.NewSnapshot(id, takenAt, []domain.MarketQuote{
		{Ticker: "FE", Exchange: "AI1", Ask: 40, Bid: 38},
	}, nil)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	return snap
}

func TestMarketStore_SaveAndLoad(t *testing.T) {
	store := NewMarketStore()
	ctx := context.Background()

	if _, err := store.LatestSnapshotID(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	base := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	if err := store.SaveSnapshot(ctx, mustSnapshot(t, "late", base.Add(time.Hour))); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if err := store.SaveSnapshot(ctx, mustSnapshot(t, "early", base)); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	latest, err := store.LatestSnapshotID(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshotID failed: %v", err)
	}
	if latest != "late" {
		t.Errorf("latest mismatch: got %s, want late", latest)
	}

	snap, err := store.LoadSnapshot(ctx, "early")
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if snap.Ask("FE", "AI1") != 40 {
		t.Errorf("ask mismatch: got %v, want 40", snap.Ask("FE", "AI1"))
	}

	if _, err := store.LoadSnapshot(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.SaveSnapshot(ctx, mustSnapshot(t, "early", base)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestCatalogStore_SaveAndLoad(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	empty, err := store.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog on empty store failed: %v", err)
	}
	if len(empty.Materials()) != 0 {
		t.Errorf("expected empty catalog, got %d materials", len(empty.Materials()))
	}

	cat, err := catalog.New([]domain.Material{{Ticker: "FE", Tier: 1}}, nil, nil, nil)
	if err != nil {
		t.Fatalf("catalog.New failed: %v", err)
	}
	if err := store.SaveCatalog(ctx, cat); err != nil {
		t.Fatalf("SaveCatalog failed: %v", err)
	}

	got, err := store.LoadCatalog(ctx)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if _, ok := got.Material("FE"); !ok {
		t.Error("expected FE in loaded catalog")
	}

	if err := store.SaveCatalog(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
