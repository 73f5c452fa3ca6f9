package memory

import (
	"context"
	"sync"

	"prun-economy-lab/internal/market"
	"prun-economy-lab/internal/storage"
)

// MarketStore is an in-memory implementation of storage.MarketStore.
type MarketStore struct {
	mu        sync.RWMutex
	snapshots map[string]*market.Snapshot
	latest    string
}

// NewMarketStore creates a new in-memory market store.
func NewMarketStore() *MarketStore {
	return &MarketStore{
		snapshots: make(map[string]*market.Snapshot),
	}
}

// SaveSnapshot adds a snapshot. Returns ErrDuplicateKey if its ID exists.
func (s *MarketStore) SaveSnapshot(_ context.Context, snap *market.Snapshot) error {
	if snap == nil || snap.ID() == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.snapshots[snap.ID()]; exists {
		return storage.ErrDuplicateKey
	}

	s.snapshots[snap.ID()] = snap
	if cur, ok := s.snapshots[s.latest]; !ok || !snap.TakenAt().Before(cur.TakenAt()) {
		s.latest = snap.ID()
	}
	return nil
}

// LoadSnapshot retrieves a snapshot by ID. Returns ErrNotFound if not exists.
func (s *MarketStore) LoadSnapshot(_ context.Context, snapshotID string) (*market.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, exists := s.snapshots[snapshotID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return snap, nil
}

// LatestSnapshotID returns the ID of the most recently taken snapshot.
func (s *MarketStore) LatestSnapshotID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == "" {
		return "", storage.ErrNotFound
	}
	return s.latest, nil
}

// Compile-time interface check.
var _ storage.MarketStore = (*MarketStore)(nil)
