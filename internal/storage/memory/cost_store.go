package memory

import (
	"context"
	"sort"
	"sync"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/storage"
)

// CostStore is an in-memory implementation of storage.CostStore.
type CostStore struct {
	mu   sync.RWMutex
	data map[string]map[string]domain.CostBreakdown // run_id -> ticker -> breakdown
}

// NewCostStore creates a new in-memory cost store.
func NewCostStore() *CostStore {
	return &CostStore{
		data: make(map[string]map[string]domain.CostBreakdown),
	}
}

// InsertBulk adds breakdowns for a run. Fails entire batch on duplicate ticker.
func (s *CostStore) InsertBulk(_ context.Context, runID string, costs []domain.CostBreakdown) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(costs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[runID]

	// Check for duplicates against stored data and within the batch
	seen := make(map[string]bool, len(costs))
	for _, c := range costs {
		if c.Ticker == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := existing[c.Ticker]; exists || seen[c.Ticker] {
			return storage.ErrDuplicateKey
		}
		seen[c.Ticker] = true
	}

	if existing == nil {
		existing = make(map[string]domain.CostBreakdown, len(costs))
		s.data[runID] = existing
	}
	for _, c := range costs {
		existing[c.Ticker] = c
	}
	return nil
}

// GetByRun retrieves breakdowns of a run ordered by ticker.
func (s *CostStore) GetByRun(_ context.Context, runID string) ([]domain.CostBreakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byTicker := s.data[runID]
	result := make([]domain.CostBreakdown, 0, len(byTicker))
	for _, c := range byTicker {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Ticker < result[j].Ticker
	})
	return result, nil
}

// Compile-time interface check.
var _ storage.CostStore = (*CostStore)(nil)
