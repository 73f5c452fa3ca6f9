package memory

import (
	"context"
	"sort"
	"sync"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/storage"
)

type opportunityKey struct {
	ticker, buy, sell string
}

// OpportunityStore is an in-memory implementation of storage.OpportunityStore.
// Fills are dropped on insert to match the database schema.
type OpportunityStore struct {
	mu   sync.RWMutex
	data map[string]map[opportunityKey]domain.ArbitrageOpportunity
}

// NewOpportunityStore creates a new in-memory opportunity store.
func NewOpportunityStore() *OpportunityStore {
	return &OpportunityStore{
		data: make(map[string]map[opportunityKey]domain.ArbitrageOpportunity),
	}
}

// InsertBulk adds opportunities for a run. Fails entire batch on duplicate.
func (s *OpportunityStore) InsertBulk(_ context.Context, runID string, opps []domain.ArbitrageOpportunity) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(opps) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[runID]

	seen := make(map[opportunityKey]bool, len(opps))
	for _, o := range opps {
		if o.Ticker == "" || o.BuyExchange == "" || o.SellExchange == "" {
			return storage.ErrInvalidInput
		}
		key := opportunityKey{o.Ticker, o.BuyExchange, o.SellExchange}
		if _, exists := existing[key]; exists || seen[key] {
			return storage.ErrDuplicateKey
		}
		seen[key] = true
	}

	if existing == nil {
		existing = make(map[opportunityKey]domain.ArbitrageOpportunity, len(opps))
		s.data[runID] = existing
	}
	for _, o := range opps {
		o.Fills = nil
		existing[opportunityKey{o.Ticker, o.BuyExchange, o.SellExchange}] = o
	}
	return nil
}

// GetByRun retrieves opportunities of a run ordered by total profit DESC.
func (s *OpportunityStore) GetByRun(_ context.Context, runID string) ([]domain.ArbitrageOpportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ArbitrageOpportunity, 0, len(s.data[runID]))
	for _, o := range s.data[runID] {
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.TotalProfit != b.TotalProfit {
			return a.TotalProfit > b.TotalProfit
		}
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		if a.BuyExchange != b.BuyExchange {
			return a.BuyExchange < b.BuyExchange
		}
		return a.SellExchange < b.SellExchange
	})
	return result, nil
}

// Compile-time interface check.
var _ storage.OpportunityStore = (*OpportunityStore)(nil)
