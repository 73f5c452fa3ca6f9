package memory

import (
	"context"
	"sort"
	"sync"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/storage"
)

// ScoreStore is an in-memory implementation of storage.ScoreStore.
type ScoreStore struct {
	mu   sync.RWMutex
	data map[string]map[domain.ScoreKey]domain.ScoreRecord // run_id -> key -> record
}

// NewScoreStore creates a new in-memory score store.
func NewScoreStore() *ScoreStore {
	return &ScoreStore{
		data: make(map[string]map[domain.ScoreKey]domain.ScoreRecord),
	}
}

// InsertBulk adds records for a run. Fails entire batch on duplicate (ticker, exchange).
func (s *ScoreStore) InsertBulk(_ context.Context, runID string, scores []domain.ScoreRecord) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(scores) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[runID]

	seen := make(map[domain.ScoreKey]bool, len(scores))
	for _, rec := range scores {
		if rec.Ticker == "" || rec.Exchange == "" {
			return storage.ErrInvalidInput
		}
		key := rec.Key()
		if _, exists := existing[key]; exists || seen[key] {
			return storage.ErrDuplicateKey
		}
		seen[key] = true
	}

	if existing == nil {
		existing = make(map[domain.ScoreKey]domain.ScoreRecord, len(scores))
		s.data[runID] = existing
	}
	for _, rec := range scores {
		existing[rec.Key()] = rec
	}
	return nil
}

// GetByRun retrieves records of a run ordered by investment score DESC.
func (s *ScoreStore) GetByRun(_ context.Context, runID string) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.ScoreRecord, 0, len(s.data[runID]))
	for _, rec := range s.data[runID] {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.InvestmentScore != b.InvestmentScore {
			return a.InvestmentScore > b.InvestmentScore
		}
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		return a.Exchange < b.Exchange
	})
	return result, nil
}

// GetByTicker retrieves records of one ticker in a run ordered by exchange.
func (s *ScoreStore) GetByTicker(_ context.Context, runID, ticker string) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.ScoreRecord
	for key, rec := range s.data[runID] {
		if key.Ticker == ticker {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Exchange < result[j].Exchange
	})
	return result, nil
}

// Compile-time interface check.
var _ storage.ScoreStore = (*ScoreStore)(nil)
