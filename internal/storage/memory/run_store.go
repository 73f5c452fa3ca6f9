package memory

import (
	"context"
	"sync"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.AnalysisRun
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.AnalysisRun),
	}
}

// Insert adds a run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, run *domain.AnalysisRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[run.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	runCopy := *run
	s.data[run.RunID] = &runCopy
	return nil
}

// GetByID retrieves a run. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	runCopy := *run
	return &runCopy, nil
}

// GetLatest returns the run with the latest finished_at, ties broken by run_id.
func (s *RunStore) GetLatest(_ context.Context) (*domain.AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.AnalysisRun
	for _, run := range s.data {
		if latest == nil ||
			run.FinishedAt.After(latest.FinishedAt) ||
			(run.FinishedAt.Equal(latest.FinishedAt) && run.RunID > latest.RunID) {
			latest = run
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}

	runCopy := *latest
	return &runCopy, nil
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)
