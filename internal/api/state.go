package api

import (
	"context"
	"errors"
	"sync"

	"prun-economy-lab/internal/orchestrator"
)

// ErrPassInProgress is returned when a pass is requested while another is running.
var ErrPassInProgress = errors.New("api: analysis pass already in progress")

// PassFunc runs one analysis pass.
type PassFunc func(ctx context.Context) (*orchestrator.RunResult, error)

// State holds the latest completed pass and serializes recomputation.
type State struct {
	run PassFunc

	passMu sync.Mutex // held while a pass runs

	mu     sync.RWMutex
	latest *orchestrator.RunResult
}

// NewState creates a State that recomputes with run.
func NewState(run PassFunc) *State {
	return &State{run: run}
}

// Latest returns the most recent completed pass, or nil.
func (s *State) Latest() *orchestrator.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Set replaces the latest result.
func (s *State) Set(res *orchestrator.RunResult) {
	s.mu.Lock()
	s.latest = res
	s.mu.Unlock()
}

// Recompute runs a pass and publishes its result. A failed pass keeps the
// previous result.
func (s *State) Recompute(ctx context.Context) (*orchestrator.RunResult, error) {
	if !s.passMu.TryLock() {
		return nil, ErrPassInProgress
	}
	defer s.passMu.Unlock()

	res, err := s.run(ctx)
	if err != nil {
		return nil, err
	}
	s.Set(res)
	return res, nil
}
