package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

const runColumns = `
	run_id, snapshot_id, reference_exchange, started_at, finished_at,
	materials, scores, opportunities, warnings
`

// Insert adds a run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, run *domain.AnalysisRun) error {
	if run == nil || run.RunID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO analysis_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		run.RunID, run.SnapshotID, run.ReferenceExchange,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
		run.Materials, run.Scores, run.Opportunities, run.Warnings,
	)
	if err != nil {
		return storageError(err, "insert run")
	}
	return nil
}

// GetByID retrieves a run. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.AnalysisRun, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+runColumns+` FROM analysis_runs WHERE run_id = $1
	`, runID)

	run, err := scanRun(row)
	if err != nil {
		return nil, storageError(err, "query run")
	}
	return run, nil
}

// GetLatest returns the run with the latest finished_at.
func (s *RunStore) GetLatest(ctx context.Context) (*domain.AnalysisRun, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+runColumns+` FROM analysis_runs
		ORDER BY finished_at DESC, run_id DESC
		LIMIT 1
	`)

	run, err := scanRun(row)
	if err != nil {
		return nil, storageError(err, "query latest run")
	}
	return run, nil
}

// scanRun scans a single row into domain.AnalysisRun.
func scanRun(row pgx.Row) (*domain.AnalysisRun, error) {
	var r domain.AnalysisRun
	err := row.Scan(
		&r.RunID, &r.SnapshotID, &r.ReferenceExchange, &r.StartedAt, &r.FinishedAt,
		&r.Materials, &r.Scores, &r.Opportunities, &r.Warnings,
	)
	if err != nil {
		return nil, err
	}
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	return &r, nil
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)
