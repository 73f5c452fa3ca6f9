package clickhouse

import (
	"context"
	"fmt"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/storage"
)

// CostStore implements storage.CostStore using ClickHouse.
type CostStore struct {
	conn *Conn
}

// NewCostStore creates a new CostStore.
func NewCostStore(conn *Conn) *CostStore {
	return &CostStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CostStore = (*CostStore)(nil)

// InsertBulk adds breakdowns for a run. Fails entire batch on duplicate (run_id, ticker).
func (s *CostStore) InsertBulk(ctx context.Context, runID string, costs []domain.CostBreakdown) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(costs) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	seen := make(map[string]struct{}, len(costs))
	for _, c := range costs {
		if c.Ticker == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[c.Ticker]; exists {
			return storage.ErrDuplicateKey
		}
		seen[c.Ticker] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	existing, err := s.conn.existingKeys(ctx, "cost_breakdowns", "ticker", runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	for k := range seen {
		if _, exists := existing[k]; exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO cost_breakdowns (
			run_id, ticker, recipe_key, material_input_cost, workforce_cost,
			total_cost, allocated_cost, units_produced
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range costs {
		err = batch.Append(
			runID, c.Ticker, c.RecipeKey, c.MaterialInputCost, c.WorkforceCost,
			c.TotalCost, c.AllocatedCost, c.UnitsProduced,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRun retrieves breakdowns of a run ordered by ticker.
func (s *CostStore) GetByRun(ctx context.Context, runID string) ([]domain.CostBreakdown, error) {
	query := `
		SELECT ticker, recipe_key, material_input_cost, workforce_cost,
			total_cost, allocated_cost, units_produced
		FROM cost_breakdowns
		WHERE run_id = ?
		ORDER BY ticker ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()

	return scanCostBreakdowns(rows)
}

// scanCostBreakdowns scans multiple rows.
func scanCostBreakdowns(rows chRows) ([]domain.CostBreakdown, error) {
	var costs []domain.CostBreakdown

	for rows.Next() {
		var c domain.CostBreakdown
		err := rows.Scan(
			&c.Ticker, &c.RecipeKey, &c.MaterialInputCost, &c.WorkforceCost,
			&c.TotalCost, &c.AllocatedCost, &c.UnitsProduced,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		costs = append(costs, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return costs, nil
}
