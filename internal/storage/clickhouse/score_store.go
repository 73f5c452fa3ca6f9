package clickhouse

import (
	"context"
	"fmt"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/storage"
)

// ScoreStore implements storage.ScoreStore using ClickHouse.
// Risk and viability are stored by name.
type ScoreStore struct {
	conn *Conn
}

// NewScoreStore creates a new ScoreStore.
func NewScoreStore(conn *Conn) *ScoreStore {
	return &ScoreStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScoreStore = (*ScoreStore)(nil)

const scoreColumns = `
	ticker, exchange, unit_cost, profit_ask, profit_bid, roi_ask, roi_bid,
	saturation, liquidity_ratio, volatility, spread_pct, risk, viability, investment_score
`

func scoreKey(ticker, exchange string) string {
	return ticker + "/" + exchange
}

// InsertBulk adds records for a run. Fails entire batch on duplicate (run_id, ticker, exchange).
func (s *ScoreStore) InsertBulk(ctx context.Context, runID string, scores []domain.ScoreRecord) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(scores) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(scores))
	for _, rec := range scores {
		if rec.Ticker == "" || rec.Exchange == "" {
			return storage.ErrInvalidInput
		}
		k := scoreKey(rec.Ticker, rec.Exchange)
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	existing, err := s.conn.existingKeys(ctx, "score_records", "concat(ticker, '/', exchange)", runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	for k := range seen {
		if _, exists := existing[k]; exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO score_records (run_id, `+scoreColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, rec := range scores {
		err = batch.Append(
			runID, rec.Ticker, rec.Exchange, rec.UnitCost,
			rec.ProfitAsk, rec.ProfitBid, rec.ROIAsk, rec.ROIBid,
			rec.Saturation, rec.LiquidityRatio, rec.Volatility, rec.SpreadPct,
			rec.Risk.String(), rec.Viability.String(), rec.InvestmentScore,
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

// GetByRun retrieves records of a run ordered by investment score DESC.
func (s *ScoreStore) GetByRun(ctx context.Context, runID string) ([]domain.ScoreRecord, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM score_records
		WHERE run_id = ?
		ORDER BY investment_score DESC, ticker ASC, exchange ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()

	return scanScoreRecords(rows)
}

// GetByTicker retrieves records of one ticker in a run ordered by exchange.
func (s *ScoreStore) GetByTicker(ctx context.Context, runID, ticker string) ([]domain.ScoreRecord, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM score_records
		WHERE run_id = ? AND ticker = ?
		ORDER BY exchange ASC
	`

	rows, err := s.conn.Query(ctx, query, runID, ticker)
	if err != nil {
		return nil, fmt.Errorf("query by ticker: %w", err)
	}
	defer rows.Close()

	return scanScoreRecords(rows)
}

// scanScoreRecords scans multiple rows.
func scanScoreRecords(rows chRows) ([]domain.ScoreRecord, error) {
	var records []domain.ScoreRecord

	for rows.Next() {
		var (
			rec             domain.ScoreRecord
			risk, viability string
		)
		err := rows.Scan(
			&rec.Ticker, &rec.Exchange, &rec.UnitCost,
			&rec.ProfitAsk, &rec.ProfitBid, &rec.ROIAsk, &rec.ROIBid,
			&rec.Saturation, &rec.LiquidityRatio, &rec.Volatility, &rec.SpreadPct,
			&risk, &viability, &rec.InvestmentScore,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if rec.Risk, err = domain.ParseRiskLevel(risk); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if rec.Viability, err = domain.ParseViability(viability); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}
