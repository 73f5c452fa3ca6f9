package clickhouse

import (
	"context"
	"fmt"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/storage"
)

// OpportunityStore implements storage.OpportunityStore using ClickHouse.
// Only the fill count is kept; fills themselves are not stored.
type OpportunityStore struct {
	conn *Conn
}

// NewOpportunityStore creates a new OpportunityStore.
func NewOpportunityStore(conn *Conn) *OpportunityStore {
	return &OpportunityStore{conn: conn}
}

// Compile-time interface check.
var _ storage.OpportunityStore = (*OpportunityStore)(nil)

// InsertBulk adds opportunities for a run.
// Fails entire batch on duplicate (run_id, ticker, buy_exchange, sell_exchange).
func (s *OpportunityStore) InsertBulk(ctx context.Context, runID string, opps []domain.ArbitrageOpportunity) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(opps) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(opps))
	for _, o := range opps {
		if o.Ticker == "" || o.BuyExchange == "" || o.SellExchange == "" {
			return storage.ErrInvalidInput
		}
		k := o.Ticker + "/" + o.BuyExchange + "/" + o.SellExchange
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	existing, err := s.conn.existingKeys(ctx, "arbitrage_opportunities",
		"concat(ticker, '/', buy_exchange, '/', sell_exchange)", runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	for k := range seen {
		if _, exists := existing[k]; exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO arbitrage_opportunities (
			run_id, ticker, buy_exchange, sell_exchange, buy_price, sell_price,
			matched_quantity, total_profit, profit_per_unit, roi_percent,
			level, from_order_book, fill_count
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, o := range opps {
		var fromBook uint8
		if o.FromOrderBook {
			fromBook = 1
		}
		err = batch.Append(
			runID, o.Ticker, o.BuyExchange, o.SellExchange, o.BuyPrice, o.SellPrice,
			o.MatchedQuantity, o.TotalProfit, o.ProfitPerUnit, o.ROIPercent,
			o.Level.String(), fromBook, uint32(len(o.Fills)),
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

// GetByRun retrieves opportunities of a run ordered by total profit DESC.
func (s *OpportunityStore) GetByRun(ctx context.Context, runID string) ([]domain.ArbitrageOpportunity, error) {
	query := `
		SELECT ticker, buy_exchange, sell_exchange, buy_price, sell_price,
			matched_quantity, total_profit, profit_per_unit, roi_percent,
			level, from_order_book
		FROM arbitrage_opportunities
		WHERE run_id = ?
		ORDER BY total_profit DESC, ticker ASC, buy_exchange ASC, sell_exchange ASC
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()

	var opps []domain.ArbitrageOpportunity
	for rows.Next() {
		var (
			o        domain.ArbitrageOpportunity
			level    string
			fromBook uint8
		)
		err := rows.Scan(
			&o.Ticker, &o.BuyExchange, &o.SellExchange, &o.BuyPrice, &o.SellPrice,
			&o.MatchedQuantity, &o.TotalProfit, &o.ProfitPerUnit, &o.ROIPercent,
			&level, &fromBook,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if o.Level, err = domain.ParseOpportunityLevel(level); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		o.FromOrderBook = fromBook == 1
		opps = append(opps, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return opps, nil
}
