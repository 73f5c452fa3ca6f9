package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/market"
	"prun-economy-lab/internal/storage"
)

// MarketStore implements storage.MarketStore using PostgreSQL.
type MarketStore struct {
	pool *Pool
}

// NewMarketStore creates a new MarketStore.
func NewMarketStore(pool *Pool) *MarketStore {
	return &MarketStore{pool: pool}
}

// SaveSnapshot inserts a snapshot with its quotes and order book.
// Returns ErrDuplicateKey if the snapshot ID exists.
func (s *MarketStore) SaveSnapshot(ctx context.Context, snap *market.Snapshot) error {
	if snap == nil || snap.ID() == "" {
		return storage.ErrInvalidInput
	}

	return s.pool.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO market_snapshots (snapshot_id, taken_at) VALUES ($1, $2)
		`, snap.ID(), snap.TakenAt().UTC())
		if err != nil {
			return storageError(err, "insert snapshot")
		}

		for _, q := range snap.Quotes() {
			_, err := tx.Exec(ctx, `
			INSERT INTO market_quotes (
				snapshot_id, ticker, exchange, ask, bid,
				supply, demand, traded, price_average
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
				snap.ID(), q.Ticker, q.Exchange, q.Ask, q.Bid,
				q.Supply, q.Demand, q.Traded, q.PriceAverage,
			)
			if err != nil {
				return storageError(err, "insert quote %s/%s", q.Ticker, q.Exchange)
			}
		}

		for i, o := range snap.Orders() {
			_, err := tx.Exec(ctx, `
			INSERT INTO order_book_entries (
				snapshot_id, position, ticker, exchange, side, price, quantity
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, snap.ID(), i, o.Ticker, o.Exchange, string(o.Side), o.Price, o.Quantity)
			if err != nil {
				return fmt.Errorf("insert order %s/%s: %w", o.Ticker, o.Exchange, err)
			}
		}

		return nil
	})
}

// LoadSnapshot retrieves a snapshot by ID. Returns ErrNotFound if not exists.
func (s *MarketStore) LoadSnapshot(ctx context.Context, snapshotID string) (*market.Snapshot, error) {
	var takenAt time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT taken_at FROM market_snapshots WHERE snapshot_id = $1
	`, snapshotID).Scan(&takenAt)
	if err != nil {
		return nil, storageError(err, "query snapshot")
	}

	quotes, err := s.loadQuotes(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	orders, err := s.loadOrders(ctx, snapshotID)
	if err != nil {
		return nil, err
	}

	return market.NewSnapshot(snapshotID, takenAt.UTC(), quotes, orders)
}

// LatestSnapshotID returns the most recently taken snapshot.
func (s *MarketStore) LatestSnapshotID(ctx context.Context) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT snapshot_id FROM market_snapshots
		ORDER BY taken_at DESC, snapshot_id DESC
		LIMIT 1
	`).Scan(&id)
	if err != nil {
		return "", storageError(err, "query latest snapshot")
	}
	return id, nil
}

func (s *MarketStore) loadQuotes(ctx context.Context, snapshotID string) ([]domain.MarketQuote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ticker, exchange, ask, bid, supply, demand, traded, price_average
		FROM market_quotes
		WHERE snapshot_id = $1
		ORDER BY ticker, exchange
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	var result []domain.MarketQuote
	for rows.Next() {
		var q domain.MarketQuote
		err := rows.Scan(
			&q.Ticker, &q.Exchange, &q.Ask, &q.Bid,
			&q.Supply, &q.Demand, &q.Traded, &q.PriceAverage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		result = append(result, q)
	}
	return result, rows.Err()
}

func (s *MarketStore) loadOrders(ctx context.Context, snapshotID string) ([]domain.OrderBookEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ticker, exchange, side, price, quantity
		FROM order_book_entries
		WHERE snapshot_id = $1
		ORDER BY position
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var result []domain.OrderBookEntry
	for rows.Next() {
		var (
			o    domain.OrderBookEntry
			side string
		)
		if err := rows.Scan(&o.Ticker, &o.Exchange, &side, &o.Price, &o.Quantity); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Side = domain.Side(side)
		result = append(result, o)
	}
	return result, rows.Err()
}

// Compile-time interface check.
var _ storage.MarketStore = (*MarketStore)(nil)
