package ingest

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/idhash"
	"prun-economy-lab/internal/market"
)

// SnapshotFile is the on-disk layout of a market snapshot.
// A missing id is derived from the content.
type SnapshotFile struct {
	ID      string     `yaml:"id"`
	TakenAt time.Time  `yaml:"taken_at"`
	Quotes  []QuoteRow `yaml:"quotes"`
	Orders  []OrderRow `yaml:"orders"`
}

// QuoteRow is one top-of-book quote. Absent prices decode as 0 (no liquidity).
type QuoteRow struct {
	Ticker       string  `yaml:"ticker"`
	Exchange     string  `yaml:"exchange"`
	Ask          float64 `yaml:"ask"`
	Bid          float64 `yaml:"bid"`
	Supply       float64 `yaml:"supply"`
	Demand       float64 `yaml:"demand"`
	Traded       float64 `yaml:"traded"`
	PriceAverage float64 `yaml:"price_average"`
}

// OrderRow is one order book entry.
type OrderRow struct {
	Ticker   string  `yaml:"ticker"`
	Exchange string  `yaml:"exchange"`
	Side     string  `yaml:"side"`
	Price    float64 `yaml:"price"`
	Quantity float64 `yaml:"quantity"`
}

// LoadSnapshot reads and builds a snapshot from a file.
func LoadSnapshot(path string) (*market.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// ReadSnapshot decodes and builds a snapshot.
func ReadSnapshot(r io.Reader) (*market.Snapshot, error) {
	var file SnapshotFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return file.Build()
}

// Build converts file rows into a snapshot.
func (f SnapshotFile) Build() (*market.Snapshot, error) {
	quotes := make([]domain.MarketQuote, len(f.Quotes))
	for i, q := range f.Quotes {
		quotes[i] = domain.MarketQuote{
			Ticker:       q.Ticker,
			Exchange:     q.Exchange,
			Ask:          q.Ask,
			Bid:          q.Bid,
			Supply:       q.Supply,
			Demand:       q.Demand,
			Traded:       q.Traded,
			PriceAverage: q.PriceAverage,
		}
	}

	orders := make([]domain.OrderBookEntry, len(f.Orders))
	for i, o := range f.Orders {
		orders[i] = domain.OrderBookEntry{
			Ticker:   o.Ticker,
			Exchange: o.Exchange,
			Side:     domain.Side(o.Side),
			Price:    o.Price,
			Quantity: o.Quantity,
		}
	}

	id := f.ID
	if id == "" {
		id = idhash.ComputeSnapshotID(f.TakenAt, quotes, orders)
	}
	return market.NewSnapshot(id, f.TakenAt, quotes, orders)
}
