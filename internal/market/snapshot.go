// Package market holds an immutable market snapshot: one top-of-book quote per
// (material, exchange) and, where available, the full order book ladders.
package market

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"prun-economy-lab/internal/domain"
)

var (
	// ErrDuplicateQuote is returned when a snapshot holds two quotes for one (material, exchange).
	ErrDuplicateQuote = errors.New("duplicate market quote")

	// ErrInvalidOrder is returned for order book entries with an unknown side or negative values.
	ErrInvalidOrder = errors.New("invalid order book entry")
)

type quoteKey struct {
	ticker   string
	exchange string
}

type bookKey struct {
	ticker   string
	exchange string
	side     domain.Side
}

// Snapshot is a read-only market state for one analysis pass.
// All lookups are total: missing data yields zero values.
type Snapshot struct {
	id      string
	takenAt time.Time
	quotes  map[quoteKey]domain.MarketQuote
	books   map[bookKey][]domain.OrderBookEntry // asks ascending, bids descending
}

// NewSnapshot builds a snapshot from quotes and order book entries.
// Entries with zero price or quantity carry no liquidity and are dropped.
func NewSnapshot(id string, takenAt time.Time, quotes []domain.MarketQuote, orders []domain.OrderBookEntry) (*Snapshot, error) {
	s := &Snapshot{
		id:      id,
		takenAt: takenAt,
		quotes:  make(map[quoteKey]domain.MarketQuote, len(quotes)),
		books:   make(map[bookKey][]domain.OrderBookEntry),
	}

	for _, q := range quotes {
		k := quoteKey{ticker: q.Ticker, exchange: q.Exchange}
		if _, ok := s.quotes[k]; ok {
			return nil, fmt.Errorf("%s@%s: %w", q.Ticker, q.Exchange, ErrDuplicateQuote)
		}
		s.quotes[k] = q
	}

	for _, o := range orders {
		if o.Side != domain.SideAsk && o.Side != domain.SideBid {
			return nil, fmt.Errorf("%s@%s side %q: %w", o.Ticker, o.Exchange, o.Side, ErrInvalidOrder)
		}
		if o.Price < 0 || o.Quantity < 0 {
			return nil, fmt.Errorf("%s@%s price=%v qty=%v: %w", o.Ticker, o.Exchange, o.Price, o.Quantity, ErrInvalidOrder)
		}
		if o.Price == 0 || o.Quantity == 0 {
			continue
		}
		k := bookKey{ticker: o.Ticker, exchange: o.Exchange, side: o.Side}
		s.books[k] = append(s.books[k], o)
	}

	for k, entries := range s.books {
		if k.side == domain.SideAsk {
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].Price < entries[j].Price })
		} else {
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].Price > entries[j].Price })
		}
	}

	return s, nil
}

// ID returns the snapshot identifier.
func (s *Snapshot) ID() string { return s.id }

// TakenAt returns when the snapshot was captured.
func (s *Snapshot) TakenAt() time.Time { return s.takenAt }

// Quote returns the quote for (ticker, exchange).
// A missing quote yields a zero quote carrying only the key fields.
func (s *Snapshot) Quote(ticker, exchange string) domain.MarketQuote {
	if q, ok := s.quotes[quoteKey{ticker: ticker, exchange: exchange}]; ok {
		return q
	}
	return domain.MarketQuote{Ticker: ticker, Exchange: exchange}
}

// HasQuote reports whether a quote exists for (ticker, exchange).
func (s *Snapshot) HasQuote(ticker, exchange string) bool {
	_, ok := s.quotes[quoteKey{ticker: ticker, exchange: exchange}]
	return ok
}

// Ask returns the best ask price, 0 when unavailable.
func (s *Snapshot) Ask(ticker, exchange string) float64 {
	return s.Quote(ticker, exchange).Ask
}

// Bid returns the best bid price, 0 when unavailable.
func (s *Snapshot) Bid(ticker, exchange string) float64 {
	return s.Quote(ticker, exchange).Bid
}

// Price returns the ask or bid price depending on side.
func (s *Snapshot) Price(ticker, exchange string, side domain.Side) float64 {
	if side == domain.SideBid {
		return s.Bid(ticker, exchange)
	}
	return s.Ask(ticker, exchange)
}

// Asks returns ask entries for (ticker, exchange) sorted ascending by price.
func (s *Snapshot) Asks(ticker, exchange string) []domain.OrderBookEntry {
	return s.side(ticker, exchange, domain.SideAsk)
}

// Bids returns bid entries for (ticker, exchange) sorted descending by price.
func (s *Snapshot) Bids(ticker, exchange string) []domain.OrderBookEntry {
	return s.side(ticker, exchange, domain.SideBid)
}

func (s *Snapshot) side(ticker, exchange string, side domain.Side) []domain.OrderBookEntry {
	entries := s.books[bookKey{ticker: ticker, exchange: exchange, side: side}]
	if len(entries) == 0 {
		return nil
	}
	return append([]domain.OrderBookEntry(nil), entries...)
}

// HasOrderBook reports whether any order book entries exist for (ticker, exchange).
func (s *Snapshot) HasOrderBook(ticker, exchange string) bool {
	return len(s.books[bookKey{ticker, exchange, domain.SideAsk}]) > 0 ||
		len(s.books[bookKey{ticker, exchange, domain.SideBid}]) > 0
}

// OrderBook returns every entry for ticker across exchanges: asks then bids,
// grouped by exchange in sorted order.
func (s *Snapshot) OrderBook(ticker string) []domain.OrderBookEntry {
	var result []domain.OrderBookEntry
	for _, exchange := range s.Exchanges() {
		result = append(result, s.books[bookKey{ticker, exchange, domain.SideAsk}]...)
		result = append(result, s.books[bookKey{ticker, exchange, domain.SideBid}]...)
	}
	return result
}

// Quotes returns all quotes sorted by ticker, then exchange.
func (s *Snapshot) Quotes() []domain.MarketQuote {
	result := make([]domain.MarketQuote, 0, len(s.quotes))
	for _, q := range s.quotes {
		result = append(result, q)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Ticker != result[j].Ticker {
			return result[i].Ticker < result[j].Ticker
		}
		return result[i].Exchange < result[j].Exchange
	})
	return result
}

// Orders returns all order book entries grouped by ticker, exchange and side.
func (s *Snapshot) Orders() []domain.OrderBookEntry {
	keys := make([]bookKey, 0, len(s.books))
	for k := range s.books {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ticker != keys[j].ticker {
			return keys[i].ticker < keys[j].ticker
		}
		if keys[i].exchange != keys[j].exchange {
			return keys[i].exchange < keys[j].exchange
		}
		return keys[i].side < keys[j].side
	})
	var result []domain.OrderBookEntry
	for _, k := range keys {
		result = append(result, s.books[k]...)
	}
	return result
}

// Exchanges returns the exchanges present in quotes or order books, sorted.
func (s *Snapshot) Exchanges() []string {
	set := make(map[string]struct{})
	for k := range s.quotes {
		set[k.exchange] = struct{}{}
	}
	for k := range s.books {
		set[k.exchange] = struct{}{}
	}
	result := make([]string, 0, len(set))
	for e := range set {
		result = append(result, e)
	}
	sort.Strings(result)
	return result
}
