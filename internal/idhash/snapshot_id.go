// Package idhash derives deterministic identifiers from content.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"prun-economy-lab/internal/domain"
)

// ComputeSnapshotID computes a deterministic snapshot_id using SHA256.
// Formula: SHA256(taken_at_ms|quote rows|order rows), rows sorted so input order
// does not matter.
// Returns hex-encoded hash (64 characters).
func ComputeSnapshotID(takenAt time.Time, quotes []domain.MarketQuote, orders []domain.OrderBookEntry) string {
	rows := make([]string, 0, len(quotes)+len(orders))
	for _, q := range quotes {
		rows = append(rows, fmt.Sprintf("q|%s|%s|%g|%g|%g|%g|%g|%g",
			q.Ticker, q.Exchange, q.Ask, q.Bid, q.Supply, q.Demand, q.Traded, q.PriceAverage))
	}
	for _, o := range orders {
		rows = append(rows, fmt.Sprintf("o|%s|%s|%s|%g|%g",
			o.Ticker, o.Exchange, o.Side, o.Price, o.Quantity))
	}
	sort.Strings(rows)

	data := fmt.Sprintf("%d|%s", takenAt.UnixMilli(), strings.Join(rows, "|"))

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
