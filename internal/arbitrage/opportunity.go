package arbitrage

import (
	"sort"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/market"
)

// LevelThresholds are matched-quantity lower bounds (exclusive) of each opportunity level.
type LevelThresholds struct {
	VeryHigh float64 `yaml:"very_high"`
	High     float64 `yaml:"high"`
	Medium   float64 `yaml:"medium"`
	Low      float64 `yaml:"low"`
}

// DefaultLevelThresholds returns the default opportunity buckets.
func DefaultLevelThresholds() LevelThresholds {
	return LevelThresholds{
		VeryHigh: 5000,
		High:     1000,
		Medium:   100,
		Low:      10,
	}
}

// Level buckets a matched quantity.
func (t LevelThresholds) Level(quantity float64) domain.OpportunityLevel {
	switch {
	case quantity > t.VeryHigh:
		return domain.OpportunityVeryHigh
	case quantity > t.High:
		return domain.OpportunityHigh
	case quantity > t.Medium:
		return domain.OpportunityMedium
	case quantity > t.Low:
		return domain.OpportunityLow
	default:
		return domain.OpportunityVeryLow
	}
}

// NewOpportunity summarizes a match as an opportunity with average prices and ROI.
func NewOpportunity(ticker, buyExchange, sellExchange string, m MatchResult, levels LevelThresholds) domain.ArbitrageOpportunity {
	opp := domain.ArbitrageOpportunity{
		Ticker:          ticker,
		BuyExchange:     buyExchange,
		SellExchange:    sellExchange,
		MatchedQuantity: m.MatchedQuantity,
		TotalProfit:     m.TotalProfit,
		Level:           levels.Level(m.MatchedQuantity),
		Fills:           m.Fills,
	}
	if m.MatchedQuantity <= 0 {
		return opp
	}

	opp.BuyPrice = m.BuyCost() / m.MatchedQuantity
	opp.SellPrice = m.SellProceeds() / m.MatchedQuantity
	opp.ProfitPerUnit = m.TotalProfit / m.MatchedQuantity
	if opp.BuyPrice > 0 {
		opp.ROIPercent = (opp.SellPrice - opp.BuyPrice) / opp.BuyPrice * 100
	}
	return opp
}

// ScanConfig controls which opportunities a Scanner reports.
type ScanConfig struct {
	Levels LevelThresholds

	// An opportunity is reported only when its profit exceeds both MinProfit
	// and MinProfitFraction of the buy notional.
	MinProfit         float64
	MinProfitFraction float64
}

// Scanner evaluates every ordered exchange pair of a snapshot for one ticker.
type Scanner struct {
	cfg ScanConfig
}

// NewScanner creates a scanner.
func NewScanner(cfg ScanConfig) *Scanner {
	return &Scanner{cfg: cfg}
}

// Scan returns significant opportunities for ticker across exchanges, sorted by
// total profit descending, then buy and sell exchange. Order books are walked
// when both sides have one; otherwise top-of-book quotes are matched.
func (s *Scanner) Scan(ticker string, snap *market.Snapshot, exchanges []string) []domain.ArbitrageOpportunity {
	var result []domain.ArbitrageOpportunity

	for _, buy := range exchanges {
		for _, sell := range exchanges {
			if buy == sell {
				continue
			}

			var (
				m        MatchResult
				fromBook bool
			)
			if snap.HasOrderBook(ticker, buy) && snap.HasOrderBook(ticker, sell) {
				book := append(snap.Asks(ticker, buy), snap.Bids(ticker, sell)...)
				m = Match(ticker, buy, sell, book)
				fromBook = true
			} else {
				m = MatchQuotes(snap.Quote(ticker, buy), snap.Quote(ticker, sell))
			}

			if m.MatchedQuantity <= 0 || m.TotalProfit <= 0 {
				continue
			}

			opp := NewOpportunity(ticker, buy, sell, m, s.cfg.Levels)
			opp.FromOrderBook = fromBook
			if !s.significant(opp) {
				continue
			}
			result = append(result, opp)
		}
	}

	SortOpportunities(result)
	return result
}

func (s *Scanner) significant(opp domain.ArbitrageOpportunity) bool {
	threshold := max(opp.BuyNotional()*s.cfg.MinProfitFraction, s.cfg.MinProfit)
	return opp.TotalProfit > threshold
}

// SortOpportunities orders by total profit descending, then ticker, buy and sell exchange.
func SortOpportunities(opps []domain.ArbitrageOpportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		a, b := opps[i], opps[j]
		if a.TotalProfit != b.TotalProfit {
			return a.TotalProfit > b.TotalProfit
		}
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		if a.BuyExchange != b.BuyExchange {
			return a.BuyExchange < b.BuyExchange
		}
		return a.SellExchange < b.SellExchange
	})
}
