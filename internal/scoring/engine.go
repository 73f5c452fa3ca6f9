// Package scoring turns cost breakdowns and market quotes into profitability,
// risk, viability and investment score figures.
//
// All functions are pure: identical inputs always yield identical records.
package scoring

import (
	"math"

	"prun-economy-lab/internal/domain"
)

// Engine scores materials under one immutable Config.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an engine bound to it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's scoring policy.
func (e *Engine) Config() Config {
	return e.cfg
}

// Score computes the score record of material on exchange.
// Profit and ROI use the breakdown's allocated per-unit cost.
func (e *Engine) Score(m domain.Material, exchange string, q domain.MarketQuote, cost domain.CostBreakdown) domain.ScoreRecord {
	unitCost := cost.UnitCost()

	rec := domain.ScoreRecord{
		Ticker:         m.Ticker,
		Exchange:       exchange,
		UnitCost:       unitCost,
		Saturation:     Saturation(q.Supply, q.Demand, e.cfg.SaturationCap),
		LiquidityRatio: LiquidityRatio(q.Traded, q.Supply, q.Demand),
		Volatility:     Volatility(q),
		SpreadPct:      SpreadPct(q),
	}

	// A missing price is no liquidity: no profit is realizable on that side.
	if q.HasAsk() {
		rec.ProfitAsk = q.Ask - unitCost
		rec.ROIAsk = ROI(rec.ProfitAsk, unitCost, q.Ask, e.cfg.ROICap)
	}
	if q.HasBid() {
		rec.ProfitBid = q.Bid - unitCost
		rec.ROIBid = ROI(rec.ProfitBid, unitCost, q.Bid, e.cfg.ROICap)
	}

	rec.Risk = Risk(m.Tier, rec.Volatility, q.Supply, e.cfg.Risk)
	rec.Viability = Viability(rec.ProfitAsk, rec.ProfitBid, q.Traded, q.Supply, q.Demand, e.cfg.DemandFraction)
	rec.InvestmentScore = InvestmentScore(Inputs{
		ROI:          math.Max(rec.ROIAsk, rec.ROIBid),
		Liquidity:    rec.LiquidityRatio,
		Traded:       q.Traded,
		Saturation:   rec.Saturation,
		SpreadPct:    rec.SpreadPct,
		Volatility:   rec.Volatility,
		TwoSidedBook: q.HasAsk() && q.HasBid(),
	}, e.cfg)

	return rec
}
