package scoring

import (
	"math"

	"prun-economy-lab/internal/domain"
)

// ROI returns profit as a percentage of cost.
// A zero cost yields roiCap when price is positive, else 0.
func ROI(profit, cost, price, roiCap float64) float64 {
	if cost > 0 {
		return profit / cost * 100
	}
	if price > 0 {
		return roiCap
	}
	return 0
}

// Saturation returns supply/demand*100 capped at saturationCap.
// No demand is fully saturated (100, or the cap if lower); no supply is 0.
func Saturation(supply, demand, saturationCap float64) float64 {
	if demand <= 0 {
		return math.Min(100, saturationCap)
	}
	if supply <= 0 {
		return 0
	}
	return math.Min(saturationCap, supply/demand*100)
}

// LiquidityRatio returns traded volume relative to open interest.
func LiquidityRatio(traded, supply, demand float64) float64 {
	denom := supply + demand
	if denom <= 0 {
		return 0
	}
	return traded / denom
}

// Volatility returns the ask-bid spread relative to the quote's reference price.
// One-sided or empty books have no measurable volatility and yield 0.
func Volatility(q domain.MarketQuote) float64 {
	if !q.HasAsk() || !q.HasBid() {
		return 0
	}
	ref := q.ReferencePrice()
	if ref <= 0 {
		return 0
	}
	return math.Abs(q.Ask-q.Bid) / ref
}

// SpreadPct returns (ask - bid) as a percentage of ask. One-sided books yield 0.
func SpreadPct(q domain.MarketQuote) float64 {
	if !q.HasAsk() || !q.HasBid() {
		return 0
	}
	return (q.Ask - q.Bid) / q.Ask * 100
}

// RiskPoints returns the raw risk score before bucketing.
func RiskPoints(tier int, volatility, supply float64, t RiskThresholds) float64 {
	points := float64(tier)*t.TierWeight + volatility*t.VolatilityWeight
	switch {
	case supply < t.ScarceSupply:
		points += t.ScarcePoints
	case supply < t.ThinSupply:
		points += t.ThinPoints
	}
	return points
}

// Risk buckets risk points into an ordinal level.
func Risk(tier int, volatility, supply float64, t RiskThresholds) domain.RiskLevel {
	points := RiskPoints(tier, volatility, supply, t)
	switch {
	case points <= t.LowMax:
		return domain.RiskLow
	case points <= t.MediumMax:
		return domain.RiskMedium
	case points <= t.HighMax:
		return domain.RiskHigh
	default:
		return domain.RiskVeryHigh
	}
}

// Viability maps (profitable, has volume, has demand) to an ordinal outcome.
func Viability(profitAsk, profitBid, traded, supply, demand, demandFraction float64) domain.Viability {
	profitable := profitAsk > 0 || profitBid > 0
	hasVolume := traded > 0
	hasDemand := demand > supply*demandFraction

	switch {
	case profitable && hasVolume && hasDemand:
		return domain.HighlyViable
	case profitable && (hasVolume || hasDemand):
		return domain.Viable
	case profitable:
		return domain.Marginal
	default:
		return domain.NotViable
	}
}

// Inputs are the raw figures combined into an investment score.
type Inputs struct {
	ROI          float64 // best of ROI at ask and bid, percent
	Liquidity    float64
	Traded       float64
	Saturation   float64
	SpreadPct    float64
	Volatility   float64
	TwoSidedBook bool // spread and volatility are only credited for two-sided books
}

// Components are normalized investment score inputs in [0, 1].
type Components struct {
	ROI        float64
	Liquidity  float64
	Traded     float64
	Saturation float64
	Spread     float64
	Volatility float64
}

// Normalize maps raw inputs to [0, 1] components.
func Normalize(in Inputs, n Normalization) Components {
	c := Components{
		ROI:        clamp01(in.ROI / n.ROI),
		Liquidity:  clamp01(in.Liquidity / n.Liquidity),
		Traded:     clamp01(math.Log1p(math.Max(in.Traded, 0)) / math.Log1p(n.Traded)),
		Saturation: clamp01(1 - math.Abs(in.Saturation-100)/100),
	}
	if in.TwoSidedBook {
		c.Spread = clamp01(1 - in.SpreadPct/100)
		c.Volatility = clamp01(1 - in.Volatility/n.Volatility)
	}
	return c
}

// InvestmentScore returns the weighted component sum scaled to [0, 100],
// reduced by cfg.Penalty once per triggered penalty.
func InvestmentScore(in Inputs, cfg Config) float64 {
	c := Normalize(in, cfg.Normalization)
	w := cfg.Weights
	score := 100 * (w.ROI*c.ROI +
		w.Liquidity*c.Liquidity +
		w.Traded*c.Traded +
		w.Saturation*c.Saturation +
		w.Spread*c.Spread +
		w.Volatility*c.Volatility)

	p := cfg.Penalties
	if in.Saturation < p.SaturationLow || in.Saturation > p.SaturationHigh {
		score *= cfg.Penalty
	}
	if in.SpreadPct > p.SpreadPct {
		score *= cfg.Penalty
	}
	if in.Volatility > p.Volatility {
		score *= cfg.Penalty
	}

	return math.Max(0, math.Min(100, score))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
