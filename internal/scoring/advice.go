package scoring

import (
	"fmt"
	"math"

	"prun-economy-lab/internal/domain"
)

// AdviceThresholds bound the ask-minus-cost difference for buy-vs-produce advice.
type AdviceThresholds struct {
	Strong float64 `yaml:"strong"` // |diff| above this is a high-confidence call
	Weak   float64 `yaml:"weak"`   // |diff| up to this is neutral
}

// DefaultAdviceThresholds returns the default buy-vs-produce bounds.
func DefaultAdviceThresholds() AdviceThresholds {
	return AdviceThresholds{Strong: 100, Weak: 20}
}

// Recommend compares buying one unit at ask with producing it at the breakdown's unit cost.
func Recommend(q domain.MarketQuote, cost domain.CostBreakdown, t AdviceThresholds) domain.ProductionAdvice {
	advice := domain.ProductionAdvice{
		Ticker:         q.Ticker,
		Exchange:       q.Exchange,
		AskPrice:       q.Ask,
		ProduceCost:    cost.UnitCost(),
		Recommendation: domain.RecommendNeutral,
		Confidence:     "Low",
	}
	if !q.HasAsk() {
		return advice
	}

	diff := q.Ask - advice.ProduceCost
	advice.Difference = diff

	switch {
	case diff < -t.Strong:
		advice.Recommendation, advice.Confidence = domain.RecommendBuy, "High"
	case diff < -t.Weak:
		advice.Recommendation, advice.Confidence = domain.RecommendBuy, "Medium"
	case diff > t.Strong:
		advice.Recommendation, advice.Confidence = domain.RecommendProduce, "High"
	case diff > t.Weak:
		advice.Recommendation, advice.Confidence = domain.RecommendProduce, "Medium"
	}
	return advice
}

const (
	criticalSupply     = 10
	criticalDemand     = 50
	highDemandRatio    = 5
	shortageRatio      = 2
	oversupplyRatio    = 5
	limitedTier        = 4
	limitedSupplyBelow = 50
)

// ClassifyBottleneck labels the supply/demand balance of a material on one exchange.
func ClassifyBottleneck(m domain.Material, q domain.MarketQuote) domain.Bottleneck {
	b := domain.Bottleneck{
		Ticker:   m.Ticker,
		Exchange: q.Exchange,
		Supply:   q.Supply,
		Demand:   q.Demand,
		Tier:     m.Tier,
		Kind:     domain.BottleneckBalanced,
	}
	if q.Supply > 0 {
		b.Ratio = q.Demand / q.Supply
	}

	switch {
	case q.Supply < criticalSupply && q.Demand > criticalDemand:
		b.Kind = domain.BottleneckCritical
		b.Description = fmt.Sprintf("only %.0f units offered against demand of %.0f", q.Supply, q.Demand)
	case q.Supply > 0 && b.Ratio > highDemandRatio:
		b.Kind = domain.BottleneckHighDemand
		b.Description = fmt.Sprintf("demand is %.1fx supply", b.Ratio)
	case q.Supply > 0 && b.Ratio > shortageRatio:
		b.Kind = domain.BottleneckSupplyShortage
		b.Description = fmt.Sprintf("demand is %.1fx supply", b.Ratio)
	case q.Demand > 0 && q.Supply/q.Demand > oversupplyRatio:
		b.Kind = domain.BottleneckOversupply
		b.Description = fmt.Sprintf("supply is %.1fx demand", q.Supply/q.Demand)
	case m.Tier >= limitedTier && q.Supply < limitedSupplyBelow:
		b.Kind = domain.BottleneckProductionLimited
		b.Description = fmt.Sprintf("tier %d good with %.0f units offered", m.Tier, q.Supply)
	}

	if math.IsInf(b.Ratio, 0) || math.IsNaN(b.Ratio) {
		b.Ratio = 0
	}
	return b
}
