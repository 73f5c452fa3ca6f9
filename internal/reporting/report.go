package reporting

import (
	"time"

	"prun-economy-lab/internal/domain"
)

// Report is the rendered view of one analysis run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Run         domain.AnalysisRun

	Summary Summary

	// Scores sorted by investment score DESC, then ticker, exchange
	Scores []ScoreRow

	// Costs sorted by ticker
	Costs []CostRow

	// Arbitrage sorted by total profit DESC
	Arbitrage []domain.ArbitrageOpportunity

	// Advice and bottlenecks are computed per pass and not persisted;
	// reports generated from stored runs leave them empty.
	Advice      []domain.ProductionAdvice // non-neutral only
	Bottlenecks []domain.Bottleneck       // non-balanced only
	Warnings    []domain.Warning
}

// Summary contains headline counts.
type Summary struct {
	Materials      int
	Produced       int // materials with a producing recipe
	Scores         int
	Viable         int // Viable or Highly Viable records
	Opportunities  int
	ArbitrageTotal float64 // sum of reported opportunity profit
	Warnings       int
}

// ScoreRow is a score record with catalog context.
type ScoreRow struct {
	domain.ScoreRecord
	Name string
	Tier int
}

// CostRow is a cost breakdown with catalog context and ask/bid detail.
type CostRow struct {
	domain.CostBreakdown
	Name     string
	Detailed domain.DetailedCost // zero for stored runs
}
