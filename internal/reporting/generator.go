package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"prun-economy-lab/internal/catalog"
	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/orchestrator"
	"prun-economy-lab/internal/storage"
)

// ErrNoStores is returned by Generate when the generator has no run store.
var ErrNoStores = errors.New("reporting: result stores not configured")

// Generator produces reports from pass results or stored runs.
type Generator struct {
	catalog *catalog.Catalog // optional, supplies names and tiers
	stores  storage.ResultStores
	now     func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. Both arguments may be zero
// when only FromResult is used.
func NewGenerator(c *catalog.Catalog, stores storage.ResultStores) *Generator {
	return &Generator{
		catalog: c,
		stores:  stores,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// FromResult builds a report from a finished pass.
func (g *Generator) FromResult(res *orchestrator.RunResult, referenceExchange string) *Report {
	r := &Report{
		GeneratedAt: g.now(),
		Run:         res.Header(referenceExchange),
		Scores:      g.scoreRows(res.SortedScores()),
		Costs:       g.costRows(res.SortedCosts(), res.Detailed),
		Arbitrage:   res.Opportunities,
		Warnings:    res.Warnings,
	}
	for _, a := range res.Advice {
		if a.Recommendation != domain.RecommendNeutral {
			r.Advice = append(r.Advice, a)
		}
	}
	sort.SliceStable(r.Advice, func(i, j int) bool {
		return abs(r.Advice[i].Difference) > abs(r.Advice[j].Difference)
	})
	for _, b := range res.Bottlenecks {
		if b.Kind != domain.BottleneckBalanced {
			r.Bottlenecks = append(r.Bottlenecks, b)
		}
	}
	r.Summary = summarize(r)
	return r
}

// Generate builds a report for a stored run. An empty runID selects the latest run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	if g.stores.Runs == nil {
		return nil, ErrNoStores
	}

	var (
		run *domain.AnalysisRun
		err error
	)
	if runID == "" {
		run, err = g.stores.Runs.GetLatest(ctx)
	} else {
		run, err = g.stores.Runs.GetByID(ctx, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	r := &Report{GeneratedAt: g.now(), Run: *run}

	if g.stores.Scores != nil {
		scores, err := g.stores.Scores.GetByRun(ctx, run.RunID)
		if err != nil {
			return nil, fmt.Errorf("load scores: %w", err)
		}
		r.Scores = g.scoreRows(scores)
	}
	if g.stores.Costs != nil {
		costs, err := g.stores.Costs.GetByRun(ctx, run.RunID)
		if err != nil {
			return nil, fmt.Errorf("load costs: %w", err)
		}
		r.Costs = g.costRows(costs, nil)
	}
	if g.stores.Opportunities != nil {
		opps, err := g.stores.Opportunities.GetByRun(ctx, run.RunID)
		if err != nil {
			return nil, fmt.Errorf("load opportunities: %w", err)
		}
		r.Arbitrage = opps
	}

	r.Summary = summarize(r)
	// The stored header carries the warning count even though warnings are not stored.
	r.Summary.Warnings = run.Warnings
	return r, nil
}

func (g *Generator) scoreRows(recs []domain.ScoreRecord) []ScoreRow {
	rows := make([]ScoreRow, len(recs))
	for i, rec := range recs {
		rows[i] = ScoreRow{ScoreRecord: rec}
		if m, ok := g.material(rec.Ticker); ok {
			rows[i].Name, rows[i].Tier = m.Name, m.Tier
		}
	}
	return rows
}

func (g *Generator) costRows(costs []domain.CostBreakdown, detailed map[string]domain.DetailedCost) []CostRow {
	rows := make([]CostRow, len(costs))
	for i, c := range costs {
		rows[i] = CostRow{CostBreakdown: c, Detailed: detailed[c.Ticker]}
		if m, ok := g.material(c.Ticker); ok {
			rows[i].Name = m.Name
		}
	}
	return rows
}

func (g *Generator) material(ticker string) (domain.Material, bool) {
	if g.catalog == nil {
		return domain.Material{}, false
	}
	return g.catalog.Material(ticker)
}

func summarize(r *Report) Summary {
	s := Summary{
		Materials:     len(r.Costs),
		Scores:        len(r.Scores),
		Opportunities: len(r.Arbitrage),
		Warnings:      len(r.Warnings),
	}
	for _, c := range r.Costs {
		if c.IsProduced() {
			s.Produced++
		}
	}
	for _, rec := range r.Scores {
		if rec.Viability >= domain.Viable {
			s.Viable++
		}
	}
	for _, o := range r.Arbitrage {
		s.ArbitrageTotal += o.TotalProfit
	}
	return s
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
