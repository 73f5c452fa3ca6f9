// Package orchestrator runs one analysis pass over a catalog and a market snapshot.
// It coordinates: cost resolution → scoring → arbitrage scan → persistence
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"prun-economy-lab/internal/arbitrage"
	"prun-economy-lab/internal/catalog"
	"prun-economy-lab/internal/config"
	"prun-economy-lab/internal/costing"
	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/market"
	"prun-economy-lab/internal/observability"
	"prun-economy-lab/internal/scoring"
	"prun-economy-lab/internal/storage"
)

var (
	// ErrEmptyCatalog is returned when the catalog has no materials.
	ErrEmptyCatalog = errors.New("catalog has no materials")

	// ErrNoSnapshot is returned when no market snapshot was supplied.
	ErrNoSnapshot = errors.New("no market snapshot")
)

// Options for creating Orchestrator.
type Options struct {
	// Required inputs. Both are read-only for the duration of a pass.
	Catalog  *catalog.Catalog
	Snapshot *market.Snapshot

	// Config supplies analysis, scoring and arbitrage settings.
	// Nil uses config.Default().
	Config *config.Config

	// Stores receives results. Nil skips persistence.
	Stores *storage.ResultStores

	Metrics *observability.Metrics
	Logger  zerolog.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Orchestrator coordinates an analysis pass.
// Flow: validate → costs → scores → arbitrage → warnings → persist
type Orchestrator struct {
	catalog  *catalog.Catalog
	snapshot *market.Snapshot
	cfg      *config.Config
	stores   *storage.ResultStores

	resolver *costing.Resolver
	engine   *scoring.Engine
	scanner  *arbitrage.Scanner

	metrics *observability.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a new Orchestrator. Returns an error wrapping
// config.ErrInvalidConfig when the configuration is invalid.
func New(opts Options) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine, err := scoring.NewEngine(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		catalog:  opts.Catalog,
		snapshot: opts.Snapshot,
		cfg:      cfg,
		stores:   opts.Stores,
		resolver: costing.NewResolver(opts.Catalog, costing.Options{
			ReferenceExchange: cfg.Analysis.ReferenceExchange,
		}),
		engine:  engine,
		scanner: arbitrage.NewScanner(cfg.Arbitrage.ScanConfig()),
		metrics: opts.Metrics,
		logger:  opts.Logger.With().Str("component", "orchestrator").Logger(),
		now:     now,
	}, nil
}

// RunResult contains results from one analysis pass.
// Results are keyed, never ordered by worker completion.
type RunResult struct {
	RunID      string
	SnapshotID string
	StartedAt  time.Time
	Duration   time.Duration

	Costs         map[string]domain.CostBreakdown // ticker -> breakdown at the reference exchange
	Detailed      map[string]domain.DetailedCost  // ticker -> ask/bid priced per-unit cost
	Scores        map[domain.ScoreKey]domain.ScoreRecord
	Opportunities []domain.ArbitrageOpportunity // profit desc, then key
	Advice        []domain.ProductionAdvice     // ticker, exchange
	Bottlenecks   []domain.Bottleneck           // ticker, exchange
	Warnings      []domain.Warning              // sorted, deduplicated
}

// Run executes a full analysis pass.
// Phases:
//  1. Validate inputs
//  2. Resolve costs per ticker
//  3. Score every (ticker, exchange)
//  4. Scan arbitrage per ticker
//  5. Collect warnings
//  6. Persist results (when stores are configured)
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result, err := o.run(ctx)
	status := observability.StatusSuccess
	if err != nil {
		status = observability.StatusFailure
	}
	o.metrics.RecordPass(status, o.now())
	return result, err
}

func (o *Orchestrator) run(ctx context.Context) (*RunResult, error) {
	started := o.now()
	result := &RunResult{
		RunID:     uuid.NewString(),
		StartedAt: started,
	}
	log := o.logger.With().Str("run_id", result.RunID).Logger()

	// Phase 1: Validate inputs
	if o.snapshot == nil {
		return nil, fmt.Errorf("phase 1 (validate) failed: %w", ErrNoSnapshot)
	}
	if o.catalog == nil || len(o.catalog.Tickers()) == 0 {
		return nil, fmt.Errorf("phase 1 (validate) failed: %w", ErrEmptyCatalog)
	}
	result.SnapshotID = o.snapshot.ID()
	tickers := o.catalog.Tickers()
	log.Info().
		Str("snapshot_id", result.SnapshotID).
		Int("materials", len(tickers)).
		Strs("exchanges", o.cfg.Analysis.Exchanges).
		Msg("analysis pass started")

	// Phase 2: Cost resolution
	phase := o.now()
	costs, err := o.resolveCosts(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (costs) failed: %w", err)
	}
	result.Costs = make(map[string]domain.CostBreakdown, len(costs))
	result.Detailed = make(map[string]domain.DetailedCost, len(costs))
	var warnings []domain.Warning
	for _, c := range costs {
		result.Costs[c.breakdown.Ticker] = c.breakdown
		result.Detailed[c.detailed.Ticker] = c.detailed
		warnings = append(warnings, c.warnings...)
	}
	o.metrics.RecordPhase("costs", o.now().Sub(phase))
	log.Debug().Int("costs", len(result.Costs)).Msg("phase 2: costs resolved")

	// Phase 3: Scoring
	phase = o.now()
	scored, err := o.score(ctx, tickers, result.Costs)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (scores) failed: %w", err)
	}
	result.Scores = make(map[domain.ScoreKey]domain.ScoreRecord, len(scored))
	for _, s := range scored {
		result.Scores[s.record.Key()] = s.record
		if s.advice != nil {
			result.Advice = append(result.Advice, *s.advice)
		}
		if s.bottleneck != nil {
			result.Bottlenecks = append(result.Bottlenecks, *s.bottleneck)
		}
	}
	o.metrics.RecordPhase("scores", o.now().Sub(phase))
	log.Debug().Int("scores", len(result.Scores)).Msg("phase 3: scores computed")

	// Phase 4: Arbitrage scan
	phase = o.now()
	opps, err := o.scanArbitrage(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("phase 4 (arbitrage) failed: %w", err)
	}
	result.Opportunities = opps
	for _, opp := range opps {
		o.metrics.RecordOpportunity(opp.Level.String())
	}
	o.metrics.RecordPhase("arbitrage", o.now().Sub(phase))
	log.Debug().Int("opportunities", len(opps)).Msg("phase 4: arbitrage scanned")

	// Phase 5: Warnings
	result.Warnings = collectWarnings(warnings)
	for _, w := range result.Warnings {
		o.metrics.RecordWarning(w.Kind)
		log.Warn().
			Str("kind", w.Kind).
			Str("ticker", w.Ticker).
			Str("exchange", w.Exchange).
			Str("recipe", w.RecipeKey).
			Msg(w.Message)
	}
	o.metrics.RecordResults(len(result.Costs), len(result.Scores))

	result.Duration = o.now().Sub(started)

	// Phase 6: Persistence
	if o.stores != nil {
		phase = o.now()
		if err := o.persist(ctx, result); err != nil {
			return nil, fmt.Errorf("phase 6 (persist) failed: %w", err)
		}
		o.metrics.RecordPhase("persist", o.now().Sub(phase))
	}

	log.Info().
		Int("costs", len(result.Costs)).
		Int("scores", len(result.Scores)).
		Int("opportunities", len(result.Opportunities)).
		Int("warnings", len(result.Warnings)).
		Dur("duration", result.Duration).
		Msg("analysis pass completed")

	return result, nil
}

// Header returns the run record stored for this result.
func (r *RunResult) Header(referenceExchange string) domain.AnalysisRun {
	return domain.AnalysisRun{
		RunID:             r.RunID,
		SnapshotID:        r.SnapshotID,
		ReferenceExchange: referenceExchange,
		StartedAt:         r.StartedAt,
		FinishedAt:        r.StartedAt.Add(r.Duration),
		Materials:         len(r.Costs),
		Scores:            len(r.Scores),
		Opportunities:     len(r.Opportunities),
		Warnings:          len(r.Warnings),
	}
}

// SortedScores returns score records by investment score DESC, then ticker, exchange.
func (r *RunResult) SortedScores() []domain.ScoreRecord {
	out := make([]domain.ScoreRecord, 0, len(r.Scores))
	for _, rec := range r.Scores {
		out = append(out, rec)
	}
	SortScores(out)
	return out
}

// SortedCosts returns cost breakdowns ordered by ticker.
func (r *RunResult) SortedCosts() []domain.CostBreakdown {
	out := make([]domain.CostBreakdown, 0, len(r.Costs))
	for _, c := range r.Costs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// SortScores orders records by investment score DESC, then ticker, exchange.
func SortScores(recs []domain.ScoreRecord) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.InvestmentScore != b.InvestmentScore {
			return a.InvestmentScore > b.InvestmentScore
		}
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		return a.Exchange < b.Exchange
	})
}

// costSlot is the output of one cost job.
type costSlot struct {
	breakdown domain.CostBreakdown
	detailed  domain.DetailedCost
	warnings  []domain.Warning
}

// resolveCosts resolves every ticker at the reference exchange.
func (o *Orchestrator) resolveCosts(ctx context.Context, tickers []string) ([]costSlot, error) {
	slots := make([]costSlot, len(tickers))
	exchange := o.cfg.Analysis.ReferenceExchange

	err := o.fanOut(ctx, len(tickers), func(i int) {
		var sink costing.Warnings
		r := o.resolver.WithDiagnostics(&sink)
		slots[i] = costSlot{
			breakdown: r.ResolveCost(tickers[i], o.snapshot, exchange, ""),
			detailed:  r.ResolveDetailed(tickers[i], o.snapshot, exchange, ""),
			warnings:  sink,
		}
	})
	return slots, err
}

// scoreSlot is the output of one scoring job.
type scoreSlot struct {
	record     domain.ScoreRecord
	advice     *domain.ProductionAdvice
	bottleneck *domain.Bottleneck
}

// score computes a record for every (ticker, exchange). Advice is given only for
// produced materials and bottlenecks only where the exchange quotes the ticker.
func (o *Orchestrator) score(ctx context.Context, tickers []string, costs map[string]domain.CostBreakdown) ([]scoreSlot, error) {
	exchanges := o.cfg.Analysis.Exchanges
	slots := make([]scoreSlot, len(tickers)*len(exchanges))
	advice := o.engine.Config().Advice

	err := o.fanOut(ctx, len(slots), func(i int) {
		ticker, exchange := tickers[i/len(exchanges)], exchanges[i%len(exchanges)]
		material, _ := o.catalog.Material(ticker)
		quote := o.snapshot.Quote(ticker, exchange)
		cost := costs[ticker]

		slot := scoreSlot{record: o.engine.Score(material, exchange, quote, cost)}
		if cost.IsProduced() {
			a := scoring.Recommend(quote, cost, advice)
			slot.advice = &a
		}
		if o.snapshot.HasQuote(ticker, exchange) {
			b := scoring.ClassifyBottleneck(material, quote)
			slot.bottleneck = &b
		}
		slots[i] = slot
	})
	return slots, err
}

// scanArbitrage scans every ticker across all configured exchange pairs.
func (o *Orchestrator) scanArbitrage(ctx context.Context, tickers []string) ([]domain.ArbitrageOpportunity, error) {
	slots := make([][]domain.ArbitrageOpportunity, len(tickers))

	err := o.fanOut(ctx, len(tickers), func(i int) {
		slots[i] = o.scanner.Scan(tickers[i], o.snapshot, o.cfg.Analysis.Exchanges)
	})
	if err != nil {
		return nil, err
	}

	var opps []domain.ArbitrageOpportunity
	for _, s := range slots {
		opps = append(opps, s...)
	}
	arbitrage.SortOpportunities(opps)
	return opps, nil
}

// fanOut runs job(i) for i in [0, n) on a bounded worker pool.
// Each job must write only its own slot. Cancellation is checked between jobs.
func (o *Orchestrator) fanOut(ctx context.Context, n int, job func(i int)) error {
	workers := o.cfg.Analysis.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			job(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// persist writes the run header and its results.
func (o *Orchestrator) persist(ctx context.Context, result *RunResult) error {
	header := result.Header(o.cfg.Analysis.ReferenceExchange)

	if o.stores.Costs != nil {
		if err := o.timed("costs", func() error {
			return o.stores.Costs.InsertBulk(ctx, result.RunID, result.SortedCosts())
		}); err != nil {
			return fmt.Errorf("insert costs: %w", err)
		}
	}
	if o.stores.Scores != nil {
		if err := o.timed("scores", func() error {
			return o.stores.Scores.InsertBulk(ctx, result.RunID, result.SortedScores())
		}); err != nil {
			return fmt.Errorf("insert scores: %w", err)
		}
	}
	if o.stores.Opportunities != nil {
		if err := o.timed("opportunities", func() error {
			return o.stores.Opportunities.InsertBulk(ctx, result.RunID, result.Opportunities)
		}); err != nil {
			return fmt.Errorf("insert opportunities: %w", err)
		}
	}
	// Header last: a stored run always has its results.
	if o.stores.Runs != nil {
		if err := o.timed("runs", func() error {
			return o.stores.Runs.Insert(ctx, &header)
		}); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) timed(store string, fn func() error) error {
	start := o.now()
	err := fn()
	o.metrics.RecordStoreWrite(store, o.now().Sub(start), err)
	return err
}

// collectWarnings sorts and deduplicates warnings.
func collectWarnings(ws []domain.Warning) []domain.Warning {
	sort.Slice(ws, func(i, j int) bool {
		a, b := ws[i], ws[j]
		switch {
		case a.Kind != b.Kind:
			return a.Kind < b.Kind
		case a.Ticker != b.Ticker:
			return a.Ticker < b.Ticker
		case a.Exchange != b.Exchange:
			return a.Exchange < b.Exchange
		case a.RecipeKey != b.RecipeKey:
			return a.RecipeKey < b.RecipeKey
		default:
			return a.Message < b.Message
		}
	})

	out := ws[:0]
	for _, w := range ws {
		if len(out) > 0 && w == out[len(out)-1] {
			continue
		}
		out = append(out, w)
	}
	return out
}
