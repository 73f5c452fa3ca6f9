package reporting

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"prun-economy-lab/internal/catalog"
	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/fixtures"
	"prun-economy-lab/internal/orchestrator"
	"prun-economy-lab/internal/storage"
	"prun-economy-lab/internal/storage/memory"
)

var fixedTime = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newStores() storage.ResultStores {
	return storage.ResultStores{
		Runs:          memory.NewRunStore(),
		Costs:         memory.NewCostStore(),
		Scores:        memory.NewScoreStore(),
		Opportunities: memory.NewOpportunityStore(),
	}
}

func runDemo(t *testing.T, stores *storage.ResultStores) (*catalog.Catalog, *orchestrator.RunResult) {
	t.Helper()
	c, err := fixtures.Catalog()
	if err != nil {
		t.Fatalf("load demo catalog: %v", err)
	}
	s, err := fixtures.Snapshot()
	if err != nil {
		t.Fatalf("load demo snapshot: %v", err)
	}
	orch, err := orchestrator.New(orchestrator.Options{
		Catalog:  c,
		Snapshot: s,
		Stores:   stores,
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return c, res
}

func TestFromResult_Summary(t *testing.T) {
	c, res := runDemo(t, nil)
	r := NewGenerator(c, storage.ResultStores{}).
		WithClock(func() time.Time { return fixedTime }).
		FromResult(res, domain.ExchangeAI1)

	if !r.GeneratedAt.Equal(fixedTime) {
		t.Errorf("GeneratedAt: got %v, want %v", r.GeneratedAt, fixedTime)
	}
	if r.Run.RunID != res.RunID || r.Run.ReferenceExchange != domain.ExchangeAI1 {
		t.Errorf("unexpected run header: %+v", r.Run)
	}
	if r.Summary.Materials != 13 {
		t.Errorf("materials: got %d, want 13", r.Summary.Materials)
	}
	if r.Summary.Scores != len(res.Scores) {
		t.Errorf("scores: got %d, want %d", r.Summary.Scores, len(res.Scores))
	}
	if r.Summary.Opportunities != 3 {
		t.Errorf("opportunities: got %d, want 3", r.Summary.Opportunities)
	}
	wantProfit := 200000.0 + 31500 + 8400
	if r.Summary.ArbitrageTotal != wantProfit {
		t.Errorf("arbitrage total: got %v, want %v", r.Summary.ArbitrageTotal, wantProfit)
	}
	if r.Summary.Produced == 0 || r.Summary.Produced >= r.Summary.Materials {
		t.Errorf("expected some but not all materials produced, got %d", r.Summary.Produced)
	}

	for _, a := range r.Advice {
		if a.Recommendation == domain.RecommendNeutral {
			t.Errorf("neutral advice should be filtered: %+v", a)
		}
	}
	for _, b := range r.Bottlenecks {
		if b.Kind == domain.BottleneckBalanced {
			t.Errorf("balanced bottleneck should be filtered: %+v", b)
		}
	}
	for i := 1; i < len(r.Advice); i++ {
		if abs(r.Advice[i].Difference) > abs(r.Advice[i-1].Difference) {
			t.Errorf("advice not sorted by |difference| at %d", i)
		}
	}
}

func TestFromResult_CatalogContext(t *testing.T) {
	c, res := runDemo(t, nil)
	r := NewGenerator(c, storage.ResultStores{}).FromResult(res, domain.ExchangeAI1)

	fe, _ := c.Material("FE")
	var found bool
	for _, row := range r.Costs {
		if row.Ticker != "FE" {
			continue
		}
		found = true
		if row.Name != fe.Name {
			t.Errorf("FE name: got %q, want %q", row.Name, fe.Name)
		}
		if row.Detailed.TotalAsk() == 0 {
			t.Error("expected ask-priced detail for FE")
		}
	}
	if !found {
		t.Error("FE cost row missing")
	}

	for i := 1; i < len(r.Scores); i++ {
		if r.Scores[i].InvestmentScore > r.Scores[i-1].InvestmentScore {
			t.Fatalf("scores not sorted desc at %d", i)
		}
	}
}

func TestGenerate_StoredRun(t *testing.T) {
	stores := newStores()
	c, res := runDemo(t, &stores)

	g := NewGenerator(c, stores).WithClock(func() time.Time { return fixedTime })

	latest, err := g.Generate(context.Background(), "")
	if err != nil {
		t.Fatalf("Generate latest: %v", err)
	}
	if latest.Run.RunID != res.RunID {
		t.Errorf("expected latest run %s, got %s", res.RunID, latest.Run.RunID)
	}

	byID, err := g.Generate(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("Generate by id: %v", err)
	}
	if byID.Summary.Scores != len(res.Scores) {
		t.Errorf("scores: got %d, want %d", byID.Summary.Scores, len(res.Scores))
	}
	if byID.Summary.Opportunities != len(res.Opportunities) {
		t.Errorf("opportunities: got %d, want %d", byID.Summary.Opportunities, len(res.Opportunities))
	}
	if byID.Summary.Warnings != len(res.Warnings) {
		t.Errorf("warnings: got %d, want %d", byID.Summary.Warnings, len(res.Warnings))
	}
	if len(byID.Advice) != 0 || len(byID.Bottlenecks) != 0 {
		t.Error("stored runs carry no advice or bottlenecks")
	}

	md := RenderMarkdown(byID)
	if !strings.Contains(md, "No production advice available.") {
		t.Error("expected advice fallback for stored run")
	}
	if !strings.Contains(md, "warnings were raised; details are not stored") {
		t.Error("expected warning count note for stored run")
	}
}

func TestGenerate_Errors(t *testing.T) {
	_, err := NewGenerator(nil, storage.ResultStores{}).Generate(context.Background(), "")
	if !errors.Is(err, ErrNoStores) {
		t.Errorf("expected ErrNoStores, got %v", err)
	}

	_, err = NewGenerator(nil, newStores()).Generate(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	stores := newStores()
	c, res := runDemo(t, &stores)
	g := NewGenerator(c, stores).WithClock(func() time.Time { return fixedTime })

	r1, err := g.Generate(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	r2, err := g.Generate(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if RenderMarkdown(r1) != RenderMarkdown(r2) {
		t.Error("markdown output not deterministic")
	}
	if RenderScoresCSV(r1.Scores) != RenderScoresCSV(r2.Scores) {
		t.Error("scores CSV not deterministic")
	}
}

func TestRenderMarkdown_Format(t *testing.T) {
	c, res := runDemo(t, nil)
	r := NewGenerator(c, storage.ResultStores{}).
		WithClock(func() time.Time { return fixedTime }).
		FromResult(res, domain.ExchangeAI1)

	md := RenderMarkdown(r)

	sections := []string{
		"# Economic Analysis Report",
		"Generated: 2026-10-17T12:00:00Z",
		"## Summary",
		"## Investment Scores",
		"## Production Costs",
		"## Arbitrage Opportunities",
		"## Production Advice",
		"## Market Bottlenecks",
		"## Warnings",
		"| Materials | 13 |",
		"order book",
	}
	for _, s := range sections {
		if !strings.Contains(md, s) {
			t.Errorf("markdown missing %q", s)
		}
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(&Report{GeneratedAt: fixedTime})

	for _, s := range []string{
		"No scores available.",
		"No costs available.",
		"No arbitrage opportunities found.",
		"No bottlenecks available.",
		"No warnings.",
	} {
		if !strings.Contains(md, s) {
			t.Errorf("markdown missing %q", s)
		}
	}
}

func TestRenderCSV_Quoting(t *testing.T) {
	rows := []CostRow{{
		CostBreakdown: domain.CostBreakdown{
			Ticker:        "FE",
			RecipeKey:     "SME:6xFEO-1xC-1xO=>6xFE",
			TotalCost:     831.25,
			AllocatedCost: 831.25,
			UnitsProduced: 6,
		},
		Name: "Iron, refined",
	}}

	out := RenderCostsCSV(rows)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(records))
	}
	if records[1][1] != "Iron, refined" {
		t.Errorf("name: got %q", records[1][1])
	}
	if records[0][8] != "unit_cost" || records[1][8] != "138.541667" {
		t.Errorf("unit cost column: %q = %q", records[0][8], records[1][8])
	}
}

func TestRenderCSV_DeterministicOrder(t *testing.T) {
	c, res := runDemo(t, nil)
	r := NewGenerator(c, storage.ResultStores{}).FromResult(res, domain.ExchangeAI1)

	out := RenderArbitrageCSV(r)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(lines))
	}
	for i, ticker := range []string{"DW", "FE", "STL"} {
		if !strings.HasPrefix(lines[i+1], ticker+",") {
			t.Errorf("row %d: expected %s first, got %s", i+1, ticker, lines[i+1])
		}
	}

	scores := strings.Split(strings.TrimSpace(RenderScoresCSV(r.Scores)), "\n")
	if len(scores) != len(r.Scores)+1 {
		t.Errorf("expected %d score lines, got %d", len(r.Scores)+1, len(scores))
	}
	if !strings.HasPrefix(RenderAdviceCSV(r), "ticker,exchange,ask_price") {
		t.Error("unexpected advice header")
	}
	if !strings.HasPrefix(RenderBottlenecksCSV(r), "ticker,exchange,kind") {
		t.Error("unexpected bottlenecks header")
	}
}

func TestWriteFiles(t *testing.T) {
	c, res := runDemo(t, nil)
	r := NewGenerator(c, storage.ResultStores{}).
		WithClock(func() time.Time { return fixedTime }).
		FromResult(res, domain.ExchangeAI1)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteFiles(dir, r)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	if len(paths) != 6 {
		t.Fatalf("expected 6 files, got %d", len(paths))
	}

	md, err := os.ReadFile(filepath.Join(dir, FileReport))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if string(md) != RenderMarkdown(r) {
		t.Error("report file does not match rendered markdown")
	}
	if _, err := os.Stat(filepath.Join(dir, FileBottlenecks)); err != nil {
		t.Errorf("bottlenecks file missing: %v", err)
	}
}
