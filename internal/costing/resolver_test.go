package costing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prun-economy-lab/internal/catalog"
	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/market"
)

const eps = 1e-6

func newCatalog(t *testing.T, recipes []domain.Recipe, buildings []domain.Building, profiles []domain.WorkforceProfile) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(nil, recipes, buildings, profiles)
	require.NoError(t, err)
	return c
}

func newSnapshot(t *testing.T, quotes ...domain.MarketQuote) *market.Snapshot {
	t.Helper()
	s, err := market.NewSnapshot("test", time.Time{}, quotes, nil)
	require.NoError(t, err)
	return s
}

func quote(ticker string, ask, bid float64) domain.MarketQuote {
	return domain.MarketQuote{Ticker: ticker, Exchange: "AI1", Ask: ask, Bid: bid}
}

var aluRecipe = domain.Recipe{
	Key:     "R1",
	Inputs:  []domain.RecipeItem{{Ticker: "FE", Quantity: 2}, {Ticker: "CU", Quantity: 1}},
	Outputs: []domain.RecipeItem{{Ticker: "ALU", Quantity: 1}},
}

func TestResolveCost_ExampleScenario(t *testing.T) {
	c := newCatalog(t, []domain.Recipe{aluRecipe}, nil, nil)
	snap := newSnapshot(t, quote("FE", 10, 0), quote("CU", 20, 0))

	got := NewResolver(c, Options{}).ResolveCost("ALU", snap, "AI1", "")

	assert.InDelta(t, 40.0, got.MaterialInputCost, eps)
	assert.InDelta(t, 0.0, got.WorkforceCost, eps)
	assert.InDelta(t, 40.0, got.TotalCost, eps)
	assert.InDelta(t, 40.0, got.UnitCost(), eps)
	assert.Equal(t, 1.0, got.UnitsProduced)
	assert.Equal(t, "R1", got.RecipeKey)
}

func TestResolveCost_WorkforceNone(t *testing.T) {
	unstaffed := aluRecipe
	unstaffed.WorkforceType = domain.WorkforceNone
	c := newCatalog(t, []domain.Recipe{unstaffed}, nil, nil)
	snap := newSnapshot(t, quote("FE", 10, 0), quote("CU", 20, 0))

	var warnings Warnings
	got := NewResolver(c, Options{}).WithDiagnostics(&warnings).ResolveCost("ALU", snap, "AI1", "")

	assert.InDelta(t, 40.0, got.TotalCost, eps)
	assert.Zero(t, got.WorkforceCost)
	assert.Empty(t, warnings)
}

func TestResolveCost_ZeroCostForRawMaterial(t *testing.T) {
	c := newCatalog(t, []domain.Recipe{aluRecipe}, nil, nil)

	snapshots := []*market.Snapshot{
		newSnapshot(t),
		newSnapshot(t, quote("FE", 10, 9)),
		newSnapshot(t, quote("FE", 1e9, 1e9), quote("CU", 5, 5)),
	}

	r := NewResolver(c, Options{})
	for i, snap := range snapshots {
		got := r.ResolveCost("FE", snap, "AI1", "")
		assert.Zero(t, got.TotalCost, "snapshot %d", i)
		assert.Empty(t, got.RecipeKey, "snapshot %d", i)
		assert.Equal(t, 1.0, got.UnitsProduced)
	}
}

func TestResolveCost_SelectsMinimumCostRecipe(t *testing.T) {
	expensive := domain.Recipe{
		Key:     "EXP",
		Inputs:  []domain.RecipeItem{{Ticker: "CU", Quantity: 3}},
		Outputs: []domain.RecipeItem{{Ticker: "ALU", Quantity: 1}},
	}
	cheap := domain.Recipe{
		Key:     "CHEAP",
		Inputs:  []domain.RecipeItem{{Ticker: "FE", Quantity: 1}},
		Outputs: []domain.RecipeItem{{Ticker: "ALU", Quantity: 1}},
	}

	snap := newSnapshot(t, quote("FE", 10, 8), quote("CU", 20, 18))

	for _, order := range [][]domain.Recipe{{expensive, cheap}, {cheap, expensive}} {
		c := newCatalog(t, order, nil, nil)
		got := NewResolver(c, Options{}).ResolveCost("ALU", snap, "AI1", "")
		assert.Equal(t, "CHEAP", got.RecipeKey)
		assert.InDelta(t, 10.0, got.TotalCost, eps)
	}
}

func TestResolveCost_TiesKeepCatalogOrder(t *testing.T) {
	a := domain.Recipe{Key: "A", Inputs: []domain.RecipeItem{{Ticker: "FE", Quantity: 1}}, Outputs: []domain.RecipeItem{{Ticker: "ALU", Quantity: 1}}}
	b := domain.Recipe{Key: "B", Inputs: []domain.RecipeItem{{Ticker: "FE", Quantity: 1}}, Outputs: []domain.RecipeItem{{Ticker: "ALU", Quantity: 1}}}
	c := newCatalog(t, []domain.Recipe{a, b}, nil, nil)

	got := NewResolver(c, Options{}).ResolveCost("ALU", newSnapshot(t, quote("FE", 5, 5)), "AI1", "")
	assert.Equal(t, "A", got.RecipeKey)
}

func TestResolveCost_PerUnitSelection(t *testing.T) {
	// Batch recipe costs more per cycle but less per unit.
	single := domain.Recipe{Key: "ONE", Inputs: []domain.RecipeItem{{Ticker: "FE", Quantity: 1}}, Outputs: []domain.RecipeItem{{Ticker: "ALU", Quantity: 1}}}
	batch := domain.Recipe{Key: "TEN", Inputs: []domain.RecipeItem{{Ticker: "FE", Quantity: 5}}, Outputs: []domain.RecipeItem{{Ticker: "ALU", Quantity: 10}}}
	c := newCatalog(t, []domain.Recipe{single, batch}, nil, nil)

	got := NewResolver(c, Options{}).ResolveCost("ALU", newSnapshot(t, quote("FE", 10, 10)), "AI1", "")
	assert.Equal(t, "TEN", got.RecipeKey)
	assert.InDelta(t, 50.0, got.TotalCost, eps)
	assert.InDelta(t, 5.0, got.UnitCost(), eps)
}

func TestResolveCost_SpecificRecipe(t *testing.T) {
	other := domain.Recipe{Key: "R2", Inputs: []domain.RecipeItem{{Ticker: "FE", Quantity: 1}}, Outputs: []domain.RecipeItem{{Ticker: "STL", Quantity: 1}}}
	c := newCatalog(t, []domain.Recipe{aluRecipe, other}, nil, nil)
	snap := newSnapshot(t, quote("FE", 10, 0), quote("CU", 20, 0))
	r := NewResolver(c, Options{})

	got := r.ResolveCost("ALU", snap, "AI1", "R1")
	assert.InDelta(t, 40.0, got.TotalCost, eps)

	t.Run("recipe does not produce material", func(t *testing.T) {
		got := r.ResolveCost("ALU", snap, "AI1", "R2")
		assert.Zero(t, got.TotalCost)
		assert.Empty(t, got.RecipeKey)
	})

	t.Run("unknown recipe", func(t *testing.T) {
		got := r.ResolveCost("ALU", snap, "AI1", "NOPE")
		assert.Zero(t, got.TotalCost)
	})
}

func TestResolveCost_WorkforceCost(t *testing.T) {
	recipe := domain.Recipe{
		Key:      "SME:1xFEO=>1xFE",
		Building: "SME",
		Duration: 10 * time.Hour,
		Inputs:   []domain.RecipeItem{{Ticker: "FEO", Quantity: 1}},
		Outputs:  []domain.RecipeItem{{Ticker: "FE", Quantity: 1}},
	}
	buildings := []domain.Building{{Code: "SME", Workforce: map[string]int{domain.WorkforcePioneer: 100}}}
	profiles := []domain.WorkforceProfile{{
		Type:      domain.WorkforcePioneer,
		Necessary: []domain.Consumable{{Ticker: "RAT", Rate: catalog.HourlyRate(240)}}, // 0.1 per worker-hour
		Luxury:    []domain.Consumable{{Ticker: "COF", Rate: catalog.HourlyRate(24)}},  // 0.01 per worker-hour
	}}
	c := newCatalog(t, []domain.Recipe{recipe}, buildings, profiles)
	snap := newSnapshot(t, quote("FEO", 5, 4), quote("RAT", 2, 1), quote("COF", 10, 8))

	got := NewResolver(c, Options{}).ResolveCost("FE", snap, "AI1", "")

	// 100 workers * 10h = 1000 worker-hours: 100 RAT * 2 + 10 COF * 10.
	assert.InDelta(t, 300.0, got.WorkforceCost, eps)
	assert.InDelta(t, 5.0, got.MaterialInputCost, eps)
	assert.InDelta(t, 305.0, got.TotalCost, eps)

	detailed := NewResolver(c, Options{}).ResolveDetailed("FE", snap, "AI1", "")
	assert.InDelta(t, 5.0, detailed.InputCostAsk, eps)
	assert.InDelta(t, 4.0, detailed.InputCostBid, eps)
	assert.InDelta(t, 300.0, detailed.WorkforceCostAsk, eps)
	assert.InDelta(t, 180.0, detailed.WorkforceCostBid, eps)
}

func TestResolveCost_InconsistentCatalogWarns(t *testing.T) {
	recipe := domain.Recipe{
		Key:      "GHOST:1xFEO=>1xFE",
		Building: "GHOST",
		Duration: time.Hour,
		Inputs:   []domain.RecipeItem{{Ticker: "FEO", Quantity: 1}},
		Outputs:  []domain.RecipeItem{{Ticker: "FE", Quantity: 1}},
	}
	c := newCatalog(t, []domain.Recipe{recipe}, nil, nil)
	snap := newSnapshot(t, quote("FEO", 5, 4))

	var warnings Warnings
	got := NewResolver(c, Options{}).WithDiagnostics(&warnings).ResolveCost("FE", snap, "AI1", "")

	assert.Zero(t, got.WorkforceCost)
	assert.InDelta(t, 5.0, got.TotalCost, eps)
	require.NotEmpty(t, warnings)
	assert.Equal(t, domain.WarningInconsistentCatalog, warnings[0].Kind)
	assert.Equal(t, "GHOST:1xFEO=>1xFE", warnings[0].RecipeKey)
}

func TestResolveCost_MissingProfileWarns(t *testing.T) {
	recipe := domain.Recipe{
		Key:           "X",
		WorkforceType: domain.WorkforceEngineer,
		Workforce:     10,
		Duration:      time.Hour,
		Outputs:       []domain.RecipeItem{{Ticker: "FE", Quantity: 1}},
	}
	c := newCatalog(t, []domain.Recipe{recipe}, nil, nil)

	var warnings Warnings
	got := NewResolver(c, Options{}).WithDiagnostics(&warnings).ResolveCost("FE", newSnapshot(t), "AI1", "")

	assert.Zero(t, got.TotalCost)
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.WarningInconsistentCatalog, warnings[0].Kind)
}

func TestResolveCost_MissingInputQuoteWarns(t *testing.T) {
	c := newCatalog(t, []domain.Recipe{aluRecipe}, nil, nil)
	snap := newSnapshot(t, quote("FE", 10, 0))

	var warnings Warnings
	got := NewResolver(c, Options{}).WithDiagnostics(&warnings).ResolveCost("ALU", snap, "AI1", "")

	assert.InDelta(t, 20.0, got.TotalCost, eps)
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.WarningMissingData, warnings[0].Kind)
	assert.Equal(t, "CU", warnings[0].Ticker)
}

func TestResolveCost_ByproductShare(t *testing.T) {
	recipe := domain.Recipe{
		Key:     "REF",
		Inputs:  []domain.RecipeItem{{Ticker: "GAL", Quantity: 1}},
		Outputs: []domain.RecipeItem{{Ticker: "ALU", Quantity: 2}, {Ticker: "SLAG", Quantity: 1}},
	}
	c := newCatalog(t, []domain.Recipe{recipe}, nil, nil)
	snap := newSnapshot(t, quote("GAL", 100, 100), quote("ALU", 30, 0), quote("SLAG", 10, 0))

	r := NewResolver(c, Options{})
	alu := r.ResolveCost("ALU", snap, "AI1", "")
	slag := r.ResolveCost("SLAG", snap, "AI1", "")

	assert.InDelta(t, 100.0, alu.TotalCost, eps)
	assert.InDelta(t, 75.0, alu.AllocatedCost, eps)
	assert.InDelta(t, 37.5, alu.UnitCost(), eps)
	assert.InDelta(t, 25.0, slag.AllocatedCost, eps)
	assert.InDelta(t, alu.TotalCost, alu.AllocatedCost+slag.AllocatedCost, eps)
}

func TestMinBy(t *testing.T) {
	_, ok := minBy([]float64{}, func(f float64) float64 { return f })
	if ok {
		t.Error("expected no result for empty input")
	}

	got, ok := minBy([]float64{3, 1, 2, 1}, func(f float64) float64 { return f })
	if !ok || got != 1 {
		t.Errorf("minBy = %v, %v", got, ok)
	}

	type item struct {
		name string
		cost float64
	}
	first, _ := minBy([]item{{"a", 1}, {"b", 1}}, func(i item) float64 { return i.cost })
	if first.name != "a" {
		t.Errorf("tie should keep first item, got %s", first.name)
	}
	if math.IsNaN(first.cost) {
		t.Error("unexpected NaN")
	}
}
