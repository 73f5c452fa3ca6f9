package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"prun-economy-lab/internal/domain"
)

func TestAllocateByproducts_Conservation(t *testing.T) {
	recipe := domain.Recipe{
		Key: "MULTI",
		Outputs: []domain.RecipeItem{
			{Ticker: "A", Quantity: 1},
			{Ticker: "B", Quantity: 3},
			{Ticker: "C", Quantity: 7},
		},
	}

	totals := []float64{0, 1, 99.99, 12345.678, 1e9 / 3}
	snap := newSnapshot(t, quote("A", 13.37, 0), quote("B", 0.01, 0), quote("C", 777, 0))

	for _, total := range totals {
		alloc := AllocateByproducts(recipe, total, snap, "AI1")
		var sum float64
		for _, v := range alloc {
			sum += v
		}
		assert.Len(t, alloc, 3)
		assert.InDelta(t, total, sum, eps, "total=%v", total)
	}
}

func TestAllocateByproducts_ProportionalToPrice(t *testing.T) {
	recipe := domain.Recipe{
		Key:     "REF",
		Outputs: []domain.RecipeItem{{Ticker: "ALU", Quantity: 2}, {Ticker: "SLAG", Quantity: 1}},
	}
	snap := newSnapshot(t, quote("ALU", 30, 0), quote("SLAG", 10, 0))

	alloc := AllocateByproducts(recipe, 100, snap, "AI1")
	assert.InDelta(t, 75.0, alloc["ALU"], eps)
	assert.InDelta(t, 25.0, alloc["SLAG"], eps)
}

func TestAllocateByproducts_EvenSplitWithoutPrices(t *testing.T) {
	recipe := domain.Recipe{
		Key:     "REF",
		Outputs: []domain.RecipeItem{{Ticker: "ALU", Quantity: 2}, {Ticker: "SLAG", Quantity: 1}},
	}

	alloc := AllocateByproducts(recipe, 90, newSnapshot(t), "AI1")
	assert.InDelta(t, 45.0, alloc["ALU"], eps)
	assert.InDelta(t, 45.0, alloc["SLAG"], eps)
}

func TestAllocateByproducts_UnpricedOutputGetsNothing(t *testing.T) {
	recipe := domain.Recipe{
		Key:     "REF",
		Outputs: []domain.RecipeItem{{Ticker: "ALU", Quantity: 1}, {Ticker: "SLAG", Quantity: 1}},
	}
	snap := newSnapshot(t, quote("ALU", 30, 0))

	alloc := AllocateByproducts(recipe, 60, snap, "AI1")
	assert.InDelta(t, 60.0, alloc["ALU"], eps)
	assert.InDelta(t, 0.0, alloc["SLAG"], eps)
}

func TestAllocateByproducts_SingleOutput(t *testing.T) {
	alloc := AllocateByproducts(aluRecipe, 40, newSnapshot(t), "AI1")
	assert.Equal(t, map[string]float64{"ALU": 40}, alloc)
}
