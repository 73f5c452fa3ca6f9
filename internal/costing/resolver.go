// Package costing resolves the minimum production cost of a material from
// catalog recipes priced against a market snapshot.
package costing

import (
	"fmt"

	"prun-economy-lab/internal/catalog"
	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/market"
)

// Diagnostics receives non-fatal warnings raised while resolving costs.
type Diagnostics interface {
	Warn(w domain.Warning)
}

// Warnings is a Diagnostics sink that appends to a slice. Not safe for concurrent use.
type Warnings []domain.Warning

// Warn implements Diagnostics.
func (w *Warnings) Warn(warning domain.Warning) {
	*w = append(*w, warning)
}

type discard struct{}

func (discard) Warn(domain.Warning) {}

// Options configures a Resolver.
type Options struct {
	// ReferenceExchange prices byproduct allocation weights.
	// Empty means the exchange being resolved.
	ReferenceExchange string
}

// Resolver computes cost breakdowns. It holds no mutable state and may be
// shared across goroutines as long as each uses its own Diagnostics sink.
type Resolver struct {
	catalog *catalog.Catalog
	opts    Options
	diag    Diagnostics
}

// NewResolver creates a resolver over a catalog.
func NewResolver(c *catalog.Catalog, opts Options) *Resolver {
	return &Resolver{catalog: c, opts: opts, diag: discard{}}
}

// WithDiagnostics returns a copy of the resolver reporting to d.
func (r *Resolver) WithDiagnostics(d Diagnostics) *Resolver {
	cp := *r
	if d == nil {
		d = discard{}
	}
	cp.diag = d
	return &cp
}

// candidate is one recipe priced on both sides of the book.
// Amounts are recipe-cycle totals before allocation.
type candidate struct {
	recipe   domain.Recipe
	inputAsk float64
	inputBid float64
	wfAsk    float64
	wfBid    float64
	share    float64 // fraction of the recipe cost attributed to the resolved ticker
	units    float64
}

func (c candidate) perUnit(amount float64) float64 {
	return amount * c.share / c.units
}

// average is the selection key: mean of ask- and bid-priced per-unit totals.
func (c candidate) average() float64 {
	return (c.perUnit(c.inputAsk+c.wfAsk) + c.perUnit(c.inputBid+c.wfBid)) / 2
}

// ResolveCost returns the cost breakdown of ticker on exchange via its cheapest recipe.
// A non-empty recipeKey restricts resolution to that recipe; if it does not
// produce ticker the zero breakdown is returned. Raw materials cost 0.
func (r *Resolver) ResolveCost(ticker string, snap *market.Snapshot, exchange, recipeKey string) domain.CostBreakdown {
	best, ok := minBy(r.candidates(ticker, snap, exchange, recipeKey), candidate.average)
	if !ok {
		return domain.CostBreakdown{Ticker: ticker, UnitsProduced: 1}
	}

	total := best.inputAsk + best.wfAsk
	return domain.CostBreakdown{
		Ticker:            ticker,
		RecipeKey:         best.recipe.Key,
		MaterialInputCost: best.inputAsk,
		WorkforceCost:     best.wfAsk,
		TotalCost:         total,
		AllocatedCost:     total * best.share,
		UnitsProduced:     best.units,
	}
}

// ResolveDetailed returns per-unit input and workforce costs priced at ask and
// at bid for the same recipe ResolveCost would select.
func (r *Resolver) ResolveDetailed(ticker string, snap *market.Snapshot, exchange, recipeKey string) domain.DetailedCost {
	best, ok := minBy(r.candidates(ticker, snap, exchange, recipeKey), candidate.average)
	if !ok {
		return domain.DetailedCost{Ticker: ticker}
	}

	return domain.DetailedCost{
		Ticker:           ticker,
		RecipeKey:        best.recipe.Key,
		InputCostAsk:     best.perUnit(best.inputAsk),
		InputCostBid:     best.perUnit(best.inputBid),
		WorkforceCostAsk: best.perUnit(best.wfAsk),
		WorkforceCostBid: best.perUnit(best.wfBid),
	}
}

// Candidates returns the per-recipe cost breakdowns considered for ticker, in catalog order.
func (r *Resolver) Candidates(ticker string, snap *market.Snapshot, exchange string) []domain.CostBreakdown {
	cands := r.candidates(ticker, snap, exchange, "")
	result := make([]domain.CostBreakdown, len(cands))
	for i, c := range cands {
		total := c.inputAsk + c.wfAsk
		result[i] = domain.CostBreakdown{
			Ticker:            ticker,
			RecipeKey:         c.recipe.Key,
			MaterialInputCost: c.inputAsk,
			WorkforceCost:     c.wfAsk,
			TotalCost:         total,
			AllocatedCost:     total * c.share,
			UnitsProduced:     c.units,
		}
	}
	return result
}

func (r *Resolver) candidates(ticker string, snap *market.Snapshot, exchange, recipeKey string) []candidate {
	var recipes []domain.Recipe
	if recipeKey != "" {
		recipe, ok := r.catalog.Recipe(recipeKey)
		if !ok || !recipe.Produces(ticker) {
			return nil
		}
		recipes = []domain.Recipe{recipe}
	} else {
		recipes = r.catalog.RecipesFor(ticker)
	}

	allocExchange := r.opts.ReferenceExchange
	if allocExchange == "" {
		allocExchange = exchange
	}

	cands := make([]candidate, 0, len(recipes))
	for _, recipe := range recipes {
		units := recipe.OutputQuantity(ticker)
		if units <= 0 {
			units = 1
		}
		c := candidate{
			recipe:   recipe,
			inputAsk: r.inputCost(recipe, snap, exchange, domain.SideAsk),
			inputBid: r.inputCost(recipe, snap, exchange, domain.SideBid),
			share:    allocationWeights(recipe, snap, allocExchange)[ticker],
			units:    units,
		}
		c.wfAsk, c.wfBid = r.workforceCost(recipe, snap, exchange)
		cands = append(cands, c)
	}
	return cands
}

func (r *Resolver) inputCost(recipe domain.Recipe, snap *market.Snapshot, exchange string, side domain.Side) float64 {
	var total float64
	for _, in := range recipe.Inputs {
		price := snap.Price(in.Ticker, exchange, side)
		if price <= 0 {
			if side == domain.SideAsk {
				r.diag.Warn(domain.Warning{
					Kind:      domain.WarningMissingData,
					Ticker:    in.Ticker,
					Exchange:  exchange,
					RecipeKey: recipe.Key,
					Message:   "no ask price for recipe input",
				})
			}
			continue
		}
		total += in.Quantity * price
	}
	return total
}

// workforceCost prices the consumables burnt by the recipe's workforce during one cycle.
// Unresolvable staffing degrades to zero cost with a warning. Unstaffed recipes cost nothing.
func (r *Resolver) workforceCost(recipe domain.Recipe, snap *market.Snapshot, exchange string) (ask, bid float64) {
	if catalog.Unstaffed(recipe) || (recipe.Building == "" && recipe.WorkforceType == "") {
		return 0, 0
	}

	workforceType, headcount, ok := r.catalog.Staffing(recipe)
	if !ok {
		r.diag.Warn(domain.Warning{
			Kind:      domain.WarningInconsistentCatalog,
			RecipeKey: recipe.Key,
			Message:   fmt.Sprintf("no workforce for building %q", recipe.Building),
		})
		return 0, 0
	}

	profile, ok := r.catalog.Profile(workforceType)
	if !ok {
		r.diag.Warn(domain.Warning{
			Kind:      domain.WarningInconsistentCatalog,
			RecipeKey: recipe.Key,
			Message:   fmt.Sprintf("no consumption profile for workforce %q", workforceType),
		})
		return 0, 0
	}

	workerHours := float64(headcount) * recipe.Hours()
	for _, c := range profile.All() {
		amount := c.Rate * workerHours
		ask += amount * snap.Ask(c.Ticker, exchange)
		bid += amount * snap.Bid(c.Ticker, exchange)
	}
	return ask, bid
}

// minBy returns the item with the smallest key. Ties keep the first item.
func minBy[T any](items []T, key func(T) float64) (T, bool) {
	var best T
	if len(items) == 0 {
		return best, false
	}
	best = items[0]
	bestKey := key(best)
	for _, item := range items[1:] {
		if k := key(item); k < bestKey {
			best, bestKey = item, k
		}
	}
	return best, true
}
