package costing

import (
	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/market"
)

// AllocateByproducts splits a recipe's total cost across its distinct outputs in
// proportion to each output's ask price on exchange. Without any positive price
// the cost is split evenly. Allocations sum to totalCost.
func AllocateByproducts(recipe domain.Recipe, totalCost float64, snap *market.Snapshot, exchange string) map[string]float64 {
	weights := allocationWeights(recipe, snap, exchange)
	result := make(map[string]float64, len(weights))
	for ticker, w := range weights {
		result[ticker] = totalCost * w
	}
	return result
}

// allocationWeights returns cost fractions per distinct output ticker, summing to 1.
func allocationWeights(recipe domain.Recipe, snap *market.Snapshot, exchange string) map[string]float64 {
	tickers := distinctOutputs(recipe)
	weights := make(map[string]float64, len(tickers))
	if len(tickers) == 0 {
		return weights
	}
	if len(tickers) == 1 {
		weights[tickers[0]] = 1
		return weights
	}

	var totalPrice float64
	prices := make([]float64, len(tickers))
	for i, t := range tickers {
		if p := snap.Ask(t, exchange); p > 0 {
			prices[i] = p
			totalPrice += p
		}
	}

	if totalPrice <= 0 {
		even := 1 / float64(len(tickers))
		for _, t := range tickers {
			weights[t] = even
		}
		return weights
	}

	for i, t := range tickers {
		weights[t] = prices[i] / totalPrice
	}
	return weights
}

func distinctOutputs(recipe domain.Recipe) []string {
	seen := make(map[string]bool, len(recipe.Outputs))
	result := make([]string, 0, len(recipe.Outputs))
	for _, out := range recipe.Outputs {
		if seen[out.Ticker] {
			continue
		}
		seen[out.Ticker] = true
		result = append(result, out.Ticker)
	}
	return result
}
