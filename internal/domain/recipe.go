package domain

import "time"

// RecipeItem is one (material, quantity) pair on either side of a recipe.
type RecipeItem struct {
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
}

// Recipe describes one production route in a building.
type Recipe struct {
	Key           string        `json:"key"`            // unique, e.g. "SME:6xFEO-1xC-1xO=>6xFE"
	Building      string        `json:"building"`       // building code
	WorkforceType string        `json:"workforce_type"` // empty = inherit from building
	Workforce     int           `json:"workforce"`      // headcount staffing the building
	Duration      time.Duration `json:"duration"`       // time per production cycle
	Inputs        []RecipeItem  `json:"inputs"`         // ordered
	Outputs       []RecipeItem  `json:"outputs"`        // ordered
}

// OutputQuantity returns the quantity of ticker produced by one cycle.
// Returns 0 if the recipe does not produce ticker.
func (r Recipe) OutputQuantity(ticker string) float64 {
	var total float64
	for _, out := range r.Outputs {
		if out.Ticker == ticker {
			total += out.Quantity
		}
	}
	return total
}

// Produces reports whether ticker is among the recipe outputs.
func (r Recipe) Produces(ticker string) bool {
	for _, out := range r.Outputs {
		if out.Ticker == ticker {
			return true
		}
	}
	return false
}

// IsByproduct reports whether the recipe yields more than one distinct output material.
func (r Recipe) IsByproduct() bool {
	if len(r.Outputs) < 2 {
		return false
	}
	first := r.Outputs[0].Ticker
	for _, out := range r.Outputs[1:] {
		if out.Ticker != first {
			return true
		}
	}
	return false
}

// Hours returns the cycle duration in hours.
func (r Recipe) Hours() float64 {
	return r.Duration.Hours()
}
