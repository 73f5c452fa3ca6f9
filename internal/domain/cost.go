package domain

// CostBreakdown is the production cost estimate of one material via its best recipe.
// All amounts are recipe-cycle totals priced at ask unless noted.
type CostBreakdown struct {
	Ticker            string  `json:"ticker"`
	RecipeKey         string  `json:"recipe_key"`          // empty for raw goods
	MaterialInputCost float64 `json:"material_input_cost"` // sum of input quantity * ask
	WorkforceCost     float64 `json:"workforce_cost"`      // consumables burnt during one cycle
	TotalCost         float64 `json:"total_cost"`          // material + workforce
	AllocatedCost     float64 `json:"allocated_cost"`      // share of TotalCost attributed to Ticker
	UnitsProduced     float64 `json:"units_produced"`      // output quantity of Ticker, >= 1
}

// UnitCost returns the allocated cost per produced unit.
func (c CostBreakdown) UnitCost() float64 {
	if c.UnitsProduced <= 0 {
		return 0
	}
	return c.AllocatedCost / c.UnitsProduced
}

// IsProduced reports whether a producing recipe was selected.
func (c CostBreakdown) IsProduced() bool {
	return c.RecipeKey != ""
}

// DetailedCost holds per-unit costs of the selected recipe priced at both sides of the book.
type DetailedCost struct {
	Ticker           string  `json:"ticker"`
	RecipeKey        string  `json:"recipe_key"`
	InputCostAsk     float64 `json:"input_cost_ask"`
	InputCostBid     float64 `json:"input_cost_bid"`
	WorkforceCostAsk float64 `json:"workforce_cost_ask"`
	WorkforceCostBid float64 `json:"workforce_cost_bid"`
}

// TotalAsk returns the per-unit total cost priced at ask.
func (d DetailedCost) TotalAsk() float64 { return d.InputCostAsk + d.WorkforceCostAsk }

// TotalBid returns the per-unit total cost priced at bid.
func (d DetailedCost) TotalBid() float64 { return d.InputCostBid + d.WorkforceCostBid }

// Average returns the mean of ask- and bid-priced per-unit totals.
func (d DetailedCost) Average() float64 { return (d.TotalAsk() + d.TotalBid()) / 2 }

// Warning kinds reported on the diagnostics channel.
const (
	WarningMissingData         = "missing_data"
	WarningInconsistentCatalog = "inconsistent_catalog"
)

// Warning is a non-fatal diagnostic produced during an analysis pass.
type Warning struct {
	Kind      string `json:"kind"`
	Ticker    string `json:"ticker,omitempty"`
	Exchange  string `json:"exchange,omitempty"`
	RecipeKey string `json:"recipe_key,omitempty"`
	Message   string `json:"message"`
}
