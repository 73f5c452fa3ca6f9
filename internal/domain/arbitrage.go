package domain

// Fill is one matched (ask, bid) pair of an order book walk.
type Fill struct {
	AskPrice float64 `json:"ask_price"`
	BidPrice float64 `json:"bid_price"`
	Quantity float64 `json:"quantity"`
	Profit   float64 `json:"profit"` // quantity * (bid - ask), never negative
}

// ArbitrageOpportunity is a cross-exchange buy-low/sell-high trade for one material.
type ArbitrageOpportunity struct {
	Ticker          string           `json:"ticker"`
	BuyExchange     string           `json:"buy_exchange"`
	SellExchange    string           `json:"sell_exchange"`
	BuyPrice        float64          `json:"buy_price"`  // volume-weighted average buy price
	SellPrice       float64          `json:"sell_price"` // volume-weighted average sell price
	MatchedQuantity float64          `json:"matched_quantity"`
	TotalProfit     float64          `json:"total_profit"`
	ProfitPerUnit   float64          `json:"profit_per_unit"`
	ROIPercent      float64          `json:"roi_percent"`
	Level           OpportunityLevel `json:"level"`
	FromOrderBook   bool             `json:"from_order_book"` // false = synthetic top-of-book match
	Fills           []Fill           `json:"fills,omitempty"`
}

// BuyNotional returns the total spent on the buy leg.
func (o ArbitrageOpportunity) BuyNotional() float64 {
	return o.BuyPrice * o.MatchedQuantity
}
