package domain

// Exchange codes of the commodity exchanges.
const (
	ExchangeAI1 = "AI1"
	ExchangeCI1 = "CI1"
	ExchangeCI2 = "CI2"
	ExchangeIC1 = "IC1"
	ExchangeNC1 = "NC1"
	ExchangeNC2 = "NC2"
)

// Exchanges lists all known exchange codes.
var Exchanges = []string{
	ExchangeAI1,
	ExchangeCI1,
	ExchangeCI2,
	ExchangeIC1,
	ExchangeNC1,
	ExchangeNC2,
}

// MarketQuote is the top-of-book summary for one material on one exchange.
// Zero prices mean no liquidity, never a valid price.
type MarketQuote struct {
	Ticker       string  `json:"ticker"`
	Exchange     string  `json:"exchange"`
	Ask          float64 `json:"ask"`           // best ask, 0 = none
	Bid          float64 `json:"bid"`           // best bid, 0 = none
	Supply       float64 `json:"supply"`        // units offered
	Demand       float64 `json:"demand"`        // units wanted
	Traded       float64 `json:"traded"`        // traded volume
	PriceAverage float64 `json:"price_average"` // 0 = none
}

// HasAsk reports whether the quote carries a usable ask price.
func (q MarketQuote) HasAsk() bool { return q.Ask > 0 }

// HasBid reports whether the quote carries a usable bid price.
func (q MarketQuote) HasBid() bool { return q.Bid > 0 }

// ReferencePrice returns the price average, falling back to ask, then bid.
func (q MarketQuote) ReferencePrice() float64 {
	switch {
	case q.PriceAverage > 0:
		return q.PriceAverage
	case q.Ask > 0:
		return q.Ask
	case q.Bid > 0:
		return q.Bid
	default:
		return 0
	}
}

// Side of an order book entry.
type Side string

const (
	SideAsk Side = "ask"
	SideBid Side = "bid"
)

// OrderBookEntry is a single priced order on one side of the book.
type OrderBookEntry struct {
	Ticker   string  `json:"ticker"`
	Exchange string  `json:"exchange"`
	Side     Side    `json:"side"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}
