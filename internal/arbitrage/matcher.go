// Package arbitrage walks order books of two exchanges to size cross-exchange
// buy-low/sell-high trades.
package arbitrage

import (
	"sort"

	"prun-economy-lab/internal/domain"
)

// MatchResult is the outcome of one greedy two-sided match.
type MatchResult struct {
	MatchedQuantity float64
	TotalProfit     float64
	Fills           []domain.Fill
	Steps           int // loop iterations, at most len(asks)+len(bids)
}

// BuyCost returns the total paid on the ask side.
func (m MatchResult) BuyCost() float64 {
	var total float64
	for _, f := range m.Fills {
		total += f.AskPrice * f.Quantity
	}
	return total
}

// SellProceeds returns the total received on the bid side.
func (m MatchResult) SellProceeds() float64 {
	var total float64
	for _, f := range m.Fills {
		total += f.BidPrice * f.Quantity
	}
	return total
}

// Match buys ticker from asks on buyExchange and sells into bids on sellExchange.
// Entries for other tickers or exchanges are ignored. Same-exchange calls are
// allowed and match self-crossing orders.
func Match(ticker, buyExchange, sellExchange string, book []domain.OrderBookEntry) MatchResult {
	var asks, bids []domain.OrderBookEntry
	for _, e := range book {
		if e.Ticker != ticker || e.Quantity <= 0 {
			continue
		}
		switch {
		case e.Side == domain.SideAsk && e.Exchange == buyExchange:
			asks = append(asks, e)
		case e.Side == domain.SideBid && e.Exchange == sellExchange:
			bids = append(bids, e)
		}
	}
	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })

	return walk(asks, bids)
}

// walk matches sorted asks against sorted bids until prices stop crossing.
func walk(asks, bids []domain.OrderBookEntry) MatchResult {
	var result MatchResult
	if len(asks) == 0 || len(bids) == 0 {
		return result
	}

	i, j := 0, 0
	askRemaining, bidRemaining := asks[0].Quantity, bids[0].Quantity

	for i < len(asks) && j < len(bids) {
		result.Steps++
		ask, bid := asks[i], bids[j]
		if bid.Price < ask.Price {
			break
		}

		qty := min(askRemaining, bidRemaining)
		profit := qty * (bid.Price - ask.Price)
		result.Fills = append(result.Fills, domain.Fill{
			AskPrice: ask.Price,
			BidPrice: bid.Price,
			Quantity: qty,
			Profit:   profit,
		})
		result.MatchedQuantity += qty
		result.TotalProfit += profit

		askRemaining -= qty
		bidRemaining -= qty
		if askRemaining <= 0 {
			i++
			if i < len(asks) {
				askRemaining = asks[i].Quantity
			}
		}
		if bidRemaining <= 0 {
			j++
			if j < len(bids) {
				bidRemaining = bids[j].Quantity
			}
		}
	}

	return result
}

// MatchQuotes matches top-of-book quotes when full order books are unavailable:
// one synthetic ask at the buy quote's ask sized by its supply, and one synthetic
// bid at the sell quote's bid sized by its demand. Produces at most one fill.
func MatchQuotes(buy, sell domain.MarketQuote) MatchResult {
	if !buy.HasAsk() || !sell.HasBid() || buy.Supply <= 0 || sell.Demand <= 0 {
		return MatchResult{}
	}
	asks := []domain.OrderBookEntry{{
		Ticker: buy.Ticker, Exchange: buy.Exchange, Side: domain.SideAsk,
		Price: buy.Ask, Quantity: buy.Supply,
	}}
	bids := []domain.OrderBookEntry{{
		Ticker: sell.Ticker, Exchange: sell.Exchange, Side: domain.SideBid,
		Price: sell.Bid, Quantity: sell.Demand,
	}}
	return walk(asks, bids)
}
