package arbitrage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prun-economy-lab/internal/domain"
)

func ask(exchange string, price, qty float64) domain.OrderBookEntry {
	return domain.OrderBookEntry{Ticker: "FE", Exchange: exchange, Side: domain.SideAsk, Price: price, Quantity: qty}
}

func bid(exchange string, price, qty float64) domain.OrderBookEntry {
	return domain.OrderBookEntry{Ticker: "FE", Exchange: exchange, Side: domain.SideBid, Price: price, Quantity: qty}
}

func TestMatch_ExampleScenario(t *testing.T) {
	book := []domain.OrderBookEntry{ask("AI1", 5, 10), bid("CI1", 8, 6)}

	got := Match("FE", "AI1", "CI1", book)

	assert.Equal(t, 6.0, got.MatchedQuantity)
	assert.Equal(t, 18.0, got.TotalProfit)
	require.Len(t, got.Fills, 1)
	assert.Equal(t, domain.Fill{AskPrice: 5, BidPrice: 8, Quantity: 6, Profit: 18}, got.Fills[0])
}

func TestMatch_WalksLadder(t *testing.T) {
	book := []domain.OrderBookEntry{
		ask("AI1", 6, 5),
		ask("AI1", 5, 10),
		ask("AI1", 9, 100),
		bid("CI1", 7, 8),
		bid("CI1", 8, 4),
		bid("CI1", 4, 50),
	}

	got := Match("FE", "AI1", "CI1", book)

	// (5,8)x4=12, (5,7)x6=12, (6,7)x2=2, then 9 > 4 stops.
	require.Len(t, got.Fills, 3)
	assert.Equal(t, 12.0, got.MatchedQuantity)
	assert.InDelta(t, 26.0, got.TotalProfit, 1e-9)
	assert.Equal(t, 8.0, got.Fills[0].BidPrice)
	assert.Equal(t, 7.0, got.Fills[1].BidPrice)
	assert.Equal(t, 6.0, got.Fills[2].AskPrice)
}

func TestMatch_EqualPricesMatchAtZeroProfit(t *testing.T) {
	got := Match("FE", "AI1", "CI1", []domain.OrderBookEntry{ask("AI1", 5, 3), bid("CI1", 5, 3)})
	assert.Equal(t, 3.0, got.MatchedQuantity)
	assert.Zero(t, got.TotalProfit)
}

func TestMatch_EmptySides(t *testing.T) {
	tests := []struct {
		name string
		book []domain.OrderBookEntry
	}{
		{"empty", nil},
		{"asks only", []domain.OrderBookEntry{ask("AI1", 5, 10)}},
		{"bids only", []domain.OrderBookEntry{bid("CI1", 8, 10)}},
		{"wrong exchanges", []domain.OrderBookEntry{ask("CI1", 5, 10), bid("AI1", 8, 10)}},
		{"no crossing", []domain.OrderBookEntry{ask("AI1", 9, 10), bid("CI1", 8, 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match("FE", "AI1", "CI1", tt.book)
			assert.Zero(t, got.MatchedQuantity)
			assert.Zero(t, got.TotalProfit)
			assert.Empty(t, got.Fills)
		})
	}
}

func TestMatch_SameExchange(t *testing.T) {
	got := Match("FE", "AI1", "AI1", []domain.OrderBookEntry{ask("AI1", 5, 2), bid("AI1", 6, 3)})
	assert.Equal(t, 2.0, got.MatchedQuantity)
	assert.Equal(t, 2.0, got.TotalProfit)
}

func TestMatch_TerminationAndBounds(t *testing.T) {
	books := [][]domain.OrderBookEntry{
		{ask("AI1", 1, 1), ask("AI1", 2, 1), ask("AI1", 3, 1), bid("CI1", 10, 1), bid("CI1", 9, 1), bid("CI1", 8, 1)},
		{ask("AI1", 1, 100), bid("CI1", 10, 1), bid("CI1", 9, 2), bid("CI1", 8, 3)},
		{ask("AI1", 1, 1), ask("AI1", 1, 2), ask("AI1", 1, 3), bid("CI1", 2, 1000)},
		{ask("AI1", 5, 10), ask("AI1", 7, 10), bid("CI1", 6, 15), bid("CI1", 4, 15)},
		{ask("AI1", 3, 0.5), ask("AI1", 4, 0.25), bid("CI1", 5, 0.125), bid("CI1", 4.5, 0.625)},
	}

	for i, book := range books {
		var nAsks, nBids int
		var sumAsk, sumBid float64
		for _, e := range book {
			if e.Side == domain.SideAsk {
				nAsks++
				sumAsk += e.Quantity
			} else {
				nBids++
				sumBid += e.Quantity
			}
		}

		got := Match("FE", "AI1", "CI1", book)

		assert.LessOrEqual(t, got.Steps, nAsks+nBids, "book %d steps", i)
		assert.LessOrEqual(t, got.MatchedQuantity, min(sumAsk, sumBid)+1e-9, "book %d quantity", i)
		for _, f := range got.Fills {
			assert.GreaterOrEqual(t, f.BidPrice, f.AskPrice, "book %d fill", i)
			assert.GreaterOrEqual(t, f.Profit, 0.0, "book %d fill", i)
		}
	}
}

func TestMatch_IgnoresOtherTickers(t *testing.T) {
	other := domain.OrderBookEntry{Ticker: "CU", Exchange: "AI1", Side: domain.SideAsk, Price: 1, Quantity: 100}
	got := Match("FE", "AI1", "CI1", []domain.OrderBookEntry{other, ask("AI1", 5, 1), bid("CI1", 6, 10)})
	assert.Equal(t, 1.0, got.MatchedQuantity)
}

func TestMatchQuotes(t *testing.T) {
	buy := domain.MarketQuote{Ticker: "FE", Exchange: "AI1", Ask: 5, Supply: 10}
	sell := domain.MarketQuote{Ticker: "FE", Exchange: "CI1", Bid: 8, Demand: 6}

	got := MatchQuotes(buy, sell)
	assert.Equal(t, 6.0, got.MatchedQuantity)
	assert.Equal(t, 18.0, got.TotalProfit)
	assert.Len(t, got.Fills, 1)

	t.Run("no liquidity", func(t *testing.T) {
		assert.Zero(t, MatchQuotes(domain.MarketQuote{Supply: 10}, sell).MatchedQuantity)
		assert.Zero(t, MatchQuotes(buy, domain.MarketQuote{Bid: 8}).MatchedQuantity)
	})

	t.Run("not crossing", func(t *testing.T) {
		sell := sell
		sell.Bid = 4
		assert.Empty(t, MatchQuotes(buy, sell).Fills)
	})
}
