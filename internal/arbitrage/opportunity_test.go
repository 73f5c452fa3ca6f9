package arbitrage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prun-economy-lab/internal/domain"
	"prun-economy-lab/internal/market"
)

func TestLevelThresholds(t *testing.T) {
	levels := DefaultLevelThresholds()
	tests := []struct {
		qty  float64
		want domain.OpportunityLevel
	}{
		{0, domain.OpportunityVeryLow},
		{10, domain.OpportunityVeryLow},
		{11, domain.OpportunityLow},
		{101, domain.OpportunityMedium},
		{1001, domain.OpportunityHigh},
		{5001, domain.OpportunityVeryHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levels.Level(tt.qty), "qty=%v", tt.qty)
	}
}

func TestNewOpportunity(t *testing.T) {
	m := Match("FE", "AI1", "CI1", []domain.OrderBookEntry{
		ask("AI1", 4, 5), ask("AI1", 6, 5), bid("CI1", 10, 10),
	})

	opp := NewOpportunity("FE", "AI1", "CI1", m, DefaultLevelThresholds())

	assert.Equal(t, 10.0, opp.MatchedQuantity)
	assert.InDelta(t, 50.0, opp.TotalProfit, 1e-9)
	assert.InDelta(t, 5.0, opp.BuyPrice, 1e-9)
	assert.InDelta(t, 10.0, opp.SellPrice, 1e-9)
	assert.InDelta(t, 5.0, opp.ProfitPerUnit, 1e-9)
	assert.InDelta(t, 100.0, opp.ROIPercent, 1e-9)
	assert.Equal(t, domain.OpportunityVeryLow, opp.Level)
}

func TestNewOpportunity_Empty(t *testing.T) {
	opp := NewOpportunity("FE", "AI1", "CI1", MatchResult{}, DefaultLevelThresholds())
	assert.Zero(t, opp.BuyPrice)
	assert.Zero(t, opp.ROIPercent)
}

func TestScanner_Scan(t *testing.T) {
	quotes := []domain.MarketQuote{
		{Ticker: "FE", Exchange: "AI1", Ask: 100, Bid: 90, Supply: 50, Demand: 50},
		{Ticker: "FE", Exchange: "NC1", Ask: 200, Bid: 180, Supply: 50, Demand: 40},
	}
	orders := []domain.OrderBookEntry{
		ask("CI1", 50, 20),
		bid("IC1", 70, 30),
	}
	snap, err := market.NewSnapshot("s", time.Time{}, quotes, orders)
	require.NoError(t, err)

	s := NewScanner(ScanConfig{Levels: DefaultLevelThresholds(), MinProfit: 100, MinProfitFraction: 0.05})
	opps := s.Scan("FE", snap, []string{"AI1", "CI1", "IC1", "NC1"})

	require.Len(t, opps, 2)

	// AI1 -> NC1: 40 units * (180 - 100) = 3200 from quotes.
	assert.Equal(t, "AI1", opps[0].BuyExchange)
	assert.Equal(t, "NC1", opps[0].SellExchange)
	assert.InDelta(t, 3200.0, opps[0].TotalProfit, 1e-9)
	assert.False(t, opps[0].FromOrderBook)

	// CI1 -> IC1: 20 units * (70 - 50) = 400 from order books.
	assert.Equal(t, "CI1", opps[1].BuyExchange)
	assert.Equal(t, "IC1", opps[1].SellExchange)
	assert.InDelta(t, 400.0, opps[1].TotalProfit, 1e-9)
	assert.True(t, opps[1].FromOrderBook)
}

func TestScanner_SignificanceFilter(t *testing.T) {
	quotes := []domain.MarketQuote{
		{Ticker: "FE", Exchange: "AI1", Ask: 100, Supply: 10},
		{Ticker: "FE", Exchange: "CI1", Bid: 104, Demand: 10},
	}
	snap, err := market.NewSnapshot("s", time.Time{}, quotes, nil)
	require.NoError(t, err)

	// Profit 40 on notional 1000.
	strict := NewScanner(ScanConfig{Levels: DefaultLevelThresholds(), MinProfit: 100, MinProfitFraction: 0.05})
	assert.Empty(t, strict.Scan("FE", snap, []string{"AI1", "CI1"}))

	loose := NewScanner(ScanConfig{Levels: DefaultLevelThresholds()})
	opps := loose.Scan("FE", snap, []string{"AI1", "CI1"})
	require.Len(t, opps, 1)
	assert.InDelta(t, 40.0, opps[0].TotalProfit, 1e-9)
}

func TestSortOpportunities(t *testing.T) {
	opps := []domain.ArbitrageOpportunity{
		{Ticker: "B", BuyExchange: "AI1", SellExchange: "CI1", TotalProfit: 10},
		{Ticker: "A", BuyExchange: "CI1", SellExchange: "AI1", TotalProfit: 10},
		{Ticker: "A", BuyExchange: "AI1", SellExchange: "CI1", TotalProfit: 10},
		{Ticker: "Z", BuyExchange: "AI1", SellExchange: "CI1", TotalProfit: 50},
	}
	SortOpportunities(opps)

	assert.Equal(t, "Z", opps[0].Ticker)
	assert.Equal(t, "A", opps[1].Ticker)
	assert.Equal(t, "AI1", opps[1].BuyExchange)
	assert.Equal(t, "CI1", opps[2].BuyExchange)
	assert.Equal(t, "B", opps[3].Ticker)
}
