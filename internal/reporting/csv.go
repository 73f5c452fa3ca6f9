package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// RenderScoresCSV renders score rows as CSV string.
func RenderScoresCSV(rows []ScoreRow) string {
	records := make([][]string, 0, len(rows))
	for _, s := range rows {
		records = append(records, []string{
			s.Ticker,
			s.Exchange,
			ftoa(s.UnitCost),
			ftoa(s.ProfitAsk),
			ftoa(s.ProfitBid),
			ftoa(s.ROIAsk),
			ftoa(s.ROIBid),
			ftoa(s.Saturation),
			ftoa(s.LiquidityRatio),
			ftoa(s.Volatility),
			ftoa(s.SpreadPct),
			s.Risk.String(),
			s.Viability.String(),
			ftoa(s.InvestmentScore),
		})
	}
	return writeCSV([]string{
		"ticker", "exchange", "unit_cost", "profit_ask", "profit_bid", "roi_ask", "roi_bid",
		"saturation", "liquidity_ratio", "volatility", "spread_pct", "risk", "viability", "investment_score",
	}, records)
}

// RenderCostsCSV renders cost rows as CSV string.
func RenderCostsCSV(rows []CostRow) string {
	records := make([][]string, 0, len(rows))
	for _, c := range rows {
		records = append(records, []string{
			c.Ticker,
			c.Name,
			c.RecipeKey,
			ftoa(c.MaterialInputCost),
			ftoa(c.WorkforceCost),
			ftoa(c.TotalCost),
			ftoa(c.AllocatedCost),
			ftoa(c.UnitsProduced),
			ftoa(c.UnitCost()),
			ftoa(c.Detailed.TotalAsk()),
			ftoa(c.Detailed.TotalBid()),
		})
	}
	return writeCSV([]string{
		"ticker", "name", "recipe_key", "material_input_cost", "workforce_cost", "total_cost",
		"allocated_cost", "units_produced", "unit_cost", "unit_cost_ask", "unit_cost_bid",
	}, records)
}

// RenderArbitrageCSV renders arbitrage opportunities as CSV string.
func RenderArbitrageCSV(r *Report) string {
	records := make([][]string, 0, len(r.Arbitrage))
	for _, o := range r.Arbitrage {
		records = append(records, []string{
			o.Ticker,
			o.BuyExchange,
			o.SellExchange,
			ftoa(o.BuyPrice),
			ftoa(o.SellPrice),
			ftoa(o.MatchedQuantity),
			ftoa(o.TotalProfit),
			ftoa(o.ProfitPerUnit),
			ftoa(o.ROIPercent),
			o.Level.String(),
			strconv.FormatBool(o.FromOrderBook),
		})
	}
	return writeCSV([]string{
		"ticker", "buy_exchange", "sell_exchange", "buy_price", "sell_price", "matched_quantity",
		"total_profit", "profit_per_unit", "roi_percent", "level", "from_order_book",
	}, records)
}

// RenderAdviceCSV renders production advice as CSV string.
func RenderAdviceCSV(r *Report) string {
	records := make([][]string, 0, len(r.Advice))
	for _, a := range r.Advice {
		records = append(records, []string{
			a.Ticker,
			a.Exchange,
			ftoa(a.AskPrice),
			ftoa(a.ProduceCost),
			ftoa(a.Difference),
			a.Recommendation,
			a.Confidence,
		})
	}
	return writeCSV([]string{
		"ticker", "exchange", "ask_price", "produce_cost", "difference", "recommendation", "confidence",
	}, records)
}

// RenderBottlenecksCSV renders bottlenecks as CSV string.
func RenderBottlenecksCSV(r *Report) string {
	records := make([][]string, 0, len(r.Bottlenecks))
	for _, b := range r.Bottlenecks {
		records = append(records, []string{
			b.Ticker,
			b.Exchange,
			b.Kind,
			ftoa(b.Ratio),
			ftoa(b.Supply),
			ftoa(b.Demand),
			strconv.Itoa(b.Tier),
		})
	}
	return writeCSV([]string{
		"ticker", "exchange", "kind", "ratio", "supply", "demand", "tier",
	}, records)
}

func writeCSV(header []string, records [][]string) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	// strings.Builder never returns a write error.
	_ = w.Write(header)
	_ = w.WriteAll(records)
	return sb.String()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
