package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Economic Analysis Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Snapshot: %s | Reference exchange: %s\n\n",
		r.Run.RunID, r.Run.SnapshotID, r.Run.ReferenceExchange))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Materials | %d |\n", r.Summary.Materials))
	sb.WriteString(fmt.Sprintf("| Produced Materials | %d |\n", r.Summary.Produced))
	sb.WriteString(fmt.Sprintf("| Score Records | %d |\n", r.Summary.Scores))
	sb.WriteString(fmt.Sprintf("| Viable Records | %d |\n", r.Summary.Viable))
	sb.WriteString(fmt.Sprintf("| Arbitrage Opportunities | %d |\n", r.Summary.Opportunities))
	sb.WriteString(fmt.Sprintf("| Arbitrage Profit | %.2f |\n", r.Summary.ArbitrageTotal))
	sb.WriteString(fmt.Sprintf("| Warnings | %d |\n", r.Summary.Warnings))
	sb.WriteString("\n")

	// Scores
	sb.WriteString("## Investment Scores\n\n")
	if len(r.Scores) > 0 {
		sb.WriteString("| Ticker | Exchange | Score | Viability | Risk | Unit Cost | Profit (Ask) | ROI (Ask) % | Liquidity | Saturation | Spread % |\n")
		sb.WriteString("|--------|----------|-------|-----------|------|-----------|--------------|-------------|-----------|------------|----------|\n")
		for _, s := range r.Scores {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %s | %s | %.2f | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
				s.Ticker, s.Exchange, s.InvestmentScore, s.Viability, s.Risk,
				s.UnitCost, s.ProfitAsk, s.ROIAsk, s.LiquidityRatio, s.Saturation, s.SpreadPct))
		}
	} else {
		sb.WriteString("No scores available.\n")
	}
	sb.WriteString("\n")

	// Costs
	sb.WriteString("## Production Costs\n\n")
	if len(r.Costs) > 0 {
		sb.WriteString("| Ticker | Name | Recipe | Inputs | Workforce | Allocated | Units | Unit Cost |\n")
		sb.WriteString("|--------|------|--------|--------|-----------|-----------|-------|-----------|\n")
		for _, c := range r.Costs {
			recipe := c.RecipeKey
			if recipe == "" {
				recipe = "-"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %.2f | %.2f | %g | %.2f |\n",
				c.Ticker, c.Name, recipe, c.MaterialInputCost, c.WorkforceCost,
				c.AllocatedCost, c.UnitsProduced, c.UnitCost()))
		}
	} else {
		sb.WriteString("No costs available.\n")
	}
	sb.WriteString("\n")

	// Arbitrage
	sb.WriteString("## Arbitrage Opportunities\n\n")
	if len(r.Arbitrage) > 0 {
		sb.WriteString("| Ticker | Buy | Sell | Buy Price | Sell Price | Quantity | Profit | ROI % | Level | Source |\n")
		sb.WriteString("|--------|-----|------|-----------|------------|----------|--------|-------|-------|--------|\n")
		for _, o := range r.Arbitrage {
			source := "quote"
			if o.FromOrderBook {
				source = "order book"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %.2f | %g | %.2f | %.2f | %s | %s |\n",
				o.Ticker, o.BuyExchange, o.SellExchange, o.BuyPrice, o.SellPrice,
				o.MatchedQuantity, o.TotalProfit, o.ROIPercent, o.Level, source))
		}
	} else {
		sb.WriteString("No arbitrage opportunities found.\n")
	}
	sb.WriteString("\n")

	// Advice
	sb.WriteString("## Production Advice\n\n")
	if len(r.Advice) > 0 {
		sb.WriteString("| Ticker | Exchange | Ask | Produce Cost | Difference | Recommendation | Confidence |\n")
		sb.WriteString("|--------|----------|-----|--------------|------------|----------------|------------|\n")
		for _, a := range r.Advice {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %.2f | %.2f | %s | %s |\n",
				a.Ticker, a.Exchange, a.AskPrice, a.ProduceCost, a.Difference,
				a.Recommendation, a.Confidence))
		}
	} else {
		sb.WriteString("No production advice available.\n")
	}
	sb.WriteString("\n")

	// Bottlenecks
	sb.WriteString("## Market Bottlenecks\n\n")
	if len(r.Bottlenecks) > 0 {
		sb.WriteString("| Ticker | Exchange | Kind | Ratio | Supply | Demand | Tier |\n")
		sb.WriteString("|--------|----------|------|-------|--------|--------|------|\n")
		for _, b := range r.Bottlenecks {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %g | %g | %d |\n",
				b.Ticker, b.Exchange, b.Kind, b.Ratio, b.Supply, b.Demand, b.Tier))
		}
	} else {
		sb.WriteString("No bottlenecks available.\n")
	}
	sb.WriteString("\n")

	// Warnings
	sb.WriteString("## Warnings\n\n")
	if len(r.Warnings) > 0 {
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("- [%s] %s\n", w.Kind, w.Message))
		}
	} else if r.Summary.Warnings > 0 {
		sb.WriteString(fmt.Sprintf("%d warnings were raised; details are not stored.\n", r.Summary.Warnings))
	} else {
		sb.WriteString("No warnings.\n")
	}

	return sb.String()
}
