package domain

// ScoreRecord holds profitability and classification fields for one material on one exchange.
type ScoreRecord struct {
	Ticker          string    `json:"ticker"`
	Exchange        string    `json:"exchange"`
	UnitCost        float64   `json:"unit_cost"` // cost basis used for profit and ROI
	ProfitAsk       float64   `json:"profit_ask"`
	ProfitBid       float64   `json:"profit_bid"`
	ROIAsk          float64   `json:"roi_ask"` // percent
	ROIBid          float64   `json:"roi_bid"` // percent
	Saturation      float64   `json:"saturation"`
	LiquidityRatio  float64   `json:"liquidity_ratio"`
	Volatility      float64   `json:"volatility"`
	SpreadPct       float64   `json:"spread_pct"`
	Risk            RiskLevel `json:"risk"`
	Viability       Viability `json:"viability"`
	InvestmentScore float64   `json:"investment_score"` // 0-100
}

// ScoreKey identifies a score record.
type ScoreKey struct {
	Ticker   string
	Exchange string
}

// Key returns the record's map key.
func (s ScoreRecord) Key() ScoreKey {
	return ScoreKey{Ticker: s.Ticker, Exchange: s.Exchange}
}

// Recommendation of the buy-vs-produce comparison.
const (
	RecommendBuy     = "Buy"
	RecommendProduce = "Produce"
	RecommendNeutral = "Neutral"
)

// ProductionAdvice compares buying a material at ask with producing it.
type ProductionAdvice struct {
	Ticker         string  `json:"ticker"`
	Exchange       string  `json:"exchange"`
	AskPrice       float64 `json:"ask_price"`
	ProduceCost    float64 `json:"produce_cost"`
	Difference     float64 `json:"difference"` // ask - produce cost
	Recommendation string  `json:"recommendation"`
	Confidence     string  `json:"confidence"` // "High" | "Medium" | "Low"
}

// Bottleneck classifications.
const (
	BottleneckCritical          = "Critical Shortage"
	BottleneckHighDemand        = "High Demand"
	BottleneckSupplyShortage    = "Supply Shortage"
	BottleneckOversupply        = "Oversupply"
	BottleneckProductionLimited = "Production Limited"
	BottleneckBalanced          = "Balanced"
)

// Bottleneck describes a supply/demand imbalance of one material on one exchange.
type Bottleneck struct {
	Ticker      string  `json:"ticker"`
	Exchange    string  `json:"exchange"`
	Kind        string  `json:"kind"`
	Ratio       float64 `json:"ratio"` // demand / supply, 0 when supply is 0
	Supply      float64 `json:"supply"`
	Demand      float64 `json:"demand"`
	Tier        int     `json:"tier"`
	Description string  `json:"description"`
}
