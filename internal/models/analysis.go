package models

import (
	"time"

	"github.com/quantlens/quantlens/internal/timeseries"
)

// AnalysisRequest describes one "generate analysis" action.
type AnalysisRequest struct {
	ID           string    `json:"id"`
	Holdings     []Holding `json:"holdings"`
	Benchmark    string    `json:"benchmark"`
	RiskFreeRate float64   `json:"risk_free_rate"`
	AsOf         time.Time `json:"as_of"`
}

// AnalysisInputs is the raw material an analysis consumes, fetched and
// prepared by the data layer. All series are ascending and deduplicated.
type AnalysisInputs struct {
	Prices       map[string]PriceHistory
	Dividends    map[string]DividendHistory
	Fundamentals map[string]FundamentalsBundle
	Benchmark    PriceHistory
}

// AnalysisResult is the complete, immutable output of one analysis run.
// Every table is keyed by ticker and flat enough to serialize straight to
// JSON or a spreadsheet sheet.
type AnalysisResult struct {
	ID           string    `json:"id"`
	GeneratedAt  time.Time `json:"generated_at"`
	Benchmark    string    `json:"benchmark"`
	RiskFreeRate float64   `json:"risk_free_rate"`

	Holdings       []HoldingSummary `json:"holdings"`
	BestPerformer  string           `json:"best_performer,omitempty"`
	WorstPerformer string           `json:"worst_performer,omitempty"`

	Value         timeseries.Series `json:"value"`
	UnrealizedPnL timeseries.Series `json:"unrealized_pnl"`
	Metrics       PortfolioMetrics  `json:"metrics"`
	Rolling       RollingMetrics    `json:"rolling"`

	Risk         []RiskRecord           `json:"risk"`
	Health       []PositionHealthRecord `json:"health"`
	Fundamentals []FundamentalsRow      `json:"fundamentals"`
	DuPont       []DuPontRow            `json:"dupont"`
	Dividends    []DividendRecord       `json:"dividends"`
	Income       IncomeSummary          `json:"income"`
}
