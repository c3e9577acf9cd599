package models

import "time"

// DividendRecord holds per-ticker income metrics over the holding period.
// Zero sums are meaningful (the ticker simply paid nothing); nil ratio
// fields mean an input was unavailable.
type DividendRecord struct {
	Ticker          string     `json:"ticker"`
	SinceBuy        float64    `json:"since_buy"`
	TTM             float64    `json:"ttm"`
	LastExDate      *time.Time `json:"last_ex_date,omitempty"`
	YieldOnCostPct  *float64   `json:"yield_on_cost_pct,omitempty"`
	CurrentYieldPct *float64   `json:"current_yield_pct,omitempty"`
	CAGRPct         *float64   `json:"cagr_pct,omitempty"`
	CAGRYears       int        `json:"cagr_years,omitempty"`
	PayoutRatioPct  *float64   `json:"payout_ratio_pct,omitempty"`
	RetentionPct    *float64   `json:"retention_pct,omitempty"`
}

// IncomeSummary aggregates dividend income across the portfolio.
type IncomeSummary struct {
	TotalIncome       float64  `json:"total_income"`
	ForwardYieldPct   *float64 `json:"forward_yield_pct,omitempty"`
	ActualYieldPct    *float64 `json:"actual_yield_pct,omitempty"`
	Payers            int      `json:"payers"`
	Holdings          int      `json:"holdings"`
	PayersCoveragePct *float64 `json:"payers_coverage_pct,omitempty"`
}
