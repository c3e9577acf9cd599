package models

import (
	"math"

	"github.com/quantlens/quantlens/internal/timeseries"
)

// StatementTable maps a provider's statement row labels to their
// time-indexed values (annual or quarterly, ascending).
type StatementTable map[string]timeseries.Series

// ResolveSeries returns the first candidate label present in the table with
// at least one real value. Provider schemas disagree on row naming, so every
// lookup goes through an ordered candidate list.
func (t StatementTable) ResolveSeries(candidates ...string) (timeseries.Series, bool) {
	for _, label := range candidates {
		s, ok := t[label]
		if !ok {
			continue
		}
		if _, _, has := s.Last(); has {
			return s, true
		}
	}
	return timeseries.Empty(), false
}

// FirstAvailable returns the latest value of the first candidate label that
// resolves, or nil when no candidate has a real value.
func (t StatementTable) FirstAvailable(candidates ...string) *float64 {
	s, ok := t.ResolveSeries(candidates...)
	if !ok {
		return nil
	}
	_, v, has := s.Last()
	if !has || math.IsNaN(v) {
		return nil
	}
	return &v
}

// FundamentalsBundle is the raw statement snapshot for one ticker.
// Any table may be empty when the provider has no data.
type FundamentalsBundle struct {
	Ticker            string            `json:"ticker"`
	Income            StatementTable    `json:"income"`
	QuarterlyIncome   StatementTable    `json:"quarterly_income"`
	Balance           StatementTable    `json:"balance"`
	SharesOutstanding timeseries.Series `json:"shares_outstanding"`
}

// IsEmpty reports whether the bundle carries no statement data at all.
func (b FundamentalsBundle) IsEmpty() bool {
	return len(b.Income) == 0 && len(b.QuarterlyIncome) == 0 &&
		len(b.Balance) == 0 && b.SharesOutstanding.IsEmpty()
}

// FundamentalsRow is the per-ticker valuation and quality row. Every
// derived figure is optional; a nil field means the inputs needed for it
// were unavailable.
type FundamentalsRow struct {
	Ticker string `json:"ticker"`

	EPS                *float64 `json:"eps,omitempty"`
	MarketCap          *float64 `json:"market_cap,omitempty"`
	PE                 *float64 `json:"pe,omitempty"`
	PB                 *float64 `json:"pb,omitempty"`
	ROEPct             *float64 `json:"roe_pct,omitempty"`
	ROAPct             *float64 `json:"roa_pct,omitempty"`
	ROCEPct            *float64 `json:"roce_pct,omitempty"`
	ProfitMarginPct    *float64 `json:"profit_margin_pct,omitempty"`
	OperatingMarginPct *float64 `json:"operating_margin_pct,omitempty"`
	DebtToEquity       *float64 `json:"debt_to_equity,omitempty"`
	CurrentRatio       *float64 `json:"current_ratio,omitempty"`
	NetDebt            *float64 `json:"net_debt,omitempty"`
	InterestCoverage   *float64 `json:"interest_coverage,omitempty"`

	RevenueYoYPct    *float64 `json:"revenue_yoy_pct,omitempty"`
	RevenueCAGRPct   *float64 `json:"revenue_cagr_pct,omitempty"`
	RevenueCAGRYears int      `json:"revenue_cagr_years,omitempty"`

	QualityBucket      string `json:"quality_bucket,omitempty"`
	GrowthQualifier    string `json:"growth_qualifier,omitempty"`
	ReturnsQualifier   string `json:"returns_qualifier,omitempty"`
	LeverageQualifier  string `json:"leverage_qualifier,omitempty"`
	LiquidityQualifier string `json:"liquidity_qualifier,omitempty"`
}

// DuPontRow is one ticker-year ROE decomposition.
type DuPontRow struct {
	Ticker           string   `json:"ticker"`
	Year             int      `json:"year"`
	NetMarginPct     *float64 `json:"net_margin_pct,omitempty"`
	AssetTurnover    *float64 `json:"asset_turnover,omitempty"`
	EquityMultiplier *float64 `json:"equity_multiplier,omitempty"`
	ROEPct           *float64 `json:"roe_pct,omitempty"`
	ROAPct           *float64 `json:"roa_pct,omitempty"`
}

// Quality bucket labels, recomputed per request from the sample's ROE
// distribution.
const (
	QualityBelowAvg      = "Below Avg"
	QualityStrong        = "Strong"
	QualityHigh          = "High"
	QualitySingleHolding = "Single Holding"
)
