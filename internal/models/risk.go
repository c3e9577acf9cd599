package models

import "github.com/quantlens/quantlens/internal/timeseries"

// RiskRecord holds per-ticker risk metrics computed against the benchmark.
// Tickers with fewer than the minimum overlapping observations never get a
// record. Beta is nil when the benchmark variance is zero; CVaR95 is nil
// when the tail sample is empty.
type RiskRecord struct {
	Ticker       string   `json:"ticker"`
	Observations int      `json:"observations"`
	Volatility   float64  `json:"volatility"`
	Beta         *float64 `json:"beta,omitempty"`
	MaxDrawdown  float64  `json:"max_drawdown"`
	VaR95        float64  `json:"var_95"`
	CVaR95       *float64 `json:"cvar_95,omitempty"`

	// Returns keeps the aligned log-return series for downstream
	// risk/return scatter rendering.
	Returns timeseries.Series `json:"returns"`
}
