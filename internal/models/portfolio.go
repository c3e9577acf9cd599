package models

import (
	"time"

	"github.com/quantlens/quantlens/internal/timeseries"
)

// Holding is one position in an analysis request.
type Holding struct {
	Ticker  string    `json:"ticker"`
	Shares  float64   `json:"shares"`
	BuyDate time.Time `json:"buy_date"`
}

// HoldingSummary is the per-position valuation row of an analysis.
type HoldingSummary struct {
	Ticker        string    `json:"ticker"`
	Shares        float64   `json:"shares"`
	BuyDate       time.Time `json:"buy_date"`
	BuyPrice      *float64  `json:"buy_price,omitempty"`
	LatestPrice   *float64  `json:"latest_price,omitempty"`
	Value         *float64  `json:"value,omitempty"`
	WeightPct     *float64  `json:"weight_pct,omitempty"`
	GainLossPct   *float64  `json:"gain_loss_pct,omitempty"`
	GainLossValue *float64  `json:"gain_loss_value,omitempty"`
}

// PortfolioMetrics is the portfolio-level metrics bag. Optional fields are
// nil when the underlying computation is undefined for the input
// (insufficient observations, zero variance, no downside sample).
type PortfolioMetrics struct {
	CumulativeReturn float64  `json:"cumulative_return"`
	CAGR             float64  `json:"cagr"`
	Volatility       float64  `json:"volatility"`
	Sharpe           *float64 `json:"sharpe,omitempty"`
	Sortino          *float64 `json:"sortino,omitempty"`
	MaxDrawdown      *float64 `json:"max_drawdown,omitempty"`
	PFGainLoss       *float64 `json:"pf_gain_loss,omitempty"`

	Returns    timeseries.Series `json:"returns"`
	LogReturns timeseries.Series `json:"log_returns"`
}

// RollingMetrics holds trailing-window annualized volatility and Sharpe.
type RollingMetrics struct {
	Window     int               `json:"window"`
	Volatility timeseries.Series `json:"volatility"`
	Sharpe     timeseries.Series `json:"sharpe"`
}
