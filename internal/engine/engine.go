package engine

import (
	"time"

	"github.com/quantlens/quantlens/internal/models"
)

// Config carries the tunables of one analysis run. Zero values are replaced
// with the defaults below.
type Config struct {
	RiskFreeRate     float64
	RollingWindow    int
	ForwardFillLimit int
	MinRiskOverlap   int
}

// Engine defaults, applied when the corresponding Config field is zero.
const (
	DefaultRiskFreeRate     = 0.068
	DefaultRollingWindow    = 60
	DefaultForwardFillLimit = 5
	DefaultMinRiskOverlap   = 50
)

func (c Config) withDefaults() Config {
	if c.RiskFreeRate == 0 {
		c.RiskFreeRate = DefaultRiskFreeRate
	}
	if c.RollingWindow == 0 {
		c.RollingWindow = DefaultRollingWindow
	}
	if c.ForwardFillLimit == 0 {
		c.ForwardFillLimit = DefaultForwardFillLimit
	}
	if c.MinRiskOverlap == 0 {
		c.MinRiskOverlap = DefaultMinRiskOverlap
	}
	return c
}

// Engine runs the full analytics pass. It holds only configuration; every
// Analyze call is a pure function of its inputs.
type Engine struct {
	cfg Config
}

// New constructs an Engine, filling unset config fields with defaults.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Analyze runs valuation, performance, risk, health, fundamentals, and
// dividend analytics over the request's holdings and returns one immutable
// result. It never fails for missing or sparse data: unusable tickers fall
// out of the tables whose preconditions they miss, and a request with no
// usable tickers yields empty tables and a zeroed metrics bag.
func (e *Engine) Analyze(req models.AnalysisRequest, inputs models.AnalysisInputs) *models.AnalysisResult {
	riskFree := e.cfg.RiskFreeRate
	if req.RiskFreeRate != 0 {
		riskFree = req.RiskFreeRate
	}
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	order := make([]string, 0, len(req.Holdings))
	shares := make(map[string]float64, len(req.Holdings))
	for _, h := range req.Holdings {
		order = append(order, h.Ticker)
		shares[h.Ticker] = h.Shares
	}

	table := BuildCloseTable(inputs.Prices, order, e.cfg.ForwardFillLimit)
	value := PortfolioValue(table, shares)

	summaries := BuildHoldingSummaries(inputs.Prices, req.Holdings)
	best, worst := BestWorstPerformers(summaries)
	unrealized := UnrealizedPnL(table, summaries)

	metrics := ComputePortfolioMetrics(value, summaries, riskFree)
	rolling := ComputeRollingMetrics(metrics.LogReturns, e.cfg.RollingWindow, riskFree)

	risk := ComputeStockRiskMetrics(inputs.Prices, order, inputs.Benchmark, e.cfg.MinRiskOverlap)
	health := ComputePositionHealth(inputs.Prices, order)

	latestPrices := make(map[string]*float64, len(summaries))
	for _, s := range summaries {
		latestPrices[s.Ticker] = s.LatestPrice
	}
	fundamentals, dupont := ComputeFundamentals(inputs.Fundamentals, order, latestPrices, asOf)

	dividendRecords, income := ComputeDividends(inputs.Dividends, summaries, inputs.Fundamentals, asOf)

	return &models.AnalysisResult{
		ID:             req.ID,
		GeneratedAt:    time.Now().UTC(),
		Benchmark:      req.Benchmark,
		RiskFreeRate:   riskFree,
		Holdings:       summaries,
		BestPerformer:  best,
		WorstPerformer: worst,
		Value:          value,
		UnrealizedPnL:  unrealized,
		Metrics:        metrics,
		Rolling:        rolling,
		Risk:           risk,
		Health:         health,
		Fundamentals:   fundamentals,
		DuPont:         dupont,
		Dividends:      dividendRecords,
		Income:         income,
	}
}
