package engine

import (
	"math"

	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/safemath"
	"github.com/quantlens/quantlens/internal/timeseries"
)

// varConfidence is the tail probability for VaR/CVaR (95% confidence).
const varConfidence = 0.05

// ComputeStockRiskMetrics derives per-ticker risk records against the
// benchmark. Each ticker's log returns are inner-joined with the benchmark
// log returns on date; tickers with fewer than minOverlap joint
// observations are excluded from the output entirely. Statistics use
// population denominators.
func ComputeStockRiskMetrics(prices map[string]models.PriceHistory, order []string, benchmark models.PriceHistory, minOverlap int) []models.RiskRecord {
	benchReturns := benchmark.CloseSeries().LogReturns()
	if benchReturns.IsEmpty() {
		return nil
	}

	records := make([]models.RiskRecord, 0, len(order))
	for _, ticker := range order {
		history, ok := prices[ticker]
		if !ok {
			continue
		}
		closes := history.CloseSeries()
		logReturns := closes.LogReturns()

		times, stock, bench := timeseries.InnerJoin(logReturns, benchReturns)
		if len(stock) < minOverlap {
			continue
		}

		rec := models.RiskRecord{
			Ticker:       ticker,
			Observations: len(stock),
			Volatility:   annualize(timeseries.PopStd(stock)),
			MaxDrawdown:  simpleReturnDrawdown(closes),
			Returns:      timeseries.New(times, stock),
		}

		benchVar := timeseries.PopVar(bench)
		if benchVar > 0 {
			rec.Beta = safemath.Ptr(timeseries.PopCov(stock, bench) / benchVar)
		}

		p5 := timeseries.Quantile(stock, varConfidence)
		rec.VaR95 = -p5
		rec.CVaR95 = cvar(stock, p5)

		records = append(records, rec)
	}
	return records
}

// simpleReturnDrawdown computes max drawdown from the cumulative product of
// simple returns, reported as a positive magnitude.
func simpleReturnDrawdown(closes timeseries.Series) float64 {
	simple := closes.SimpleReturns()
	if simple.IsEmpty() {
		return 0
	}
	wealth := 1.0
	peak := 1.0
	worst := 0.0
	for _, r := range simple.Values() {
		wealth *= 1 + r
		if wealth > peak {
			peak = wealth
		}
		if dd := (wealth - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return math.Abs(worst)
}

// cvar returns the negated mean of observations at or below the tail
// cutoff, nil when the tail sample is empty.
func cvar(returns []float64, cutoff float64) *float64 {
	tail := make([]float64, 0)
	for _, r := range returns {
		if r <= cutoff {
			tail = append(tail, r)
		}
	}
	if len(tail) == 0 {
		return nil
	}
	return safemath.Ptr(-timeseries.Mean(tail))
}
