package engine

import (
	"math"
	"time"

	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/safemath"
	"github.com/quantlens/quantlens/internal/timeseries"
)

// tradingDays is the annualization basis for daily return statistics.
const tradingDays = 252

// CAGR returns the compound annual growth rate from start to end over the
// given span in years. NaN when the span or start is non-positive.
func CAGR(start, end, years float64) float64 {
	if years <= 0 || start <= 0 {
		return math.NaN()
	}
	return math.Pow(end/start, 1/years) - 1
}

// ComputePortfolioMetrics derives the portfolio-level metrics bag from the
// value series. With fewer than two observations it returns the documented
// zeroed bag rather than an error.
//
// When the holding summaries carry valid buy and latest prices, the
// cumulative return and CAGR are overridden with the dollar-weighted
// investor view and PFGainLoss is set to the absolute currency gain.
func ComputePortfolioMetrics(value timeseries.Series, holdings []models.HoldingSummary, riskFree float64) models.PortfolioMetrics {
	clean := value.DropNaN()
	if clean.Len() < 2 {
		return models.PortfolioMetrics{
			Returns:    timeseries.Empty(),
			LogReturns: timeseries.Empty(),
		}
	}

	simple := clean.SimpleReturns()
	logs := clean.LogReturns()

	m := models.PortfolioMetrics{
		Returns:    simple,
		LogReturns: logs,
	}

	_, start, _ := clean.First()
	endDate, end, _ := clean.Last()
	startDate := clean.TimeAt(0)

	if start != 0 {
		m.CumulativeReturn = end/start - 1
	}

	if vol := annualize(timeseries.Std(logs.Values())); !math.IsNaN(vol) {
		m.Volatility = vol
	}

	years := endDate.Sub(startDate).Hours() / 24 / 365.25
	if cagr := CAGR(start, end, years); !math.IsNaN(cagr) {
		m.CAGR = cagr
	}

	m.Sharpe = sharpeRatio(logs.Values(), riskFree)
	m.Sortino = sortinoRatio(logs.Values(), m.CAGR, riskFree)
	m.MaxDrawdown = maxDrawdown(clean)

	applyDollarWeighted(&m, holdings, endDate)

	return m
}

// sharpeRatio computes the annualized Sharpe ratio over daily log returns.
// Nil when the excess-return deviation is zero or undefined.
func sharpeRatio(logReturns []float64, riskFree float64) *float64 {
	if len(logReturns) < 2 {
		return nil
	}
	daily := riskFree / tradingDays
	excess := make([]float64, len(logReturns))
	for i, r := range logReturns {
		excess[i] = r - daily
	}
	sd := timeseries.Std(excess)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	return safemath.FromFloat(timeseries.Mean(excess) / sd * math.Sqrt(tradingDays))
}

// sortinoRatio computes (cagr - riskFree) / downside volatility, where the
// downside sample is the log returns strictly below zero. Nil when no
// downside deviation can be formed.
func sortinoRatio(logReturns []float64, cagr, riskFree float64) *float64 {
	downside := make([]float64, 0, len(logReturns))
	for _, r := range logReturns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return nil
	}
	vol := annualize(timeseries.Std(downside))
	if vol == 0 || math.IsNaN(vol) {
		return nil
	}
	return safemath.FromFloat((cagr - riskFree) / vol)
}

// maxDrawdown returns the most negative peak-to-trough decline of the value
// series, as a signed fraction.
func maxDrawdown(value timeseries.Series) *float64 {
	runmax := value.CumMax()
	worst := math.NaN()
	for i := 0; i < value.Len(); i++ {
		peak := runmax.ValueAt(i)
		if math.IsNaN(peak) || peak == 0 {
			continue
		}
		dd := (value.ValueAt(i) - peak) / peak
		if math.IsNaN(worst) || dd < worst {
			worst = dd
		}
	}
	return safemath.FromFloat(worst)
}

// applyDollarWeighted replaces the time-series cumulative return with the
// investor-centric view when every needed input is present: summed latest
// value over summed cost basis, restricted to positions with valid nonzero
// prices and positive shares. The CAGR override measures from the most
// recent buy date.
func applyDollarWeighted(m *models.PortfolioMetrics, holdings []models.HoldingSummary, asOf time.Time) {
	totalBuy, totalLatest := 0.0, 0.0
	latestBuyDate := time.Time{}
	any := false
	for _, h := range holdings {
		if h.BuyPrice == nil || h.LatestPrice == nil || h.Shares <= 0 {
			continue
		}
		buy, latest := *h.BuyPrice, *h.LatestPrice
		if buy == 0 || latest == 0 {
			continue
		}
		totalBuy += buy * h.Shares
		totalLatest += latest * h.Shares
		if h.BuyDate.After(latestBuyDate) {
			latestBuyDate = h.BuyDate
		}
		any = true
	}
	if !any || totalBuy <= 0 {
		return
	}
	m.CumulativeReturn = totalLatest/totalBuy - 1
	m.PFGainLoss = safemath.Ptr(totalLatest - totalBuy)

	years := asOf.Sub(latestBuyDate).Hours() / 24 / 365
	if cagr := CAGR(totalBuy, totalLatest, years); !math.IsNaN(cagr) {
		m.CAGR = cagr
	}
}

// ComputeRollingMetrics derives trailing-window annualized volatility and
// Sharpe from daily log returns. The first window-1 points are missing.
func ComputeRollingMetrics(logReturns timeseries.Series, window int, riskFree float64) models.RollingMetrics {
	daily := riskFree / tradingDays
	excess := logReturns.Add(-daily)

	rollStd := excess.RollingStd(window)
	rollMean := excess.RollingMean(window)

	vol := make([]float64, rollStd.Len())
	sharpe := make([]float64, rollStd.Len())
	for i := range vol {
		sd := rollStd.ValueAt(i)
		vol[i] = annualize(sd)
		if sd == 0 || math.IsNaN(sd) {
			sharpe[i] = math.NaN()
			continue
		}
		sharpe[i] = rollMean.ValueAt(i) / sd * math.Sqrt(tradingDays)
	}

	return models.RollingMetrics{
		Window:     window,
		Volatility: timeseries.New(logReturns.Times(), vol),
		Sharpe:     timeseries.New(logReturns.Times(), sharpe),
	}
}

func annualize(dailyStd float64) float64 {
	if math.IsNaN(dailyStd) {
		return math.NaN()
	}
	return dailyStd * math.Sqrt(tradingDays)
}
