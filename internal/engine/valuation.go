// Package engine implements the analytics core: portfolio valuation,
// performance and risk metrics, technical position health, fundamentals
// ratios, and dividend income. Every function is a pure function of its
// inputs; missing data degrades to typed absences, never errors.
package engine

import (
	"math"

	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/safemath"
	"github.com/quantlens/quantlens/internal/timeseries"
)

// BuildCloseTable aligns per-ticker Close series on the union calendar,
// forward-filling gaps up to ffillLimit sessions. Column order follows the
// holdings order; tickers without price history are dropped.
func BuildCloseTable(prices map[string]models.PriceHistory, order []string, ffillLimit int) timeseries.Table {
	closes := make(map[string]timeseries.Series, len(prices))
	for ticker, history := range prices {
		closes[ticker] = history.CloseSeries()
	}
	return timeseries.BuildTable(closes, order, ffillLimit)
}

// PortfolioValue row-sums Close×shares over tickers present in both the
// table and the shares map, dropping rows where every holding is missing.
// An empty table yields an empty series.
func PortfolioValue(table timeseries.Table, shares map[string]float64) timeseries.Series {
	if table.NumRows() == 0 || len(shares) == 0 {
		return timeseries.Empty()
	}
	return table.WeightedRowSum(shares).DropNaN()
}

// UnrealizedPnL sums (close − buy price) × shares per date over holdings
// with a known buy price. Missing closes contribute nothing to their row.
// Empty when no holding qualifies.
func UnrealizedPnL(table timeseries.Table, holdings []models.HoldingSummary) timeseries.Series {
	if table.NumRows() == 0 {
		return timeseries.Empty()
	}
	out := make([]float64, table.NumRows())
	any := false
	for _, h := range holdings {
		if h.BuyPrice == nil || h.Shares == 0 || !table.HasColumn(h.Ticker) {
			continue
		}
		any = true
		col := table.Column(h.Ticker)
		for i := 0; i < col.Len(); i++ {
			close := col.ValueAt(i)
			if math.IsNaN(close) {
				continue
			}
			out[i] += (close - *h.BuyPrice) * h.Shares
		}
	}
	if !any {
		return timeseries.Empty()
	}
	return timeseries.New(table.Dates(), out)
}

// BuildHoldingSummaries derives per-position valuation rows. The buy price
// is the first close on or after the buy date; the latest price is the last
// available close. Weight is each position's share of the summed current
// value.
func BuildHoldingSummaries(prices map[string]models.PriceHistory, holdings []models.Holding) []models.HoldingSummary {
	summaries := make([]models.HoldingSummary, 0, len(holdings))
	total := 0.0
	for _, h := range holdings {
		summary := models.HoldingSummary{
			Ticker:  h.Ticker,
			Shares:  h.Shares,
			BuyDate: h.BuyDate,
		}
		history, ok := prices[h.Ticker]
		if ok {
			closes := history.CloseSeries()
			if _, buy, found := closes.ValueOnOrAfter(h.BuyDate); found && buy > 0 {
				summary.BuyPrice = safemath.Ptr(buy)
			}
			if _, latest, found := closes.Last(); found && latest > 0 {
				summary.LatestPrice = safemath.Ptr(latest)
				summary.Value = safemath.Ptr(latest * h.Shares)
				total += latest * h.Shares
			}
		}
		if summary.BuyPrice != nil && summary.LatestPrice != nil {
			buy, latest := *summary.BuyPrice, *summary.LatestPrice
			summary.GainLossPct = safemath.Ptr(roundTo((latest/buy-1)*100, 2))
			summary.GainLossValue = safemath.Ptr((latest - buy) * h.Shares)
		}
		summaries = append(summaries, summary)
	}
	for i := range summaries {
		if summaries[i].Value != nil && total > 0 {
			summaries[i].WeightPct = safemath.Ptr(roundTo(*summaries[i].Value / total * 100, 2))
		}
	}
	return summaries
}

// BestWorstPerformers returns the tickers with the highest and lowest
// gain/loss percentage. Empty strings when no summary has a gain figure.
func BestWorstPerformers(summaries []models.HoldingSummary) (best, worst string) {
	bestPct, worstPct := math.Inf(-1), math.Inf(1)
	for _, s := range summaries {
		if s.GainLossPct == nil {
			continue
		}
		if *s.GainLossPct > bestPct {
			bestPct = *s.GainLossPct
			best = s.Ticker
		}
		if *s.GainLossPct < worstPct {
			worstPct = *s.GainLossPct
			worst = s.Ticker
		}
	}
	return best, worst
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
