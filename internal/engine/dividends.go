package engine

import (
	"math"
	"time"

	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/safemath"
	"github.com/quantlens/quantlens/internal/timeseries"
)

// dividendCAGRBins caps the annual bins entering the dividend growth rate.
const dividendCAGRBins = 6

// reconcileDate rebuilds t's calendar date in loc, so a buy date entered in
// one timezone compares correctly against an ex-date index kept in another.
func reconcileDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dividendCAGR computes the growth rate of calendar-year dividend sums over
// the trailing bins. Needs at least two bins and a positive start.
func dividendCAGR(payments timeseries.Series) (*float64, int) {
	annual := payments.ResampleAnnualSum().Tail(dividendCAGRBins)
	if annual.Len() < 2 {
		return nil, 0
	}
	start := annual.ValueAt(0)
	end := annual.ValueAt(annual.Len() - 1)
	years := float64(annual.TimeAt(annual.Len()-1).Year() - annual.TimeAt(0).Year())
	if start <= 0 || years <= 0 {
		return nil, 0
	}
	rate := CAGR(start, end, years)
	if math.IsNaN(rate) {
		return nil, 0
	}
	return safemath.Ptr(roundTo(rate*100, 2)), int(years)
}

// payoutRatio derives the payout percentage for the last complete calendar
// year: per-share dividends paid that year, scaled by the latest shares
// outstanding, over that year's net income. Calendar-year bucketing is
// applied uniformly regardless of the issuer's fiscal convention.
func payoutRatio(payments timeseries.Series, bundle models.FundamentalsBundle, asOf time.Time) *float64 {
	annual := payments.ResampleAnnualSum()
	if annual.IsEmpty() {
		return nil
	}
	perShare := math.NaN()
	year := 0
	for i := annual.Len() - 1; i >= 0; i-- {
		if y := annual.TimeAt(i).Year(); y < asOf.Year() {
			perShare = annual.ValueAt(i)
			year = y
			break
		}
	}
	if math.IsNaN(perShare) || perShare <= 0 {
		return nil
	}

	_, shares, ok := bundle.SharesOutstanding.Last()
	if !ok || shares <= 0 {
		return nil
	}

	niSeries, ok := bundle.Income.ResolveSeries(netIncomeLabels...)
	if !ok {
		return nil
	}
	ni, found := valuesByYear(niSeries)[year]
	if !found || ni <= 0 {
		return nil
	}
	return safemath.Margin(safemath.Ptr(perShare*shares), safemath.Ptr(ni))
}

// ComputeDividends derives per-ticker income records and the portfolio
// income summary. An empty dividend history is a valid zero-income record,
// never an error.
func ComputeDividends(dividends map[string]models.DividendHistory, holdings []models.HoldingSummary, bundles map[string]models.FundamentalsBundle, asOf time.Time) ([]models.DividendRecord, models.IncomeSummary) {
	records := make([]models.DividendRecord, 0, len(holdings))

	totalIncome := 0.0
	projectedIncome := 0.0
	totalValue := 0.0
	payers := 0

	for _, h := range holdings {
		rec := models.DividendRecord{Ticker: h.Ticker}
		payments := dividends[h.Ticker].Series()

		// an empty payout history is a valid zero-income position
		loc := asOf.Location()
		if !payments.IsEmpty() {
			loc = payments.TimeAt(0).Location()
		}
		buy := reconcileDate(h.BuyDate, loc)
		now := reconcileDate(asOf, loc)

		rec.SinceBuy = payments.SumSince(buy)
		rec.TTM = payments.SumSince(now.AddDate(0, 0, -ttmDays))
		if !payments.IsEmpty() {
			last := payments.TimeAt(payments.Len() - 1)
			rec.LastExDate = &last
		}

		rec.YieldOnCostPct = safemath.Margin(safemath.Ptr(rec.TTM), h.BuyPrice)
		rec.CurrentYieldPct = safemath.Margin(safemath.Ptr(rec.TTM), h.LatestPrice)
		rec.CAGRPct, rec.CAGRYears = dividendCAGR(payments)
		if bundle, ok := bundles[h.Ticker]; ok {
			rec.PayoutRatioPct = payoutRatio(payments, bundle, asOf)
			if rec.PayoutRatioPct != nil {
				rec.RetentionPct = safemath.Ptr(roundTo(100-*rec.PayoutRatioPct, 2))
			}
		}

		totalIncome += rec.SinceBuy * h.Shares
		projectedIncome += rec.TTM * h.Shares
		if h.Value != nil {
			totalValue += *h.Value
		}
		if rec.SinceBuy > 0 {
			payers++
		}
		records = append(records, rec)
	}

	summary := models.IncomeSummary{
		TotalIncome: totalIncome,
		Payers:      payers,
		Holdings:    len(holdings),
	}
	if totalValue > 0 {
		summary.ForwardYieldPct = safemath.Ptr(roundTo(projectedIncome/totalValue*100, 2))
		summary.ActualYieldPct = safemath.Ptr(roundTo(totalIncome/totalValue*100, 2))
	}
	if len(holdings) > 0 {
		summary.PayersCoveragePct = safemath.Ptr(roundTo(float64(payers)/float64(len(holdings))*100, 2))
	}
	return records, summary
}
