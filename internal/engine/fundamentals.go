package engine

import (
	"math"
	"sort"
	"time"

	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/safemath"
	"github.com/quantlens/quantlens/internal/timeseries"
)

// Ordered candidate labels for statement rows. Providers disagree on row
// naming; the first label present with a real value wins.
var (
	netIncomeLabels = []string{"Net Income", "Net Income Common Stockholders", "Net Income Applicable To Common Shares"}
	revenueLabels   = []string{"Total Revenue", "Operating Revenue", "Revenue"}
	equityLabels    = []string{"Stockholders Equity", "Total Stockholder Equity", "Common Stock Equity"}
	totalDebtLabels = []string{"Total Debt", "Long Term Debt"}
	currAssetLabels = []string{"Current Assets", "Total Current Assets"}
	currLiabLabels  = []string{"Current Liabilities", "Total Current Liabilities"}
	cashLabels      = []string{"Cash And Cash Equivalents", "Cash Cash Equivalents And Short Term Investments", "Cash And Short Term Investments"}
	ebitLabels      = []string{"EBIT", "Operating Income", "Pretax Income"}
	interestLabels  = []string{"Interest Expense", "Interest Expense Non Operating"}
	totalAssetLabel = []string{"Total Assets"}
)

// Growth-history requirements and narrative-qualifier cutoffs. The
// qualifiers are presentation labels layered over the numeric engine.
const (
	cagrMinYears = 3 // needs minYears+1 annual observations

	growthStrongPct   = 15.0
	growthModeratePct = 5.0

	roeStrongPct   = 15.0
	roeModeratePct = 8.0

	leverageConservativeDE  = 1.0
	leverageElevatedDE      = 2.0
	coverageComfortable     = 4.0
	liquidityComfortable    = 1.5
	liquidityAdequate       = 1.0
)

const ttmDays = 365

// TrailingEPS computes trailing-twelve-month earnings per share: the sum of
// the last four quarterly net-income observations divided by the
// days-weighted average shares outstanding over the TTM window ending at
// asOf. Nil when either input is too sparse.
func TrailingEPS(quarterlyNetIncome, sharesOutstanding timeseries.Series, asOf time.Time) *float64 {
	ni := quarterlyNetIncome.DropNaN()
	if ni.Len() < 4 {
		return nil
	}
	ttmIncome := 0.0
	for i := ni.Len() - 4; i < ni.Len(); i++ {
		ttmIncome += ni.ValueAt(i)
	}

	avgShares := daysWeightedAverage(sharesOutstanding, asOf.AddDate(0, 0, -ttmDays), asOf)
	if avgShares == nil || *avgShares == 0 {
		return nil
	}
	return safemath.Ptr(ttmIncome / *avgShares)
}

// daysWeightedAverage averages a step series over [start, end], weighting
// each observation by the days it was in effect. The value in effect at the
// window start is the last observation at or before it; a series that only
// begins mid-window contributes from its first observation.
func daysWeightedAverage(s timeseries.Series, start, end time.Time) *float64 {
	clean := s.DropNaN()
	if clean.IsEmpty() || !end.After(start) {
		return nil
	}

	type segment struct {
		from  time.Time
		value float64
	}
	segments := make([]segment, 0, clean.Len()+1)
	for i := 0; i < clean.Len(); i++ {
		t := clean.TimeAt(i)
		if !t.After(start) {
			// collapses to the value in effect at the window start
			if len(segments) > 0 && segments[0].from.Equal(start) {
				segments[0].value = clean.ValueAt(i)
				continue
			}
			segments = append(segments, segment{from: start, value: clean.ValueAt(i)})
			continue
		}
		if t.After(end) {
			break
		}
		segments = append(segments, segment{from: t, value: clean.ValueAt(i)})
	}
	if len(segments) == 0 {
		return nil
	}

	weighted := 0.0
	totalDays := 0.0
	for i, seg := range segments {
		segEnd := end
		if i+1 < len(segments) {
			segEnd = segments[i+1].from
		}
		days := segEnd.Sub(seg.from).Hours() / 24
		if days <= 0 {
			continue
		}
		weighted += seg.value * days
		totalDays += days
	}
	if totalDays == 0 {
		return nil
	}
	return safemath.Ptr(weighted / totalDays)
}

// growthFromAnnual derives YoY growth (last two annual observations) and
// CAGR (requires cagrMinYears+1 observations and a positive start) from an
// annual series. The CAGR span is reported in whole years.
func growthFromAnnual(annual timeseries.Series) (yoy, cagrPct *float64, cagrYears int) {
	clean := annual.DropNaN()
	n := clean.Len()
	if n >= 2 {
		prev := clean.ValueAt(n - 2)
		latest := clean.ValueAt(n - 1)
		if prev != 0 {
			yoy = safemath.Ptr(roundTo((latest/prev-1)*100, 2))
		}
	}
	if n >= cagrMinYears+1 {
		start := clean.ValueAt(0)
		end := clean.ValueAt(n - 1)
		years := clean.TimeAt(n-1).Sub(clean.TimeAt(0)).Hours() / 24 / 365.25
		if start > 0 && years > 0 {
			if rate := CAGR(start, end, years); !math.IsNaN(rate) {
				cagrPct = safemath.Ptr(roundTo(rate*100, 2))
				cagrYears = int(math.Round(years))
			}
		}
	}
	return yoy, cagrPct, cagrYears
}

// ComputeFundamentalsRow derives the valuation and quality row for one
// ticker from its statement bundle and latest price. Quality buckets are
// assigned later, across the full ticker set.
func ComputeFundamentalsRow(bundle models.FundamentalsBundle, latestPrice *float64, asOf time.Time) models.FundamentalsRow {
	row := models.FundamentalsRow{Ticker: bundle.Ticker}
	if bundle.IsEmpty() {
		return row
	}

	netIncome := bundle.Income.FirstAvailable(netIncomeLabels...)
	revenue := bundle.Income.FirstAvailable(revenueLabels...)
	ebit := bundle.Income.FirstAvailable(ebitLabels...)
	interest := bundle.Income.FirstAvailable(interestLabels...)
	equity := bundle.Balance.FirstAvailable(equityLabels...)
	totalDebt := bundle.Balance.FirstAvailable(totalDebtLabels...)
	totalAssets := bundle.Balance.FirstAvailable(totalAssetLabel...)
	currentAssets := bundle.Balance.FirstAvailable(currAssetLabels...)
	currentLiabs := bundle.Balance.FirstAvailable(currLiabLabels...)
	cash := bundle.Balance.FirstAvailable(cashLabels...)

	if quarterlyNI, ok := bundle.QuarterlyIncome.ResolveSeries(netIncomeLabels...); ok {
		row.EPS = safemath.Round(TrailingEPS(quarterlyNI, bundle.SharesOutstanding, asOf), 1, 2)
	}

	row.PE = safemath.Round(safemath.Divide(latestPrice, row.EPS), 1, 2)

	if _, latestShares, ok := bundle.SharesOutstanding.Last(); ok && latestShares > 0 {
		row.MarketCap = safemath.Round(safemath.Mul(latestPrice, safemath.Ptr(latestShares)), 1, 0)
		bookPerShare := safemath.Divide(equity, safemath.Ptr(latestShares))
		row.PB = safemath.Round(safemath.Divide(latestPrice, bookPerShare), 1, 2)
	}

	row.ROEPct = safemath.Margin(netIncome, equity)
	row.ROAPct = safemath.Margin(netIncome, totalAssets)
	row.ROCEPct = safemath.Margin(ebit, safemath.Sub(totalAssets, currentLiabs))
	row.ProfitMarginPct = safemath.Margin(netIncome, revenue)
	row.OperatingMarginPct = safemath.Margin(ebit, revenue)
	row.DebtToEquity = safemath.Round(safemath.Divide(totalDebt, equity), 1, 2)
	row.CurrentRatio = safemath.Round(safemath.Divide(currentAssets, currentLiabs), 1, 2)
	row.NetDebt = safemath.Sub(totalDebt, cash)
	if interest != nil {
		abs := math.Abs(*interest)
		row.InterestCoverage = safemath.Round(safemath.Divide(ebit, safemath.FromFloat(abs)), 1, 2)
	}

	if revSeries, ok := bundle.Income.ResolveSeries(revenueLabels...); ok {
		row.RevenueYoYPct, row.RevenueCAGRPct, row.RevenueCAGRYears = growthFromAnnual(revSeries)
	}

	row.GrowthQualifier = growthQualifier(row.RevenueYoYPct)
	row.ReturnsQualifier = returnsQualifier(row.ROEPct)
	row.LeverageQualifier = leverageQualifier(row.DebtToEquity, row.InterestCoverage)
	row.LiquidityQualifier = liquidityQualifier(row.CurrentRatio)

	return row
}

func growthQualifier(yoy *float64) string {
	switch {
	case yoy == nil:
		return ""
	case *yoy > growthStrongPct:
		return "strong"
	case *yoy > growthModeratePct:
		return "moderate"
	default:
		return "weak"
	}
}

func returnsQualifier(roe *float64) string {
	switch {
	case roe == nil:
		return ""
	case *roe > roeStrongPct:
		return "strong"
	case *roe > roeModeratePct:
		return "moderate"
	default:
		return "weak"
	}
}

func leverageQualifier(de, coverage *float64) string {
	if de == nil {
		return ""
	}
	switch {
	case *de < leverageConservativeDE && (coverage == nil || *coverage > coverageComfortable):
		return "conservative"
	case *de > leverageElevatedDE:
		return "elevated"
	default:
		return "moderate"
	}
}

func liquidityQualifier(ratio *float64) string {
	switch {
	case ratio == nil:
		return ""
	case *ratio >= liquidityComfortable:
		return "comfortable"
	case *ratio >= liquidityAdequate:
		return "adequate"
	default:
		return "tight"
	}
}

// ComputeDuPont decomposes ROE per fiscal year present in the intersection
// of net income, revenue, equity, and total assets.
func ComputeDuPont(bundle models.FundamentalsBundle) []models.DuPontRow {
	ni, okNI := bundle.Income.ResolveSeries(netIncomeLabels...)
	rev, okRev := bundle.Income.ResolveSeries(revenueLabels...)
	eq, okEq := bundle.Balance.ResolveSeries(equityLabels...)
	assets, okAssets := bundle.Balance.ResolveSeries(totalAssetLabel...)
	if !okNI || !okRev || !okEq || !okAssets {
		return nil
	}

	niByYear := valuesByYear(ni)
	revByYear := valuesByYear(rev)
	eqByYear := valuesByYear(eq)
	assetsByYear := valuesByYear(assets)

	years := make([]int, 0, len(niByYear))
	for y := range niByYear {
		if _, ok := revByYear[y]; !ok {
			continue
		}
		if _, ok := eqByYear[y]; !ok {
			continue
		}
		if _, ok := assetsByYear[y]; !ok {
			continue
		}
		years = append(years, y)
	}
	sort.Ints(years)

	rows := make([]models.DuPontRow, 0, len(years))
	for _, y := range years {
		niV := safemath.Ptr(niByYear[y])
		revV := safemath.Ptr(revByYear[y])
		eqV := safemath.Ptr(eqByYear[y])
		assetV := safemath.Ptr(assetsByYear[y])

		margin := safemath.Divide(niV, revV)
		turnover := safemath.Divide(revV, assetV)
		multiplier := safemath.Divide(assetV, eqV)

		rows = append(rows, models.DuPontRow{
			Ticker:           bundle.Ticker,
			Year:             y,
			NetMarginPct:     safemath.Round(margin, 100, 2),
			AssetTurnover:    safemath.Round(turnover, 1, 2),
			EquityMultiplier: safemath.Round(multiplier, 1, 2),
			ROEPct:           safemath.Round(safemath.Mul(safemath.Mul(margin, turnover), multiplier), 100, 2),
			ROAPct:           safemath.Round(safemath.Mul(margin, turnover), 100, 2),
		})
	}
	return rows
}

// valuesByYear indexes an annual series by calendar year, keeping the
// latest observation within each year.
func valuesByYear(s timeseries.Series) map[int]float64 {
	out := make(map[int]float64)
	for i := 0; i < s.Len(); i++ {
		v := s.ValueAt(i)
		if math.IsNaN(v) {
			continue
		}
		out[s.TimeAt(i).Year()] = v
	}
	return out
}

// AssignQualityBuckets labels each row by where its ROE falls in the
// current sample: at or above the 75th percentile "High", at or above the
// median "Strong", below "Below Avg". A single-ticker sample gets the
// "Single Holding" bucket regardless of ROE. Rows without ROE stay
// unlabeled.
func AssignQualityBuckets(rows []models.FundamentalsRow) {
	if len(rows) == 1 {
		rows[0].QualityBucket = models.QualitySingleHolding
		return
	}

	roes := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.ROEPct != nil {
			roes = append(roes, *r.ROEPct)
		}
	}
	if len(roes) < 2 {
		return
	}
	median := timeseries.Median(roes)
	p75 := timeseries.Quantile(roes, 0.75)

	for i := range rows {
		roe := rows[i].ROEPct
		if roe == nil {
			continue
		}
		switch {
		case *roe >= p75:
			rows[i].QualityBucket = models.QualityHigh
		case *roe >= median:
			rows[i].QualityBucket = models.QualityStrong
		default:
			rows[i].QualityBucket = models.QualityBelowAvg
		}
	}
}

// ComputeFundamentals runs the per-ticker fundamentals and DuPont
// decompositions for the full ticker set and assigns quality buckets.
func ComputeFundamentals(bundles map[string]models.FundamentalsBundle, order []string, latestPrices map[string]*float64, asOf time.Time) ([]models.FundamentalsRow, []models.DuPontRow) {
	rows := make([]models.FundamentalsRow, 0, len(order))
	dupont := make([]models.DuPontRow, 0)
	for _, ticker := range order {
		bundle, ok := bundles[ticker]
		if !ok {
			rows = append(rows, models.FundamentalsRow{Ticker: ticker})
			continue
		}
		rows = append(rows, ComputeFundamentalsRow(bundle, latestPrices[ticker], asOf))
		dupont = append(dupont, ComputeDuPont(bundle)...)
	}
	AssignQualityBuckets(rows)
	return rows, dupont
}
