package engine

import (
	"math"

	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/safemath"
	"github.com/quantlens/quantlens/internal/timeseries"
)

// Indicator periods and classification thresholds.
const (
	rsiPeriod = 14
	adxPeriod = 14

	trendEMAPeriod = 20
	trendSMAPeriod = 50
	momentumPeriod = 20
	yearBars       = 252

	rsiOverbought = 70.0
	rsiOversold   = 30.0
	rsiBullish    = 55.0
	adxTrending   = 25.0
	rangeBandPct  = 0.01
)

// RSISeries computes the Wilder-smoothed Relative Strength Index.
// Returns an empty series when history is shorter than period+1.
func RSISeries(closes timeseries.Series, period int) timeseries.Series {
	clean := closes.DropNaN()
	if clean.Len() < period+1 {
		return timeseries.Empty()
	}

	deltas := clean.Diff()
	gains := make([]float64, deltas.Len())
	losses := make([]float64, deltas.Len())
	for i := 0; i < deltas.Len(); i++ {
		d := deltas.ValueAt(i)
		if math.IsNaN(d) {
			gains[i] = math.NaN()
			losses[i] = math.NaN()
			continue
		}
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	avgGain := timeseries.New(clean.Times(), gains).WilderSmooth(period)
	avgLoss := timeseries.New(clean.Times(), losses).WilderSmooth(period)

	rsi := make([]float64, clean.Len())
	for i := range rsi {
		g, l := avgGain.ValueAt(i), avgLoss.ValueAt(i)
		switch {
		case math.IsNaN(g) || math.IsNaN(l):
			rsi[i] = math.NaN()
		case l == 0:
			rsi[i] = 100
		default:
			rs := g / l
			rsi[i] = 100 - 100/(1+rs)
		}
	}
	return timeseries.New(clean.Times(), rsi)
}

// ADXSeries computes the Average Directional Index with Wilder smoothing of
// directional movement and true range. Empty when history is shorter than
// period+1 bars.
func ADXSeries(highs, lows, closes timeseries.Series, period int) timeseries.Series {
	n := closes.Len()
	if n < period+1 || highs.Len() != n || lows.Len() != n {
		return timeseries.Empty()
	}

	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr[0], plusDM[0], minusDM[0] = math.NaN(), math.NaN(), math.NaN()

	for i := 1; i < n; i++ {
		h, l := highs.ValueAt(i), lows.ValueAt(i)
		prevH, prevL := highs.ValueAt(i-1), lows.ValueAt(i-1)
		prevC := closes.ValueAt(i - 1)

		tr[i] = math.Max(h-l, math.Max(math.Abs(h-prevC), math.Abs(l-prevC)))

		upMove := h - prevH
		downMove := prevL - l
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	times := closes.Times()
	smTR := timeseries.New(times, tr).WilderSmooth(period)
	smPlus := timeseries.New(times, plusDM).WilderSmooth(period)
	smMinus := timeseries.New(times, minusDM).WilderSmooth(period)

	dx := make([]float64, n)
	for i := 0; i < n; i++ {
		t := smTR.ValueAt(i)
		if math.IsNaN(t) || t == 0 {
			dx[i] = math.NaN()
			continue
		}
		plusDI := 100 * smPlus.ValueAt(i) / t
		minusDI := 100 * smMinus.ValueAt(i) / t
		sum := plusDI + minusDI
		if sum == 0 {
			dx[i] = math.NaN()
			continue
		}
		dx[i] = 100 * math.Abs(plusDI-minusDI) / sum
	}

	return timeseries.New(times, dx).WilderSmooth(period)
}

// classifyTrend evaluates the trend of the latest bar. Branches are checked
// in order; the first match wins. NaN operands fail every comparison, which
// lands in the regime's fallback label.
func classifyTrend(price, ema20, sma50, emaSlope, rsi, adx float64) string {
	if adx > adxTrending {
		switch {
		case price > ema20 && price > sma50 && emaSlope > 0 && rsi > rsiBullish:
			return models.TrendStrongBullish
		case price > ema20 && emaSlope > 0:
			return models.TrendBullish
		case price < ema20 && price < sma50 && emaSlope < 0:
			return models.TrendStrongBearish
		case price < ema20 && emaSlope < 0:
			return models.TrendBearish
		default:
			return models.TrendNeutral
		}
	}
	switch {
	case price != 0 && math.Abs(price-ema20)/price < rangeBandPct:
		return models.TrendRangeBound
	case price > ema20:
		return models.TrendWeakBullish
	default:
		return models.TrendWeakBearish
	}
}

// rsiCategory maps an RSI reading to its display bucket.
func rsiCategory(rsi float64) string {
	switch {
	case rsi >= rsiOverbought:
		return models.RSIOverbought
	case rsi <= rsiOversold:
		return models.RSIOversold
	default:
		return models.RSINeutral
	}
}

// ComputePositionHealth derives technical indicators per ticker from that
// ticker's own bar history. Tickers always get a record; indicators that
// lack history stay nil.
func ComputePositionHealth(prices map[string]models.PriceHistory, order []string) []models.PositionHealthRecord {
	records := make([]models.PositionHealthRecord, 0, len(order))
	for _, ticker := range order {
		rec := models.PositionHealthRecord{Ticker: ticker}
		history, ok := prices[ticker]
		if ok {
			fillHealthRecord(&rec, history)
		}
		records = append(records, rec)
	}
	return records
}

func fillHealthRecord(rec *models.PositionHealthRecord, history models.PriceHistory) {
	closes := history.CloseSeries().DropNaN()
	if closes.IsEmpty() {
		return
	}
	_, lastClose, _ := closes.Last()
	rec.LastClose = safemath.Ptr(lastClose)

	rsi := RSISeries(closes, rsiPeriod)
	latestRSI := math.NaN()
	if _, v, ok := rsi.Last(); ok {
		latestRSI = v
		rec.RSI = safemath.Ptr(roundTo(v, 2))
		rec.RSICategory = rsiCategory(v)
	}

	adx := ADXSeries(history.HighSeries(), history.LowSeries(), history.CloseSeries(), adxPeriod)
	latestADX := math.NaN()
	if _, v, ok := adx.Last(); ok {
		latestADX = v
		rec.ADX = safemath.Ptr(roundTo(v, 2))
	}

	ema20 := closes.EMA(trendEMAPeriod)
	sma50 := closes.RollingMean(trendSMAPeriod)
	emaSlope := math.NaN()
	if ema20.Len() >= 2 {
		emaSlope = ema20.ValueAt(ema20.Len()-1) - ema20.ValueAt(ema20.Len()-2)
	}
	latestEMA := math.NaN()
	if _, v, ok := ema20.Last(); ok {
		latestEMA = v
	}
	latestSMA := math.NaN()
	if _, v, ok := sma50.Last(); ok {
		latestSMA = v
	}
	rec.Trend = classifyTrend(lastClose, latestEMA, latestSMA, emaSlope, latestRSI, latestADX)

	if closes.Len() > momentumPeriod {
		prev := closes.ValueAt(closes.Len() - 1 - momentumPeriod)
		if prev != 0 {
			rec.Momentum20 = safemath.Ptr((lastClose - prev) / prev)
		}
	}

	fillYearExtremes(rec, history, lastClose)
}

// fillYearExtremes sets the trailing-252-bar high/low and percent distances.
func fillYearExtremes(rec *models.PositionHealthRecord, history models.PriceHistory, lastClose float64) {
	highs := history.HighSeries().DropNaN()
	lows := history.LowSeries().DropNaN()
	if highs.Len() < yearBars || lows.Len() < yearBars {
		return
	}
	high := timeseries.Max(highs.Tail(yearBars).Values())
	low := timeseries.Min(lows.Tail(yearBars).Values())
	if math.IsNaN(high) || math.IsNaN(low) {
		return
	}
	rec.High52W = safemath.Ptr(high)
	rec.Low52W = safemath.Ptr(low)
	if high != 0 {
		rec.PctFromHigh = safemath.Ptr(roundTo((lastClose-high)/high*100, 2))
	}
	if low != 0 {
		rec.PctFromLow = safemath.Ptr(roundTo((lastClose-low)/low*100, 2))
	}
}
