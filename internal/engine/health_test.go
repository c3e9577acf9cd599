package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlens/quantlens/internal/models"
)

func TestRSIMonotonicRiseApproaches100(t *testing.T) {
	closes := trendingCloses(20, 100, 0.01)
	rsi := RSISeries(historyFromCloses("A", closes).CloseSeries(), rsiPeriod)

	_, latest, ok := rsi.Last()
	require.True(t, ok)
	assert.InDelta(t, 100.0, latest, 1e-9)
}

func TestRSIInsufficientHistory(t *testing.T) {
	closes := trendingCloses(14, 100, 0.01) // needs period+1
	rsi := RSISeries(historyFromCloses("A", closes).CloseSeries(), rsiPeriod)

	assert.True(t, rsi.IsEmpty())
}

func TestRSIBounded(t *testing.T) {
	closes := []float64{100, 98, 103, 99, 104, 101, 105, 100, 106, 102, 107, 103, 108, 104, 109, 105}
	rsi := RSISeries(historyFromCloses("A", closes).CloseSeries(), rsiPeriod)

	_, latest, ok := rsi.Last()
	require.True(t, ok)
	assert.Greater(t, latest, 0.0)
	assert.Less(t, latest, 100.0)
}

func TestRSICategories(t *testing.T) {
	tests := []struct {
		rsi      float64
		expected string
	}{
		{75, models.RSIOverbought},
		{70, models.RSIOverbought},
		{50, models.RSINeutral},
		{30, models.RSIOversold},
		{12, models.RSIOversold},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, rsiCategory(tt.rsi))
	}
}

func TestADXInsufficientHistory(t *testing.T) {
	h := historyFromCloses("A", trendingCloses(10, 100, 0.01))
	adx := ADXSeries(h.HighSeries(), h.LowSeries(), h.CloseSeries(), adxPeriod)

	assert.True(t, adx.IsEmpty())
}

func TestADXStrongTrend(t *testing.T) {
	// sustained one-directional move should register a trending ADX
	h := historyFromCloses("A", trendingCloses(80, 100, 0.01))
	adx := ADXSeries(h.HighSeries(), h.LowSeries(), h.CloseSeries(), adxPeriod)

	_, latest, ok := adx.Last()
	require.True(t, ok)
	assert.Greater(t, latest, adxTrending)
}

func TestClassifyTrendBranches(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		ema20    float64
		sma50    float64
		emaSlope float64
		rsi      float64
		adx      float64
		expected string
	}{
		{"strong bullish", 110, 105, 100, 0.5, 60, 30, models.TrendStrongBullish},
		{"bullish low rsi", 110, 105, 100, 0.5, 50, 30, models.TrendBullish},
		{"bullish below sma", 110, 105, 120, 0.5, 60, 30, models.TrendBullish},
		{"strong bearish", 90, 95, 100, -0.5, 40, 30, models.TrendStrongBearish},
		{"bearish above sma", 90, 95, 85, -0.5, 40, 30, models.TrendBearish},
		{"trending neutral", 110, 105, 100, -0.5, 60, 30, models.TrendNeutral},
		{"range-bound", 100, 100.5, 100, 0.1, 50, 20, models.TrendRangeBound},
		{"weak bullish", 110, 100, 100, 0.1, 50, 20, models.TrendWeakBullish},
		{"weak bearish", 90, 100, 100, 0.1, 50, 20, models.TrendWeakBearish},
		{"nan adx ranges", 110, 100, 100, 0.1, 50, math.NaN(), models.TrendWeakBullish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyTrend(tt.price, tt.ema20, tt.sma50, tt.emaSlope, tt.rsi, tt.adx)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestComputePositionHealthOverboughtScenario(t *testing.T) {
	prices := map[string]models.PriceHistory{
		"UP": historyFromCloses("UP", trendingCloses(40, 100, 0.01)),
	}

	records := ComputePositionHealth(prices, []string{"UP"})

	require.Len(t, records, 1)
	rec := records[0]
	require.NotNil(t, rec.RSI)
	assert.InDelta(t, 100.0, *rec.RSI, 0.01)
	assert.Equal(t, models.RSIOverbought, rec.RSICategory)
	require.NotNil(t, rec.Momentum20)
	assert.Positive(t, *rec.Momentum20)
}

func TestComputePositionHealthShortHistory(t *testing.T) {
	prices := map[string]models.PriceHistory{
		"TINY": historyFromCloses("TINY", []float64{100, 101, 102}),
	}

	records := ComputePositionHealth(prices, []string{"TINY", "GHOST"})

	require.Len(t, records, 2)

	tiny := records[0]
	require.NotNil(t, tiny.LastClose)
	assert.Nil(t, tiny.RSI)
	assert.Empty(t, tiny.RSICategory)
	assert.Nil(t, tiny.ADX)
	assert.Nil(t, tiny.Momentum20)
	assert.Nil(t, tiny.High52W)
	assert.NotEmpty(t, tiny.Trend)

	ghost := records[1]
	assert.Equal(t, "GHOST", ghost.Ticker)
	assert.Nil(t, ghost.LastClose)
	assert.Empty(t, ghost.Trend)
}

func TestComputePositionHealth52Week(t *testing.T) {
	closes := trendingCloses(300, 100, 0.002)
	prices := map[string]models.PriceHistory{
		"LONG": historyFromCloses("LONG", closes),
	}

	records := ComputePositionHealth(prices, []string{"LONG"})

	require.Len(t, records, 1)
	rec := records[0]
	require.NotNil(t, rec.High52W)
	require.NotNil(t, rec.Low52W)
	require.NotNil(t, rec.PctFromHigh)
	require.NotNil(t, rec.PctFromLow)
	assert.Greater(t, *rec.High52W, *rec.Low52W)
	// rising series: close sits near the high, well above the low
	assert.LessOrEqual(t, *rec.PctFromHigh, 0.0)
	assert.Positive(t, *rec.PctFromLow)
}

func TestMomentum20(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	closes[24] = 110 // 10% above the close 20 bars earlier
	prices := map[string]models.PriceHistory{"A": historyFromCloses("A", closes)}

	records := ComputePositionHealth(prices, []string{"A"})

	require.NotNil(t, records[0].Momentum20)
	assert.InDelta(t, 0.10, *records[0].Momentum20, 1e-12)
}
