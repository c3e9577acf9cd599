package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/timeseries"
)

func valueSeries(values []float64) timeseries.Series {
	times := make([]time.Time, len(values))
	for i := range times {
		times[i] = testStart.AddDate(0, 0, i)
	}
	return timeseries.New(times, values)
}

func TestComputePortfolioMetricsDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"empty", nil},
		{"single point", []float64{1500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputePortfolioMetrics(valueSeries(tt.values), nil, DefaultRiskFreeRate)

			assert.Equal(t, 0.0, m.CumulativeReturn)
			assert.Equal(t, 0.0, m.Volatility)
			assert.Equal(t, 0.0, m.CAGR)
			assert.Nil(t, m.Sharpe)
			assert.Nil(t, m.Sortino)
			assert.Nil(t, m.MaxDrawdown)
			assert.True(t, m.Returns.IsEmpty())
		})
	}
}

func TestCAGRRoundTrip(t *testing.T) {
	rates := []float64{0.05, 0.12, 0.25}
	for _, r := range rates {
		start := 100.0
		end := start * math.Pow(1+r, 5)
		assert.InDelta(t, r, CAGR(start, end, 5), 1e-12)
	}
}

func TestCAGRGuards(t *testing.T) {
	assert.True(t, math.IsNaN(CAGR(100, 150, 0)))
	assert.True(t, math.IsNaN(CAGR(100, 150, -1)))
	assert.True(t, math.IsNaN(CAGR(0, 150, 5)))
}

func TestComputePortfolioMetricsCAGRRoundTrip(t *testing.T) {
	// two observations exactly five years apart (365.25d/yr) growing at 12%/yr
	r := 0.12
	times := []time.Time{
		testStart,
		testStart.Add(time.Duration(5*365.25*24) * time.Hour),
	}
	value := timeseries.New(times, []float64{1000, 1000 * math.Pow(1+r, 5)})

	m := ComputePortfolioMetrics(value, nil, DefaultRiskFreeRate)

	assert.InDelta(t, r, m.CAGR, 1e-9)
}

func TestComputePortfolioMetricsVolatility(t *testing.T) {
	value := valueSeries([]float64{100, 102, 101, 103, 102, 104})

	m := ComputePortfolioMetrics(value, nil, DefaultRiskFreeRate)

	logs := value.LogReturns()
	expected := timeseries.Std(logs.Values()) * math.Sqrt(252)
	assert.InDelta(t, expected, m.Volatility, 1e-12)
	assert.InDelta(t, 0.04, m.CumulativeReturn, 1e-12)
}

func TestSharpeNilOnZeroDeviation(t *testing.T) {
	// repeated doublings give bit-identical log returns, so the excess
	// deviation is exactly zero
	value := valueSeries([]float64{100, 200, 400})

	m := ComputePortfolioMetrics(value, nil, DefaultRiskFreeRate)

	assert.Nil(t, m.Sharpe)
}

func TestSortinoNilWithoutDownside(t *testing.T) {
	value := valueSeries(trendingCloses(10, 100, 0.01))

	m := ComputePortfolioMetrics(value, nil, DefaultRiskFreeRate)

	assert.Nil(t, m.Sortino)
}

func TestMaxDrawdown(t *testing.T) {
	value := valueSeries([]float64{100, 120, 90, 110})

	m := ComputePortfolioMetrics(value, nil, DefaultRiskFreeRate)

	require.NotNil(t, m.MaxDrawdown)
	assert.InDelta(t, (90.0-120.0)/120.0, *m.MaxDrawdown, 1e-12)
}

func TestDollarWeightedOverride(t *testing.T) {
	value := valueSeries([]float64{1000, 1100, 1200})
	holdings := []models.HoldingSummary{
		{Ticker: "A", Shares: 10, BuyDate: testStart, BuyPrice: ptr(100), LatestPrice: ptr(150)},
		{Ticker: "B", Shares: 5, BuyDate: testStart, BuyPrice: ptr(40), LatestPrice: ptr(30)},
		{Ticker: "NOPRICE", Shares: 5, BuyDate: testStart},
	}

	m := ComputePortfolioMetrics(value, holdings, DefaultRiskFreeRate)

	// cost 1000+200=1200, current 1500+150=1650
	assert.InDelta(t, 1650.0/1200.0-1, m.CumulativeReturn, 1e-12)
	require.NotNil(t, m.PFGainLoss)
	assert.InDelta(t, 450.0, *m.PFGainLoss, 1e-9)
}

func TestDollarWeightedSkippedWhenNoPrices(t *testing.T) {
	value := valueSeries([]float64{1000, 1200})
	holdings := []models.HoldingSummary{{Ticker: "A", Shares: 10, BuyDate: testStart}}

	m := ComputePortfolioMetrics(value, holdings, DefaultRiskFreeRate)

	assert.InDelta(t, 0.2, m.CumulativeReturn, 1e-12)
	assert.Nil(t, m.PFGainLoss)
}

func TestComputeRollingMetrics(t *testing.T) {
	value := valueSeries(trendingCloses(30, 100, 0.005))
	logs := value.LogReturns()

	rolling := ComputeRollingMetrics(logs, 10, DefaultRiskFreeRate)

	require.Equal(t, logs.Len(), rolling.Volatility.Len())
	// first window-1 points undefined
	for i := 0; i < 9; i++ {
		assert.True(t, math.IsNaN(rolling.Volatility.ValueAt(i)))
		assert.True(t, math.IsNaN(rolling.Sharpe.ValueAt(i)))
	}
	// constant growth: rolling vol is ~0 and sharpe undefined or huge
	assert.InDelta(t, 0.0, rolling.Volatility.ValueAt(15), 1e-9)
}

func TestComputeRollingMetricsValues(t *testing.T) {
	value := valueSeries([]float64{100, 102, 101, 103, 102, 104, 103, 105, 104, 106, 105, 107})
	logs := value.LogReturns()

	rolling := ComputeRollingMetrics(logs, 5, 0)

	window := logs.Values()[3:8]
	expectedVol := timeseries.Std(window) * math.Sqrt(252)
	assert.InDelta(t, expectedVol, rolling.Volatility.ValueAt(7), 1e-12)

	expectedSharpe := timeseries.Mean(window) / timeseries.Std(window) * math.Sqrt(252)
	assert.InDelta(t, expectedSharpe, rolling.Sharpe.ValueAt(7), 1e-12)
}
