package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/timeseries"
)

func TestPortfolioValueTwoTickers(t *testing.T) {
	prices := map[string]models.PriceHistory{
		"A": historyFromCloses("A", []float64{100, 110, 121}),
		"B": historyFromCloses("B", []float64{25, 30, 40}),
	}
	table := BuildCloseTable(prices, []string{"A", "B"}, 5)
	value := PortfolioValue(table, map[string]float64{"A": 10, "B": 20})

	require.Equal(t, 3, value.Len())
	assert.InDelta(t, 1500.0, value.ValueAt(0), 1e-9)
	assert.InDelta(t, 1700.0, value.ValueAt(1), 1e-9)
	assert.InDelta(t, 2010.0, value.ValueAt(2), 1e-9)

	returns := value.SimpleReturns()
	require.Equal(t, 2, returns.Len())
	assert.InDelta(t, 0.1333, returns.ValueAt(0), 1e-4)
	assert.InDelta(t, 0.1824, returns.ValueAt(1), 1e-4)
}

func TestPortfolioValueEmptyInputs(t *testing.T) {
	assert.True(t, PortfolioValue(timeseries.BuildTable(nil, nil, 0), nil).IsEmpty())

	table := BuildCloseTable(map[string]models.PriceHistory{
		"A": historyFromCloses("A", []float64{100, 110}),
	}, []string{"A"}, 5)
	assert.True(t, PortfolioValue(table, map[string]float64{}).IsEmpty())
}

func TestPortfolioValueNonNegative(t *testing.T) {
	prices := map[string]models.PriceHistory{
		"A": historyFromCloses("A", trendingCloses(30, 100, -0.05)),
	}
	table := BuildCloseTable(prices, []string{"A"}, 5)
	value := PortfolioValue(table, map[string]float64{"A": 3})

	for i := 0; i < value.Len(); i++ {
		assert.GreaterOrEqual(t, value.ValueAt(i), 0.0)
	}
}

func TestUnrealizedPnL(t *testing.T) {
	prices := map[string]models.PriceHistory{
		"A": historyFromCloses("A", []float64{100, 110, 121}),
		"B": historyFromCloses("B", []float64{25, 30, 40}),
	}
	table := BuildCloseTable(prices, []string{"A", "B"}, 5)
	holdings := []models.HoldingSummary{
		{Ticker: "A", Shares: 10, BuyPrice: ptr(100)},
		{Ticker: "B", Shares: 20, BuyPrice: ptr(25)},
		{Ticker: "NOPRICE", Shares: 5},
	}

	pnl := UnrealizedPnL(table, holdings)

	require.Equal(t, 3, pnl.Len())
	assert.InDelta(t, 0.0, pnl.ValueAt(0), 1e-9)
	assert.InDelta(t, 200.0, pnl.ValueAt(1), 1e-9) // 10x10 + 5x20
	assert.InDelta(t, 510.0, pnl.ValueAt(2), 1e-9) // 21x10 + 15x20
}

func TestUnrealizedPnLNoQualifyingHoldings(t *testing.T) {
	prices := map[string]models.PriceHistory{
		"A": historyFromCloses("A", []float64{100, 110}),
	}
	table := BuildCloseTable(prices, []string{"A"}, 5)

	assert.True(t, UnrealizedPnL(table, []models.HoldingSummary{{Ticker: "A", Shares: 10}}).IsEmpty())
	assert.True(t, UnrealizedPnL(timeseries.BuildTable(nil, nil, 0), nil).IsEmpty())
}

func TestBuildHoldingSummaries(t *testing.T) {
	prices := map[string]models.PriceHistory{
		"A": historyFromCloses("A", []float64{100, 110, 121}),
		"B": historyFromCloses("B", []float64{50, 45, 40}),
	}
	holdings := []models.Holding{
		{Ticker: "A", Shares: 10, BuyDate: testStart},
		{Ticker: "B", Shares: 20, BuyDate: testStart},
		{Ticker: "MISSING", Shares: 5, BuyDate: testStart},
	}

	summaries := BuildHoldingSummaries(prices, holdings)

	require.Len(t, summaries, 3)

	a := summaries[0]
	require.NotNil(t, a.BuyPrice)
	assert.InDelta(t, 100.0, *a.BuyPrice, 1e-9)
	require.NotNil(t, a.LatestPrice)
	assert.InDelta(t, 121.0, *a.LatestPrice, 1e-9)
	require.NotNil(t, a.GainLossPct)
	assert.InDelta(t, 21.0, *a.GainLossPct, 1e-9)
	require.NotNil(t, a.GainLossValue)
	assert.InDelta(t, 210.0, *a.GainLossValue, 1e-9)
	require.NotNil(t, a.WeightPct)
	assert.InDelta(t, 1210.0/(1210.0+800.0)*100, *a.WeightPct, 0.01)

	b := summaries[1]
	require.NotNil(t, b.GainLossPct)
	assert.InDelta(t, -20.0, *b.GainLossPct, 1e-9)

	missing := summaries[2]
	assert.Nil(t, missing.BuyPrice)
	assert.Nil(t, missing.LatestPrice)
	assert.Nil(t, missing.Value)
}

func TestBuyPriceUsesFirstCloseOnOrAfterBuyDate(t *testing.T) {
	prices := map[string]models.PriceHistory{
		"A": historyFromCloses("A", []float64{100, 110, 121}),
	}
	// buy date falls between the first and second bar
	holdings := []models.Holding{
		{Ticker: "A", Shares: 1, BuyDate: testStart.Add(12 * time.Hour)},
	}

	summaries := BuildHoldingSummaries(prices, holdings)

	require.NotNil(t, summaries[0].BuyPrice)
	assert.InDelta(t, 110.0, *summaries[0].BuyPrice, 1e-9)
}

func TestBestWorstPerformers(t *testing.T) {
	summaries := []models.HoldingSummary{
		{Ticker: "A", GainLossPct: ptr(21.0)},
		{Ticker: "B", GainLossPct: ptr(-20.0)},
		{Ticker: "C"},
	}

	best, worst := BestWorstPerformers(summaries)

	assert.Equal(t, "A", best)
	assert.Equal(t, "B", worst)

	best, worst = BestWorstPerformers(nil)
	assert.Empty(t, best)
	assert.Empty(t, worst)
}

func ptr(v float64) *float64 { return &v }
