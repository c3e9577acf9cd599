package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlens/quantlens/internal/common"
	"github.com/quantlens/quantlens/internal/interfaces"
	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/timeseries"
)

func newTestCache(t *testing.T) *BadgerCache {
	t.Helper()
	cache, err := NewBadgerCache(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func testKey(ticker string) interfaces.SeriesKey {
	return interfaces.SeriesKey{
		Ticker: ticker,
		From:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPriceCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	key := testKey("ACME")

	_, ok := cache.GetPrices(key)
	assert.False(t, ok)

	history := models.PriceHistory{
		Ticker: "ACME",
		Bars: []models.EODBar{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), High: 101, Low: 99, Close: 100},
		},
	}
	require.NoError(t, cache.PutPrices(key, history))

	got, ok := cache.GetPrices(key)
	require.True(t, ok)
	assert.Equal(t, history.Ticker, got.Ticker)
	require.Len(t, got.Bars, 1)
	assert.Equal(t, 100.0, got.Bars[0].Close)
}

func TestPriceCacheKeyedByWindow(t *testing.T) {
	cache := newTestCache(t)
	require.NoError(t, cache.PutPrices(testKey("ACME"), models.PriceHistory{Ticker: "ACME"}))

	other := testKey("ACME")
	other.To = other.To.AddDate(0, 1, 0)

	_, ok := cache.GetPrices(other)
	assert.False(t, ok, "different window is a different cache entry")
}

func TestDividendCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	key := testKey("ACME")

	history := models.DividendHistory{
		Ticker: "ACME",
		Payments: []models.DividendPayment{
			{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Amount: 2.5},
		},
	}
	require.NoError(t, cache.PutDividends(key, history))

	got, ok := cache.GetDividends(key)
	require.True(t, ok)
	require.Len(t, got.Payments, 1)
	assert.Equal(t, 2.5, got.Payments[0].Amount)
}

func TestFundamentalsCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)

	dates := []time.Time{time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)}
	bundle := models.FundamentalsBundle{
		Ticker: "ACME",
		Income: models.StatementTable{
			"Net Income": timeseries.New(dates, []float64{100}),
		},
		Balance:           models.StatementTable{},
		SharesOutstanding: timeseries.New(dates, []float64{50}),
	}
	require.NoError(t, cache.PutFundamentals("ACME", bundle))

	got, ok := cache.GetFundamentals("ACME")
	require.True(t, ok)
	ni := got.Income.FirstAvailable("Net Income")
	require.NotNil(t, ni)
	assert.Equal(t, 100.0, *ni)
	assert.Equal(t, 1, got.SharesOutstanding.Len())

	_, ok = cache.GetFundamentals("GHOST")
	assert.False(t, ok)
}
