// Package storage provides the BadgerDB-backed read-through series cache
// used by the fetch layer. Cached entries are flat, exported records;
// series are rebuilt on the way out.
package storage

import (
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/quantlens/quantlens/internal/common"
	"github.com/quantlens/quantlens/internal/interfaces"
	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/timeseries"
)

// BadgerCache implements interfaces.SeriesCache on a badgerhold store.
type BadgerCache struct {
	store  *badgerhold.Store
	logger *common.Logger
}

// NewBadgerCache opens (or creates) the cache at path.
func NewBadgerCache(logger *common.Logger, path string) (*BadgerCache, error) {
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil // Disable badger's internal logging

	store, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}

	logger.Debug().Str("path", path).Msg("series cache opened")

	return &BadgerCache{store: store, logger: logger}, nil
}

// Close closes the underlying store.
func (c *BadgerCache) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

func cacheKey(key interfaces.SeriesKey) string {
	return fmt.Sprintf("%s|%s|%s", key.Ticker, key.From.Format("2006-01-02"), key.To.Format("2006-01-02"))
}

type cachedPrices struct {
	Key      string `badgerhold:"key"`
	Ticker   string
	Bars     []models.EODBar
	StoredAt time.Time
}

type cachedDividends struct {
	Key      string `badgerhold:"key"`
	Ticker   string
	Payments []models.DividendPayment
	StoredAt time.Time
}

// seriesPoint is the storable form of one series observation.
type seriesPoint struct {
	Date  time.Time
	Value float64
}

type cachedFundamentals struct {
	Ticker          string `badgerhold:"key"`
	Income          map[string][]seriesPoint
	QuarterlyIncome map[string][]seriesPoint
	Balance         map[string][]seriesPoint
	Shares          []seriesPoint
	StoredAt        time.Time
}

// GetPrices returns the cached bar history for the key, if present.
func (c *BadgerCache) GetPrices(key interfaces.SeriesKey) (models.PriceHistory, bool) {
	var rec cachedPrices
	if err := c.store.Get(cacheKey(key), &rec); err != nil {
		return models.PriceHistory{}, false
	}
	return models.PriceHistory{Ticker: rec.Ticker, Bars: rec.Bars}, true
}

// PutPrices stores a bar history under the key.
func (c *BadgerCache) PutPrices(key interfaces.SeriesKey, history models.PriceHistory) error {
	rec := cachedPrices{
		Key:      cacheKey(key),
		Ticker:   history.Ticker,
		Bars:     history.Bars,
		StoredAt: time.Now(),
	}
	if err := c.store.Upsert(rec.Key, rec); err != nil {
		return fmt.Errorf("failed to cache prices for %s: %w", key.Ticker, err)
	}
	return nil
}

// GetDividends returns the cached payout history for the key, if present.
func (c *BadgerCache) GetDividends(key interfaces.SeriesKey) (models.DividendHistory, bool) {
	var rec cachedDividends
	if err := c.store.Get(cacheKey(key), &rec); err != nil {
		return models.DividendHistory{}, false
	}
	return models.DividendHistory{Ticker: rec.Ticker, Payments: rec.Payments}, true
}

// PutDividends stores a payout history under the key.
func (c *BadgerCache) PutDividends(key interfaces.SeriesKey, history models.DividendHistory) error {
	rec := cachedDividends{
		Key:      cacheKey(key),
		Ticker:   history.Ticker,
		Payments: history.Payments,
		StoredAt: time.Now(),
	}
	if err := c.store.Upsert(rec.Key, rec); err != nil {
		return fmt.Errorf("failed to cache dividends for %s: %w", key.Ticker, err)
	}
	return nil
}

// GetFundamentals returns the cached statement bundle for the ticker.
func (c *BadgerCache) GetFundamentals(ticker string) (models.FundamentalsBundle, bool) {
	var rec cachedFundamentals
	if err := c.store.Get(ticker, &rec); err != nil {
		return models.FundamentalsBundle{}, false
	}
	return models.FundamentalsBundle{
		Ticker:            rec.Ticker,
		Income:            toStatementTable(rec.Income),
		QuarterlyIncome:   toStatementTable(rec.QuarterlyIncome),
		Balance:           toStatementTable(rec.Balance),
		SharesOutstanding: toSeries(rec.Shares),
	}, true
}

// PutFundamentals stores a statement bundle for the ticker.
func (c *BadgerCache) PutFundamentals(ticker string, bundle models.FundamentalsBundle) error {
	rec := cachedFundamentals{
		Ticker:          ticker,
		Income:          toPoints(bundle.Income),
		QuarterlyIncome: toPoints(bundle.QuarterlyIncome),
		Balance:         toPoints(bundle.Balance),
		Shares:          seriesPoints(bundle.SharesOutstanding),
		StoredAt:        time.Now(),
	}
	if err := c.store.Upsert(ticker, rec); err != nil {
		return fmt.Errorf("failed to cache fundamentals for %s: %w", ticker, err)
	}
	return nil
}

func seriesPoints(s timeseries.Series) []seriesPoint {
	out := make([]seriesPoint, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		out = append(out, seriesPoint{Date: s.TimeAt(i), Value: s.ValueAt(i)})
	}
	return out
}

func toSeries(points []seriesPoint) timeseries.Series {
	times := make([]time.Time, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		times[i] = p.Date
		values[i] = p.Value
	}
	return timeseries.New(times, values)
}

func toPoints(table models.StatementTable) map[string][]seriesPoint {
	out := make(map[string][]seriesPoint, len(table))
	for label, s := range table {
		out[label] = seriesPoints(s)
	}
	return out
}

func toStatementTable(points map[string][]seriesPoint) models.StatementTable {
	out := make(models.StatementTable, len(points))
	for label, p := range points {
		out[label] = toSeries(p)
	}
	return out
}
