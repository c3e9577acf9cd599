package interfaces

import (
	"time"

	"github.com/quantlens/quantlens/internal/models"
)

// SeriesKey identifies a cached series fetch: one ticker over one window.
type SeriesKey struct {
	Ticker string
	From   time.Time
	To     time.Time
}

// SeriesCache is the read-through cache in front of the market-data client.
// It is owned by the fetch layer; the engine never sees it. A miss is
// reported via the boolean, never as an error.
type SeriesCache interface {
	GetPrices(key SeriesKey) (models.PriceHistory, bool)
	PutPrices(key SeriesKey, history models.PriceHistory) error

	GetDividends(key SeriesKey) (models.DividendHistory, bool)
	PutDividends(key SeriesKey, history models.DividendHistory) error

	GetFundamentals(ticker string) (models.FundamentalsBundle, bool)
	PutFundamentals(ticker string, bundle models.FundamentalsBundle) error

	Close() error
}
