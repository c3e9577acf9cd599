// Package interfaces defines the contracts between the fetch layer, the
// cache, the analysis service, and the HTTP surface.
package interfaces

import (
	"context"
	"time"

	"github.com/quantlens/quantlens/internal/models"
)

// MarketDataClient supplies raw per-ticker series from a market-data
// provider. Implementations own transport concerns (rate limits, retries);
// callers own timeouts via ctx.
type MarketDataClient interface {
	// GetPriceHistory returns daily bars for the ticker within [from, to],
	// ascending by date.
	GetPriceHistory(ctx context.Context, ticker string, from, to time.Time) (models.PriceHistory, error)

	// GetDividends returns the ticker's cash payouts within [from, to].
	// An empty history is a valid result, not an error.
	GetDividends(ctx context.Context, ticker string, from, to time.Time) (models.DividendHistory, error)

	// GetFundamentals returns the ticker's statement bundle, or an empty
	// bundle when the provider has none.
	GetFundamentals(ctx context.Context, ticker string) (models.FundamentalsBundle, error)
}
