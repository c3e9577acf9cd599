// Package analysis implements the fetch-then-compute service: it pulls raw
// series through the cache-fronted market-data client, prepares the engine
// inputs, and runs one analytics pass per request.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quantlens/quantlens/internal/common"
	"github.com/quantlens/quantlens/internal/engine"
	"github.com/quantlens/quantlens/internal/interfaces"
	"github.com/quantlens/quantlens/internal/models"
)

// historyYears is the price/dividend lookback fetched for each analysis.
const historyYears = 3

// Service implements interfaces.AnalysisService.
type Service struct {
	client interfaces.MarketDataClient
	cache  interfaces.SeriesCache
	engine *engine.Engine
	cfg    *common.Config
	logger *common.Logger
}

// NewService wires the data client, optional cache, and engine config.
func NewService(client interfaces.MarketDataClient, cache interfaces.SeriesCache, cfg *common.Config, logger *common.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		engine: engine.New(engine.Config{
			RiskFreeRate:     cfg.Analysis.RiskFreeRate,
			RollingWindow:    cfg.Analysis.RollingWindow,
			ForwardFillLimit: cfg.Analysis.ForwardFillLimit,
			MinRiskOverlap:   cfg.Analysis.MinRiskOverlap,
		}),
		cfg:    cfg,
		logger: logger,
	}
}

// Run fetches the request's raw series and produces one analysis result.
// Per-ticker fetch failures degrade to missing data; only a malformed
// request is an error.
func (s *Service) Run(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	if len(req.Holdings) == 0 {
		return nil, fmt.Errorf("analysis request has no holdings")
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Benchmark == "" {
		req.Benchmark = s.cfg.Analysis.Benchmark
	}
	if req.AsOf.IsZero() {
		req.AsOf = time.Now().UTC()
	}

	started := time.Now()
	from := req.AsOf.AddDate(-historyYears, 0, 0)
	for _, h := range req.Holdings {
		if !h.BuyDate.IsZero() && h.BuyDate.Before(from) {
			from = h.BuyDate
		}
	}

	inputs := models.AnalysisInputs{
		Prices:       make(map[string]models.PriceHistory, len(req.Holdings)),
		Dividends:    make(map[string]models.DividendHistory, len(req.Holdings)),
		Fundamentals: make(map[string]models.FundamentalsBundle, len(req.Holdings)),
	}

	for _, h := range req.Holdings {
		if prices, err := s.fetchPrices(ctx, h.Ticker, from, req.AsOf); err != nil {
			s.logger.Warn().Err(err).Str("ticker", h.Ticker).Msg("price fetch failed, ticker will be sparse")
		} else {
			inputs.Prices[h.Ticker] = prices
		}

		if dividends, err := s.fetchDividends(ctx, h.Ticker, from, req.AsOf); err != nil {
			s.logger.Warn().Err(err).Str("ticker", h.Ticker).Msg("dividend fetch failed")
		} else {
			inputs.Dividends[h.Ticker] = dividends
		}

		if bundle, err := s.fetchFundamentals(ctx, h.Ticker); err != nil {
			s.logger.Warn().Err(err).Str("ticker", h.Ticker).Msg("fundamentals fetch failed")
		} else if !bundle.IsEmpty() {
			inputs.Fundamentals[h.Ticker] = bundle
		}
	}

	benchmark, err := s.fetchPrices(ctx, req.Benchmark, from, req.AsOf)
	if err != nil {
		s.logger.Warn().Err(err).Str("benchmark", req.Benchmark).Msg("benchmark fetch failed, risk table will be empty")
	} else {
		inputs.Benchmark = benchmark
	}

	result := s.engine.Analyze(req, inputs)

	s.logger.Info().
		Str("id", result.ID).
		Int("holdings", len(req.Holdings)).
		Int("risk_records", len(result.Risk)).
		Dur("elapsed", time.Since(started)).
		Msg("analysis complete")

	return result, nil
}

func (s *Service) fetchPrices(ctx context.Context, ticker string, from, to time.Time) (models.PriceHistory, error) {
	key := interfaces.SeriesKey{Ticker: ticker, From: from, To: to}
	if s.cache != nil {
		if history, ok := s.cache.GetPrices(key); ok {
			return history, nil
		}
	}
	history, err := s.client.GetPriceHistory(ctx, ticker, from, to)
	if err != nil {
		return models.PriceHistory{}, err
	}
	if s.cache != nil {
		if err := s.cache.PutPrices(key, history); err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("price cache write failed")
		}
	}
	return history, nil
}

func (s *Service) fetchDividends(ctx context.Context, ticker string, from, to time.Time) (models.DividendHistory, error) {
	key := interfaces.SeriesKey{Ticker: ticker, From: from, To: to}
	if s.cache != nil {
		if history, ok := s.cache.GetDividends(key); ok {
			return history, nil
		}
	}
	history, err := s.client.GetDividends(ctx, ticker, from, to)
	if err != nil {
		return models.DividendHistory{}, err
	}
	if s.cache != nil {
		if err := s.cache.PutDividends(key, history); err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("dividend cache write failed")
		}
	}
	return history, nil
}

func (s *Service) fetchFundamentals(ctx context.Context, ticker string) (models.FundamentalsBundle, error) {
	if s.cache != nil {
		if bundle, ok := s.cache.GetFundamentals(ticker); ok {
			return bundle, nil
		}
	}
	bundle, err := s.client.GetFundamentals(ctx, ticker)
	if err != nil {
		return models.FundamentalsBundle{}, err
	}
	if s.cache != nil {
		if err := s.cache.PutFundamentals(ticker, bundle); err != nil {
			s.logger.Warn().Err(err).Str("ticker", ticker).Msg("fundamentals cache write failed")
		}
	}
	return bundle, nil
}
