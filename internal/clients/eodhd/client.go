// Package eodhd provides a client for the EODHD market-data API
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/quantlens/quantlens/internal/common"
	"github.com/quantlens/quantlens/internal/models"
	"github.com/quantlens/quantlens/internal/timeseries"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	if string(data) == "null" {
		*f = 0
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the MarketDataClient interface against EODHD endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date  string      `json:"date"`
	High  flexFloat64 `json:"high"`
	Low   flexFloat64 `json:"low"`
	Close flexFloat64 `json:"close"`
}

// GetPriceHistory retrieves daily bars for the ticker within [from, to],
// ascending by date.
func (c *Client) GetPriceHistory(ctx context.Context, ticker string, from, to time.Time) (models.PriceHistory, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	if !from.IsZero() {
		params.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		params.Set("to", to.Format("2006-01-02"))
	}

	var bars []eodBarResponse
	if err := c.get(ctx, fmt.Sprintf("/eod/%s", ticker), params, &bars); err != nil {
		return models.PriceHistory{}, err
	}

	history := models.PriceHistory{
		Ticker: ticker,
		Bars:   make([]models.EODBar, 0, len(bars)),
	}
	for _, bar := range bars {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			continue
		}
		history.Bars = append(history.Bars, models.EODBar{
			Date:  date,
			High:  float64(bar.High),
			Low:   float64(bar.Low),
			Close: float64(bar.Close),
		})
	}
	return history, nil
}

type dividendResponse struct {
	Date  string      `json:"date"`
	Value flexFloat64 `json:"value"`
}

// GetDividends retrieves cash payouts for the ticker within [from, to].
func (c *Client) GetDividends(ctx context.Context, ticker string, from, to time.Time) (models.DividendHistory, error) {
	params := url.Values{}
	if !from.IsZero() {
		params.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		params.Set("to", to.Format("2006-01-02"))
	}

	var payouts []dividendResponse
	if err := c.get(ctx, fmt.Sprintf("/div/%s", ticker), params, &payouts); err != nil {
		return models.DividendHistory{}, err
	}

	history := models.DividendHistory{
		Ticker:   ticker,
		Payments: make([]models.DividendPayment, 0, len(payouts)),
	}
	for _, p := range payouts {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			continue
		}
		history.Payments = append(history.Payments, models.DividendPayment{
			Date:   date,
			Amount: float64(p.Value),
		})
	}
	return history, nil
}

// Canonical statement labels for the provider's camelCase line items.
// Unknown items keep their provider key.
var (
	incomeLabelMap = map[string]string{
		"totalRevenue":    "Total Revenue",
		"operatingIncome": "Operating Income",
		"netIncome":       "Net Income",
		"ebit":            "EBIT",
		"interestExpense": "Interest Expense",
	}
	balanceLabelMap = map[string]string{
		"totalStockholderEquity":  "Stockholders Equity",
		"totalAssets":             "Total Assets",
		"shortLongTermDebtTotal":  "Total Debt",
		"totalCurrentAssets":      "Total Current Assets",
		"totalCurrentLiabilities": "Total Current Liabilities",
		"cashAndEquivalents":      "Cash And Cash Equivalents",
	}
)

type fundamentalsResponse struct {
	Financials struct {
		IncomeStatement struct {
			Yearly    map[string]map[string]json.RawMessage `json:"yearly"`
			Quarterly map[string]map[string]json.RawMessage `json:"quarterly"`
		} `json:"Income_Statement"`
		BalanceSheet struct {
			Yearly map[string]map[string]json.RawMessage `json:"yearly"`
		} `json:"Balance_Sheet"`
	} `json:"Financials"`
	OutstandingShares struct {
		Annual map[string]struct {
			DateFormatted string      `json:"dateFormatted"`
			Shares        flexFloat64 `json:"shares"`
		} `json:"annual"`
	} `json:"outstandingShares"`
}

// GetFundamentals retrieves the ticker's statement bundle. Providers return
// sparse statements; absent tables come back empty, not as errors.
func (c *Client) GetFundamentals(ctx context.Context, ticker string) (models.FundamentalsBundle, error) {
	var resp fundamentalsResponse
	if err := c.get(ctx, fmt.Sprintf("/fundamentals/%s", ticker), nil, &resp); err != nil {
		return models.FundamentalsBundle{}, err
	}

	bundle := models.FundamentalsBundle{
		Ticker:          ticker,
		Income:          statementTable(resp.Financials.IncomeStatement.Yearly, incomeLabelMap),
		QuarterlyIncome: statementTable(resp.Financials.IncomeStatement.Quarterly, incomeLabelMap),
		Balance:         statementTable(resp.Financials.BalanceSheet.Yearly, balanceLabelMap),
	}

	times := make([]time.Time, 0, len(resp.OutstandingShares.Annual))
	values := make([]float64, 0, len(resp.OutstandingShares.Annual))
	for _, entry := range resp.OutstandingShares.Annual {
		date, err := time.Parse("2006-01-02", entry.DateFormatted)
		if err != nil {
			continue
		}
		times = append(times, date)
		values = append(values, float64(entry.Shares))
	}
	bundle.SharesOutstanding = timeseries.FromPoints(times, values)

	return bundle, nil
}

// statementTable converts the provider's per-date statement maps into
// per-label series, renaming known line items to canonical labels.
func statementTable(entries map[string]map[string]json.RawMessage, labelMap map[string]string) models.StatementTable {
	points := make(map[string]struct {
		times  []time.Time
		values []float64
	})

	for dateStr, items := range entries {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		for key, raw := range items {
			var v flexFloat64
			if err := v.UnmarshalJSON(raw); err != nil {
				continue
			}
			label := key
			if canonical, ok := labelMap[key]; ok {
				label = canonical
			}
			p := points[label]
			p.times = append(p.times, date)
			p.values = append(p.values, float64(v))
			points[label] = p
		}
	}

	table := make(models.StatementTable, len(points))
	for label, p := range points {
		table[label] = timeseries.FromPoints(p.times, p.values)
	}
	return table
}
