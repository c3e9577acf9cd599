package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000))
}

func TestGetPriceHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/eod/ACME.NSE", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "a", r.URL.Query().Get("order"))
		w.Write([]byte(`[
			{"date":"2024-01-02","high":101.5,"low":99.0,"close":100.5},
			{"date":"2024-01-03","high":"102.5","low":"100.0","close":"101.0"}
		]`))
	})

	history, err := client.GetPriceHistory(context.Background(), "ACME.NSE",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	require.Len(t, history.Bars, 2)
	assert.Equal(t, 100.5, history.Bars[0].Close)
	// string-encoded numbers decode too
	assert.Equal(t, 101.0, history.Bars[1].Close)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), history.Bars[1].Date)
}

func TestGetDividends(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/div/ACME.NSE", r.URL.Path)
		w.Write([]byte(`[{"date":"2024-03-15","value":2.5},{"date":"bogus","value":1}]`))
	})

	history, err := client.GetDividends(context.Background(), "ACME.NSE", time.Time{}, time.Time{})

	require.NoError(t, err)
	require.Len(t, history.Payments, 1, "unparseable dates are skipped")
	assert.Equal(t, 2.5, history.Payments[0].Amount)
}

func TestGetFundamentals(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Financials": {
				"Income_Statement": {
					"yearly": {
						"2023-12-31": {"totalRevenue": "500", "netIncome": 100, "filing_date": "2024-02-01"}
					},
					"quarterly": {
						"2023-12-31": {"netIncome": 25}
					}
				},
				"Balance_Sheet": {
					"yearly": {
						"2023-12-31": {"totalStockholderEquity": 400, "totalAssets": 1000}
					}
				}
			},
			"outstandingShares": {
				"annual": {
					"0": {"dateFormatted": "2023-12-31", "shares": 50}
				}
			}
		}`))
	})

	bundle, err := client.GetFundamentals(context.Background(), "ACME.NSE")

	require.NoError(t, err)
	assert.Equal(t, "ACME.NSE", bundle.Ticker)

	rev := bundle.Income.FirstAvailable("Total Revenue")
	require.NotNil(t, rev)
	assert.Equal(t, 500.0, *rev)

	ni := bundle.Income.FirstAvailable("Net Income")
	require.NotNil(t, ni)
	assert.Equal(t, 100.0, *ni)

	eq := bundle.Balance.FirstAvailable("Stockholders Equity")
	require.NotNil(t, eq)
	assert.Equal(t, 400.0, *eq)

	require.Equal(t, 1, bundle.SharesOutstanding.Len())
}

func TestAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte("subscription required"))
	})

	_, err := client.GetPriceHistory(context.Background(), "ACME.NSE", time.Time{}, time.Time{})

	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "subscription required")
}

func TestFlexFloat64(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"number", `1.5`, 1.5},
		{"string number", `"2.25"`, 2.25},
		{"empty string", `""`, 0},
		{"not available", `"N/A"`, 0},
		{"null", `null`, 0},
		{"unparseable string", `"2023-12-31"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f flexFloat64
			require.NoError(t, f.UnmarshalJSON([]byte(tt.input)))
			assert.Equal(t, tt.expected, float64(f))
		})
	}
}
