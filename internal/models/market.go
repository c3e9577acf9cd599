// Package models defines the typed records exchanged between the fetch
// layer, the analytics engine, and the presentation surfaces. "Unavailable"
// is always a typed absence (nil *float64 or an empty series), never a
// missing map key.
package models

import (
	"time"

	"github.com/quantlens/quantlens/internal/timeseries"
)

// EODBar is one end-of-day price bar.
type EODBar struct {
	Date  time.Time `json:"date"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// PriceHistory is a ticker's bar history, ascending by date.
type PriceHistory struct {
	Ticker string   `json:"ticker"`
	Bars   []EODBar `json:"bars"`
}

// CloseSeries extracts the Close column, deduplicated (first wins) and
// sorted ascending.
func (h PriceHistory) CloseSeries() timeseries.Series {
	return h.barSeries(func(b EODBar) float64 { return b.Close })
}

// HighSeries extracts the High column.
func (h PriceHistory) HighSeries() timeseries.Series {
	return h.barSeries(func(b EODBar) float64 { return b.High })
}

// LowSeries extracts the Low column.
func (h PriceHistory) LowSeries() timeseries.Series {
	return h.barSeries(func(b EODBar) float64 { return b.Low })
}

func (h PriceHistory) barSeries(f func(EODBar) float64) timeseries.Series {
	times := make([]time.Time, len(h.Bars))
	values := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		times[i] = b.Date
		values[i] = f(b)
	}
	return timeseries.FromPoints(times, values)
}

// DividendPayment is one cash dividend on its ex-date. The date keeps the
// source calendar's timezone so buy dates can be reconciled before filtering.
type DividendPayment struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// DividendHistory is a ticker's payout history, possibly empty.
type DividendHistory struct {
	Ticker   string            `json:"ticker"`
	Payments []DividendPayment `json:"payments"`
}

// Series converts the payout history to a sparse amount series.
func (d DividendHistory) Series() timeseries.Series {
	times := make([]time.Time, len(d.Payments))
	values := make([]float64, len(d.Payments))
	for i, p := range d.Payments {
		times[i] = p.Date
		values[i] = p.Amount
	}
	return timeseries.FromPoints(times, values)
}
