package models

// RSI categories.
const (
	RSIOverbought = "Overbought"
	RSIOversold   = "Oversold"
	RSINeutral    = "Neutral"
)

// Trend classifications, evaluated on the latest bar.
const (
	TrendStrongBullish = "Strong Bullish"
	TrendBullish       = "Bullish"
	TrendStrongBearish = "Strong Bearish"
	TrendBearish       = "Bearish"
	TrendNeutral       = "Neutral"
	TrendRangeBound    = "Range-Bound"
	TrendWeakBullish   = "Weak Bullish"
	TrendWeakBearish   = "Weak Bearish"
)

// PositionHealthRecord holds per-ticker technical indicators computed from
// that ticker's own bar history. Nil fields mean the history was too short
// for the indicator.
type PositionHealthRecord struct {
	Ticker      string   `json:"ticker"`
	LastClose   *float64 `json:"last_close,omitempty"`
	RSI         *float64 `json:"rsi,omitempty"`
	RSICategory string   `json:"rsi_category,omitempty"`
	ADX         *float64 `json:"adx,omitempty"`
	Trend       string   `json:"trend,omitempty"`
	Momentum20  *float64 `json:"momentum_20d,omitempty"`
	High52W     *float64 `json:"high_52w,omitempty"`
	Low52W      *float64 `json:"low_52w,omitempty"`
	PctFromHigh *float64 `json:"pct_from_high,omitempty"`
	PctFromLow  *float64 `json:"pct_from_low,omitempty"`
}
