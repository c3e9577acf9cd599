package timeseries

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// MarshalJSON encodes the series as an array of {"date","value"} points.
// Missing observations are omitted; JSON has no NaN.
func (s Series) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for i, v := range s.values {
		if math.IsNaN(v) {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&b, `{"date":%q,"value":%g}`, s.times[i].Format(time.RFC3339), v)
	}
	b.WriteByte(']')
	return []byte(b.String()), nil
}

// UnmarshalJSON decodes the array-of-points form written by MarshalJSON.
// Points are assumed ascending, as MarshalJSON emits them.
func (s *Series) UnmarshalJSON(data []byte) error {
	var points []struct {
		Date  time.Time `json:"date"`
		Value float64   `json:"value"`
	}
	if err := json.Unmarshal(data, &points); err != nil {
		return err
	}
	times := make([]time.Time, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		times[i] = p.Date
		values[i] = p.Value
	}
	*s = New(times, values)
	return nil
}
