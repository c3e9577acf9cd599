// Package timeseries provides time-indexed float series used by the
// analytics engine: alignment, returns, rolling statistics, and smoothing.
//
// Missing observations are represented as NaN. Every operation that walks a
// window (rolling, EMA, diff) assumes the index is chronologically ascending;
// FromPoints enforces that, deduplicating on date with first occurrence wins.
package timeseries

import (
	"math"
	"sort"
	"time"
)

// Series is a time-indexed sequence of float64 values.
// The index is monotonically increasing and NaN marks a missing value.
type Series struct {
	times  []time.Time
	values []float64
}

// New constructs a Series from parallel slices already in ascending order.
// The slices are copied.
func New(times []time.Time, values []float64) Series {
	n := len(times)
	if len(values) < n {
		n = len(values)
	}
	ts := make([]time.Time, n)
	vs := make([]float64, n)
	copy(ts, times[:n])
	copy(vs, values[:n])
	return Series{times: ts, values: vs}
}

// Empty returns a zero-length series.
func Empty() Series {
	return Series{}
}

// FromPoints constructs a Series from unordered observations.
// Points are sorted ascending by time; on duplicate timestamps the first
// occurrence in the input wins.
func FromPoints(times []time.Time, values []float64) Series {
	n := len(times)
	if len(values) < n {
		n = len(values)
	}

	type point struct {
		t   time.Time
		v   float64
		pos int
	}
	pts := make([]point, n)
	for i := 0; i < n; i++ {
		pts[i] = point{t: times[i], v: values[i], pos: i}
	}
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].t.Before(pts[j].t)
	})

	outT := make([]time.Time, 0, n)
	outV := make([]float64, 0, n)
	for _, p := range pts {
		if len(outT) > 0 && outT[len(outT)-1].Equal(p.t) {
			continue // first occurrence wins
		}
		outT = append(outT, p.t)
		outV = append(outV, p.v)
	}
	return Series{times: outT, values: outV}
}

// Len returns the number of observations, including missing ones.
func (s Series) Len() int {
	return len(s.values)
}

// IsEmpty reports whether the series has no observations.
func (s Series) IsEmpty() bool {
	return len(s.values) == 0
}

// TimeAt returns the timestamp at index i.
func (s Series) TimeAt(i int) time.Time {
	return s.times[i]
}

// ValueAt returns the value at index i (may be NaN).
func (s Series) ValueAt(i int) float64 {
	return s.values[i]
}

// Times returns the underlying index. Callers must not mutate it.
func (s Series) Times() []time.Time {
	return s.times
}

// Values returns the underlying values. Callers must not mutate them.
func (s Series) Values() []float64 {
	return s.values
}

// First returns the earliest non-missing observation.
func (s Series) First() (time.Time, float64, bool) {
	for i := 0; i < len(s.values); i++ {
		if !math.IsNaN(s.values[i]) {
			return s.times[i], s.values[i], true
		}
	}
	return time.Time{}, 0, false
}

// Last returns the latest non-missing observation.
func (s Series) Last() (time.Time, float64, bool) {
	for i := len(s.values) - 1; i >= 0; i-- {
		if !math.IsNaN(s.values[i]) {
			return s.times[i], s.values[i], true
		}
	}
	return time.Time{}, 0, false
}

// ValueOnOrAfter returns the first non-missing observation at or after t.
func (s Series) ValueOnOrAfter(t time.Time) (time.Time, float64, bool) {
	for i := 0; i < len(s.values); i++ {
		if s.times[i].Before(t) || math.IsNaN(s.values[i]) {
			continue
		}
		return s.times[i], s.values[i], true
	}
	return time.Time{}, 0, false
}

// DropNaN returns a copy with missing observations removed.
func (s Series) DropNaN() Series {
	outT := make([]time.Time, 0, len(s.values))
	outV := make([]float64, 0, len(s.values))
	for i, v := range s.values {
		if math.IsNaN(v) {
			continue
		}
		outT = append(outT, s.times[i])
		outV = append(outV, v)
	}
	return Series{times: outT, values: outV}
}

// SumSince returns the sum of non-missing values at or after t.
func (s Series) SumSince(t time.Time) float64 {
	sum := 0.0
	for i, v := range s.values {
		if math.IsNaN(v) || s.times[i].Before(t) {
			continue
		}
		sum += v
	}
	return sum
}

// SimpleReturns computes period-over-period simple returns between
// consecutive non-missing observations. The first observation is consumed;
// output length is one less than the count of valid points.
func (s Series) SimpleReturns() Series {
	return s.returns(func(cur, prev float64) float64 {
		return cur/prev - 1
	})
}

// LogReturns computes period-over-period log returns between consecutive
// non-missing observations.
func (s Series) LogReturns() Series {
	return s.returns(func(cur, prev float64) float64 {
		return math.Log(cur / prev)
	})
}

func (s Series) returns(f func(cur, prev float64) float64) Series {
	clean := s.DropNaN()
	if clean.Len() < 2 {
		return Empty()
	}
	outT := make([]time.Time, 0, clean.Len()-1)
	outV := make([]float64, 0, clean.Len()-1)
	for i := 1; i < clean.Len(); i++ {
		prev := clean.values[i-1]
		if prev == 0 {
			continue
		}
		outT = append(outT, clean.times[i])
		outV = append(outV, f(clean.values[i], prev))
	}
	return Series{times: outT, values: outV}
}

// Diff returns the first difference; the first observation is NaN.
func (s Series) Diff() Series {
	out := make([]float64, len(s.values))
	for i := range out {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = s.values[i] - s.values[i-1]
	}
	return Series{times: s.times, values: out}
}

// Shift returns the series shifted forward by one observation
// (value at i becomes the value previously at i-1); index 0 is NaN.
func (s Series) Shift() Series {
	out := make([]float64, len(s.values))
	for i := range out {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = s.values[i-1]
	}
	return Series{times: s.times, values: out}
}

// Add returns an elementwise sum with a scalar.
func (s Series) Add(delta float64) Series {
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		out[i] = v + delta
	}
	return Series{times: s.times, values: out}
}

// CumMax returns the running maximum over non-missing values.
func (s Series) CumMax() Series {
	out := make([]float64, len(s.values))
	max := math.NaN()
	for i, v := range s.values {
		if !math.IsNaN(v) && (math.IsNaN(max) || v > max) {
			max = v
		}
		out[i] = max
	}
	return Series{times: s.times, values: out}
}

// RollingMean computes the trailing mean over a full window.
// The first window-1 observations, and any window containing a missing
// value, are NaN.
func (s Series) RollingMean(window int) Series {
	return s.rolling(window, func(w []float64) float64 {
		return Mean(w)
	})
}

// RollingStd computes the trailing sample standard deviation over a full
// window, NaN until the window fills.
func (s Series) RollingStd(window int) Series {
	return s.rolling(window, func(w []float64) float64 {
		return Std(w)
	})
}

func (s Series) rolling(window int, f func([]float64) float64) Series {
	out := make([]float64, len(s.values))
	for i := range out {
		if window <= 0 || i < window-1 {
			out[i] = math.NaN()
			continue
		}
		w := s.values[i-window+1 : i+1]
		valid := true
		for _, v := range w {
			if math.IsNaN(v) {
				valid = false
				break
			}
		}
		if !valid {
			out[i] = math.NaN()
			continue
		}
		out[i] = f(w)
	}
	return Series{times: s.times, values: out}
}

// EMA computes an exponential moving average with alpha = 2/(period+1),
// seeded at the first non-missing value.
func (s Series) EMA(period int) Series {
	return s.ewm(2.0 / (float64(period) + 1))
}

// WilderSmooth computes an exponential moving average with alpha = 1/period,
// the smoothing used by RSI and ADX.
func (s Series) WilderSmooth(period int) Series {
	return s.ewm(1.0 / float64(period))
}

func (s Series) ewm(alpha float64) Series {
	out := make([]float64, len(s.values))
	ema := math.NaN()
	for i, v := range s.values {
		if math.IsNaN(v) {
			out[i] = ema
			continue
		}
		if math.IsNaN(ema) {
			ema = v
		} else {
			ema = alpha*v + (1-alpha)*ema
		}
		out[i] = ema
	}
	return Series{times: s.times, values: out}
}

// ResampleAnnualSum sums values into calendar-year bins.
// Bin timestamps are the year-end (Dec 31, UTC) of each year present.
func (s Series) ResampleAnnualSum() Series {
	sums := make(map[int]float64)
	years := make([]int, 0)
	for i, v := range s.values {
		if math.IsNaN(v) {
			continue
		}
		y := s.times[i].Year()
		if _, ok := sums[y]; !ok {
			years = append(years, y)
		}
		sums[y] += v
	}
	sort.Ints(years)

	outT := make([]time.Time, len(years))
	outV := make([]float64, len(years))
	for i, y := range years {
		outT[i] = time.Date(y, 12, 31, 0, 0, 0, 0, time.UTC)
		outV[i] = sums[y]
	}
	return Series{times: outT, values: outV}
}

// Tail returns the last n observations (all if n exceeds the length).
func (s Series) Tail(n int) Series {
	if n >= len(s.values) {
		return s
	}
	return Series{times: s.times[len(s.times)-n:], values: s.values[len(s.values)-n:]}
}

// InnerJoin aligns two ascending series on exact timestamps, skipping rows
// where either side is missing. Returns the matched values in join order.
func InnerJoin(a, b Series) (times []time.Time, av, bv []float64) {
	i, j := 0, 0
	for i < a.Len() && j < b.Len() {
		switch {
		case a.times[i].Before(b.times[j]):
			i++
		case b.times[j].Before(a.times[i]):
			j++
		default:
			if !math.IsNaN(a.values[i]) && !math.IsNaN(b.values[j]) {
				times = append(times, a.times[i])
				av = append(av, a.values[i])
				bv = append(bv, b.values[j])
			}
			i++
			j++
		}
	}
	return times, av, bv
}
