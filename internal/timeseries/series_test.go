package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func days(n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = day(i)
	}
	return out
}

func TestFromPointsSortsAndDedupes(t *testing.T) {
	times := []time.Time{day(2), day(0), day(2), day(1)}
	values := []float64{30, 10, 99, 20}

	s := FromPoints(times, values)

	require.Equal(t, 3, s.Len())
	assert.Equal(t, day(0), s.TimeAt(0))
	assert.Equal(t, []float64{10, 20, 30}, s.Values())
}

func TestSimpleReturns(t *testing.T) {
	s := New(days(4), []float64{100, 110, 99, 99})

	r := s.SimpleReturns()

	require.Equal(t, 3, r.Len())
	assert.InDelta(t, 0.10, r.ValueAt(0), 1e-12)
	assert.InDelta(t, -0.10, r.ValueAt(1), 1e-12)
	assert.InDelta(t, 0.0, r.ValueAt(2), 1e-12)
	assert.Equal(t, day(1), r.TimeAt(0))
}

func TestSimpleReturnsSkipsMissing(t *testing.T) {
	s := New(days(4), []float64{100, math.NaN(), 120, 126})

	r := s.SimpleReturns()

	// 100 -> 120 -> 126 with the gap bridged
	require.Equal(t, 2, r.Len())
	assert.InDelta(t, 0.20, r.ValueAt(0), 1e-12)
	assert.InDelta(t, 0.05, r.ValueAt(1), 1e-12)
}

func TestLogReturnsMatchSimpleForSmallMoves(t *testing.T) {
	s := New(days(3), []float64{100, 101, 102})

	lr := s.LogReturns()
	sr := s.SimpleReturns()

	require.Equal(t, sr.Len(), lr.Len())
	for i := 0; i < lr.Len(); i++ {
		assert.InDelta(t, math.Log(1+sr.ValueAt(i)), lr.ValueAt(i), 1e-12)
	}
}

func TestReturnsTooShort(t *testing.T) {
	assert.Equal(t, 0, Empty().SimpleReturns().Len())
	one := New(days(1), []float64{100})
	assert.Equal(t, 0, one.LogReturns().Len())
}

func TestRollingMean(t *testing.T) {
	s := New(days(5), []float64{1, 2, 3, 4, 5})

	m := s.RollingMean(3)

	require.Equal(t, 5, m.Len())
	assert.True(t, math.IsNaN(m.ValueAt(0)))
	assert.True(t, math.IsNaN(m.ValueAt(1)))
	assert.InDelta(t, 2.0, m.ValueAt(2), 1e-12)
	assert.InDelta(t, 4.0, m.ValueAt(4), 1e-12)
}

func TestRollingStdSample(t *testing.T) {
	s := New(days(4), []float64{2, 4, 4, 6})

	sd := s.RollingStd(3)

	require.Equal(t, 4, sd.Len())
	assert.True(t, math.IsNaN(sd.ValueAt(1)))
	// sample std of {2,4,4} = sqrt(4/3*... ) -> mean 10/3
	assert.InDelta(t, Std([]float64{2, 4, 4}), sd.ValueAt(2), 1e-12)
	assert.InDelta(t, Std([]float64{4, 4, 6}), sd.ValueAt(3), 1e-12)
}

func TestEMASeedsAtFirstValue(t *testing.T) {
	s := New(days(3), []float64{10, 20, 30})

	e := s.EMA(3) // alpha = 0.5

	assert.InDelta(t, 10.0, e.ValueAt(0), 1e-12)
	assert.InDelta(t, 15.0, e.ValueAt(1), 1e-12)
	assert.InDelta(t, 22.5, e.ValueAt(2), 1e-12)
}

func TestWilderSmooth(t *testing.T) {
	s := New(days(3), []float64{10, 20, 30})

	w := s.WilderSmooth(2) // alpha = 0.5

	assert.InDelta(t, 10.0, w.ValueAt(0), 1e-12)
	assert.InDelta(t, 15.0, w.ValueAt(1), 1e-12)
	assert.InDelta(t, 22.5, w.ValueAt(2), 1e-12)
}

func TestCumMax(t *testing.T) {
	s := New(days(5), []float64{3, 1, 4, 2, 5})

	cm := s.CumMax()

	assert.Equal(t, []float64{3, 3, 4, 4, 5}, cm.Values())
}

func TestDiff(t *testing.T) {
	s := New(days(3), []float64{5, 8, 6})

	d := s.Diff()

	assert.True(t, math.IsNaN(d.ValueAt(0)))
	assert.InDelta(t, 3.0, d.ValueAt(1), 1e-12)
	assert.InDelta(t, -2.0, d.ValueAt(2), 1e-12)
}

func TestValueOnOrAfter(t *testing.T) {
	s := New([]time.Time{day(2), day(5), day(9)}, []float64{10, 20, 30})

	_, v, ok := s.ValueOnOrAfter(day(3))
	require.True(t, ok)
	assert.Equal(t, 20.0, v)

	at, v, ok := s.ValueOnOrAfter(day(5))
	require.True(t, ok)
	assert.Equal(t, day(5), at)
	assert.Equal(t, 20.0, v)

	_, _, ok = s.ValueOnOrAfter(day(10))
	assert.False(t, ok)
}

func TestSumSince(t *testing.T) {
	s := New([]time.Time{day(0), day(3), day(6)}, []float64{1, 2, 4})

	assert.InDelta(t, 7.0, s.SumSince(day(0)), 1e-12)
	assert.InDelta(t, 6.0, s.SumSince(day(1)), 1e-12)
	assert.InDelta(t, 0.0, s.SumSince(day(7)), 1e-12)
}

func TestResampleAnnualSum(t *testing.T) {
	times := []time.Time{
		time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	s := New(times, []float64{1.5, 2.5, 3.0})

	annual := s.ResampleAnnualSum()

	require.Equal(t, 2, annual.Len())
	assert.Equal(t, time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC), annual.TimeAt(0))
	assert.InDelta(t, 4.0, annual.ValueAt(0), 1e-12)
	assert.InDelta(t, 3.0, annual.ValueAt(1), 1e-12)
}

func TestInnerJoin(t *testing.T) {
	a := New([]time.Time{day(0), day(1), day(2), day(4)}, []float64{1, 2, 3, 5})
	b := New([]time.Time{day(1), day(2), day(3), day(4)}, []float64{10, math.NaN(), 30, 40})

	times, av, bv := InnerJoin(a, b)

	// day(2) dropped because b is missing there
	require.Len(t, times, 2)
	assert.Equal(t, []float64{2, 5}, av)
	assert.Equal(t, []float64{10, 40}, bv)
}

func TestLastSkipsMissing(t *testing.T) {
	s := New(days(3), []float64{1, 2, math.NaN()})

	at, v, ok := s.Last()

	require.True(t, ok)
	assert.Equal(t, day(1), at)
	assert.Equal(t, 2.0, v)
}

func TestQuantileLinearInterpolation(t *testing.T) {
	values := []float64{10, 20, 30, 40}

	assert.InDelta(t, 10.0, Quantile(values, 0), 1e-12)
	assert.InDelta(t, 40.0, Quantile(values, 1), 1e-12)
	assert.InDelta(t, 25.0, Quantile(values, 0.5), 1e-12)
	// 5th percentile: pos = 0.05*3 = 0.15 -> 10 + 0.15*10
	assert.InDelta(t, 11.5, Quantile(values, 0.05), 1e-12)
}

func TestQuantileEdges(t *testing.T) {
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.InDelta(t, 7.0, Quantile([]float64{7}, 0.95), 1e-12)
	assert.InDelta(t, 5.0, Quantile([]float64{math.NaN(), 5}, 0.5), 1e-12)
}

func TestPopulationStats(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	assert.InDelta(t, 4.0, PopVar(values), 1e-12)
	assert.InDelta(t, 2.0, PopStd(values), 1e-12)
}

func TestPopCov(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{2, 4, 6, 8}

	assert.InDelta(t, 2.5, PopCov(a, b), 1e-12)
	assert.InDelta(t, 2*PopVar(a), PopCov(a, b), 1e-12)
}
