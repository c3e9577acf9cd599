package timeseries

import (
	"math"
	"sort"
	"time"
)

// Table holds multiple series aligned on a shared ascending date index.
// Gaps created by the union are NaN unless filled by BuildTable's
// bounded forward fill.
type Table struct {
	dates   []time.Time
	order   []string
	columns map[string][]float64
}

// BuildTable aligns the given series on the union of their dates.
// Each column is forward-filled up to ffillLimit consecutive gaps
// (0 disables filling); columns with no observations at all are dropped.
// order fixes column iteration order; series absent from order are ignored.
func BuildTable(series map[string]Series, order []string, ffillLimit int) Table {
	seen := make(map[time.Time]bool)
	dates := make([]time.Time, 0)
	for _, name := range order {
		s, ok := series[name]
		if !ok {
			continue
		}
		for _, t := range s.Times() {
			if !seen[t] {
				seen[t] = true
				dates = append(dates, t)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	idx := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		idx[d] = i
	}

	tbl := Table{
		dates:   dates,
		order:   make([]string, 0, len(order)),
		columns: make(map[string][]float64),
	}
	for _, name := range order {
		s, ok := series[name]
		if !ok {
			continue
		}
		col := make([]float64, len(dates))
		for i := range col {
			col[i] = math.NaN()
		}
		valid := false
		for i := 0; i < s.Len(); i++ {
			v := s.ValueAt(i)
			if math.IsNaN(v) {
				continue
			}
			col[idx[s.TimeAt(i)]] = v
			valid = true
		}
		if !valid {
			continue
		}
		forwardFill(col, ffillLimit)
		tbl.order = append(tbl.order, name)
		tbl.columns[name] = col
	}
	return tbl
}

// forwardFill replaces NaN runs with the last observed value, filling at
// most limit consecutive gaps. Leading NaNs are left untouched.
func forwardFill(values []float64, limit int) {
	if limit <= 0 {
		return
	}
	last := math.NaN()
	run := 0
	for i, v := range values {
		if !math.IsNaN(v) {
			last = v
			run = 0
			continue
		}
		if math.IsNaN(last) {
			continue
		}
		run++
		if run <= limit {
			values[i] = last
		}
	}
}

// Dates returns the shared index. Callers must not mutate it.
func (t Table) Dates() []time.Time {
	return t.dates
}

// Columns returns column names in build order.
func (t Table) Columns() []string {
	return t.order
}

// HasColumn reports whether the table kept a column for name.
func (t Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Column returns the named column as a Series sharing the table index.
// The zero Series is returned for unknown names.
func (t Table) Column(name string) Series {
	col, ok := t.columns[name]
	if !ok {
		return Empty()
	}
	return Series{times: t.dates, values: col}
}

// NumRows returns the length of the shared index.
func (t Table) NumRows() int {
	return len(t.dates)
}

// WeightedRowSum computes sum(weight[name] * column[name]) per row.
// Rows where every weighted column is missing are NaN; within a row,
// missing columns are skipped rather than poisoning the sum.
func (t Table) WeightedRowSum(weights map[string]float64) Series {
	out := make([]float64, len(t.dates))
	for i := range out {
		sum := 0.0
		any := false
		for _, name := range t.order {
			w, ok := weights[name]
			if !ok {
				continue
			}
			v := t.columns[name][i]
			if math.IsNaN(v) {
				continue
			}
			sum += w * v
			any = true
		}
		if !any {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum
	}
	return Series{times: t.dates, values: out}
}
