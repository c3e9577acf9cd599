// Package safemath provides nil-guarded arithmetic for sparse financial data.
//
// Every helper accepts operands that may be nil and returns nil instead of
// panicking or producing Inf/NaN, so a missing statement line item degrades to
// "metric unavailable" rather than failing the whole computation.
package safemath

import "math"

// Ptr returns a pointer to v.
func Ptr(v float64) *float64 {
	return &v
}

// FromFloat converts a raw float to an optional value.
// NaN and Inf map to nil.
func FromFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Val unwraps an optional value. The second return reports presence.
func Val(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// ValOr unwraps an optional value, substituting fallback when absent.
func ValOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

// Divide returns a/b, or nil if either operand is nil or b is zero.
func Divide(a, b *float64) *float64 {
	if a == nil || b == nil || *b == 0 {
		return nil
	}
	v := *a / *b
	return &v
}

// Sub returns a-b, or nil if either operand is nil.
func Sub(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a - *b
	return &v
}

// Mul returns a*b, or nil if either operand is nil.
func Mul(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a * *b
	return &v
}

// Margin returns n/d as a percentage rounded to 2 decimals,
// or nil if either operand is nil or d is zero.
func Margin(n, d *float64) *float64 {
	if n == nil || d == nil || *d == 0 {
		return nil
	}
	v := roundTo(*n / *d * 100, 2)
	return &v
}

// Round scales an optional value by multiplier and rounds to the given
// number of decimals. Nil passes through.
func Round(value *float64, multiplier float64, decimals int) *float64 {
	if value == nil {
		return nil
	}
	v := roundTo(*value*multiplier, decimals)
	return &v
}

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
