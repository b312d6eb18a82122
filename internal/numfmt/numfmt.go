// Package numfmt is the sole place price and size values are turned into
// display strings. It is pure and deterministic: same inputs, same output,
// no I/O, no locale dependence.
package numfmt

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// None is returned when neither input yields a finite decimal.
const None = "None"

// Format renders s (preferred, if it parses as a finite decimal) or f
// (if finite) as a plain decimal string with at most maxDecimals
// fractional digits, truncating toward zero rather than rounding.
// Trailing fractional zeros and a bare trailing point are stripped, and
// "-0" is normalized to "0". Returns "None" if neither input is usable.
func Format(s *string, f *float64, maxDecimals int) string {
	d, ok := parseFinite(s, f)
	if !ok {
		return None
	}
	truncated := d.Truncate(int32(maxDecimals))
	return canonicalize(truncated.String())
}

func parseFinite(s *string, f *float64) (decimal.Decimal, bool) {
	if s != nil {
		if trimmed := strings.TrimSpace(*s); trimmed != "" {
			if d, err := decimal.NewFromString(trimmed); err == nil {
				return d, true
			}
		}
	}
	if f != nil && !math.IsNaN(*f) && !math.IsInf(*f, 0) {
		return decimal.NewFromFloat(*f), true
	}
	return decimal.Decimal{}, false
}

// canonicalize strips trailing fractional zeros and a bare trailing
// point from a plain (non-exponential) decimal string, and normalizes
// a signed zero to an unsigned one.
func canonicalize(s string) string {
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "" || s == "-0" {
		return "0"
	}
	return s
}
