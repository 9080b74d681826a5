// Package core holds the ledger's domain types and the money/date
// helpers shared by every other package.
//
// This file contains amount parsing and the tax-inclusive conversion.
// All arithmetic is integer yen; the only rounding point in the whole
// module is WithTax.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// TaxRate is the consumption tax multiplier applied by WithTax,
// expressed as numerator/denominator to keep the math in integers.
const (
	taxRateNum   = 110
	taxRateDenom = 100
)

// ParseAmount converts a user-entered amount string to whole yen.
//
// Thousands separators (12,000) and surrounding whitespace are
// tolerated. Decimal points, signs and non-digits are rejected: the
// ledger stores whole yen only.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// WithTax converts a tax-exclusive amount to tax-inclusive yen at the
// 10% rate, rounding half up. The rounding rule matters because the
// result is what gets stored.
//
// Examples:
//
//	WithTax(100) -> 110
//	WithTax(105) -> 116 (115.5 rounds up)
//	WithTax(104) -> 114 (114.4 rounds down)
func WithTax(amount int64) int64 {
	if amount < 0 {
		return amount
	}
	return (amount*taxRateNum + taxRateDenom/2) / taxRateDenom
}

// FormatYen renders an amount with thousands separators for display.
func FormatYen(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
