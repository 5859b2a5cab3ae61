// Package core provides money formatting helpers.
//
// Amounts are carried as decimals and only turned into cents at the edge,
// when they are rendered for display.
package core

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// Cents converts a decimal amount to whole cents with half-up rounding.
// Amounts outside the int64 range are clamped to its bounds.
//
// Examples:
//
//	Cents(12.34)  -> 1234
//	Cents(12.345) -> 1235
//	Cents(-0.5)   -> -50
func Cents(d decimal.Decimal) int64 {
	c, _ := cents(d)
	return c
}

func cents(d decimal.Decimal) (int64, bool) {
	c := d.Round(2).Shift(2)
	switch {
	case c.GreaterThan(maxCents):
		return math.MaxInt64, false
	case c.LessThan(minCents):
		return math.MinInt64, false
	}
	return c.IntPart(), true
}

// FormatUSD renders d as US dollars with two fraction digits, e.g. "$1,234.50"
// or "-$10.00".
func FormatUSD(d decimal.Decimal) string {
	if c, ok := cents(d); ok {
		return money.New(c, money.USD).Display()
	}
	return formatLargeUSD(d)
}

// formatLargeUSD renders amounts too large for go-money straight from the
// decimal digits, using the USD symbol and separators.
func formatLargeUSD(d decimal.Decimal) string {
	cur := money.GetCurrency(money.USD)
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(cur.Grapheme)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(cur.Thousand)
		}
		b.WriteRune(r)
	}
	b.WriteString(cur.Decimal)
	b.WriteString(frac)
	return b.String()
}

// FromCents is the inverse of Cents.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
