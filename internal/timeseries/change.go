package timeseries

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"cryptofolio/internal/core"
)

type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// trendThreshold is compared against the raw fractional change.
var trendThreshold = decimal.RequireFromString("0.05")

var percentPrinter = message.NewPrinter(language.AmericanEnglish)

// Change describes the move between the oldest and newest value of a window.
type Change struct {
	RawPercent       decimal.Decimal `json:"rawPercentChange"`
	FormattedPercent string          `json:"percentChange"`
	USD              decimal.Decimal `json:"usdChange"`
	FormattedUSD     string          `json:"formattedUsdChange"`
	Trend            Trend           `json:"trend"`
}

// ComputeChange is shared by summary cards and holding views.
//
// An oldest value of zero yields a zero percent change and a neutral trend
// instead of a division by zero.
func ComputeChange(newest, oldest decimal.Decimal) Change {
	usd := newest.Sub(oldest)
	c := Change{
		RawPercent:   decimal.Zero,
		USD:          usd,
		FormattedUSD: formatSignedUSD(usd),
		Trend:        TrendNeutral,
	}
	if oldest.IsZero() {
		c.FormattedPercent = formatPercent(decimal.Zero)
		return c
	}

	c.RawPercent = newest.Div(oldest).Sub(decimal.NewFromInt(1))
	c.FormattedPercent = formatPercent(c.RawPercent)
	c.Trend = classifyTrend(c.RawPercent)
	return c
}

// classifyTrend reports down for anything below the up threshold, so only a
// change of exactly the threshold is neutral.
func classifyTrend(raw decimal.Decimal) Trend {
	switch {
	case raw.GreaterThan(trendThreshold):
		return TrendUp
	case raw.LessThan(trendThreshold):
		return TrendDown
	}
	return TrendNeutral
}

// formatPercent renders a fractional change as "+12.50%" / "-3.00%".
func formatPercent(raw decimal.Decimal) string {
	pct := raw.Shift(2).Round(2)
	s := percentPrinter.Sprintf("%.2f%%", pct.InexactFloat64())
	if raw.IsPositive() {
		return "+" + s
	}
	return s
}

func formatSignedUSD(d decimal.Decimal) string {
	s := core.FormatUSD(d)
	if d.IsPositive() {
		return "+" + s
	}
	return s
}
