package timeseries

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/core"
)

// Card titles, in display order.
const (
	TitleTotal    = "Total"
	TitleNetSpent = "Net Spent"
	TitleProfit   = "Profit"
)

// CardDateLayout is how card dates are rendered for charts.
const CardDateLayout = "01/02/2006"

// SummaryCard is the view model of one portfolio series.
type SummaryCard struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Value          string            `json:"value"`
	IntervalString string            `json:"intervalString"`
	Values         []decimal.Decimal `json:"data"`
	Dates          []string          `json:"dates"`
	NewestValue    decimal.Decimal   `json:"newestValue"`
	OldestValue    decimal.Decimal   `json:"oldestValue"`
	Min            decimal.Decimal   `json:"min"`
	Max            decimal.Decimal   `json:"max"`
	Change
}

// BuildSummaryCard summarises an ascending window of values, one date per
// value. An empty window always yields a neutral card.
func BuildSummaryCard(title string, values []decimal.Decimal, dates []time.Time, intervalDays int) (SummaryCard, error) {
	card := SummaryCard{
		ID:             cardID(title),
		Title:          title,
		IntervalString: intervalString(intervalDays),
		Values:         []decimal.Decimal{},
		Dates:          []string{},
	}
	if len(values) == 0 {
		card.Value = core.FormatUSD(decimal.Zero)
		card.Change = Change{
			FormattedPercent: "0%",
			FormattedUSD:     core.FormatUSD(decimal.Zero),
			Trend:            TrendNeutral,
		}
		return card, nil
	}
	if len(values) != len(dates) {
		return SummaryCard{}, fmt.Errorf("%s card: %w (%d values, %d dates)", title, ErrSeriesLength, len(values), len(dates))
	}

	card.Values = append(card.Values, values...)
	for _, d := range dates {
		card.Dates = append(card.Dates, d.Format(CardDateLayout))
	}
	card.OldestValue = values[0]
	card.NewestValue = values[len(values)-1]
	card.Value = core.FormatUSD(card.NewestValue)
	card.Min = decimal.Min(values[0], values[1:]...)
	card.Max = decimal.Max(values[0], values[1:]...)
	card.Change = ComputeChange(card.NewestValue, card.OldestValue)
	return card, nil
}

// BuildPortfolioCards aggregates raw portfolio history and returns the
// Total, Net Spent and Profit cards for the trailing interval.
func BuildPortfolioCards(records []Record, intervalDays int) ([]SummaryCard, error) {
	window, err := SelectWindow(AggregateByDate(records), intervalDays)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, len(window))
	total := make([]decimal.Decimal, len(window))
	netSpent := make([]decimal.Decimal, len(window))
	profit := make([]decimal.Decimal, len(window))
	for i, p := range window {
		dates[i] = p.Date
		total[i] = p.Total
		netSpent[i] = p.NetSpent
		profit[i] = p.Profit
	}

	return BuildCards(dates, total, netSpent, profit, intervalDays)
}

// BuildCards returns the Total, Net Spent and Profit cards for series that
// share the same dates.
func BuildCards(dates []time.Time, total, netSpent, profit []decimal.Decimal, intervalDays int) ([]SummaryCard, error) {
	cards := make([]SummaryCard, 0, 3)
	for _, s := range []struct {
		title  string
		values []decimal.Decimal
	}{
		{TitleTotal, total},
		{TitleNetSpent, netSpent},
		{TitleProfit, profit},
	} {
		card, err := BuildSummaryCard(s.title, s.values, dates, intervalDays)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func cardID(title string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "-")
}

func intervalString(days int) string {
	if days == 0 {
		return "All time"
	}
	if days == 1 {
		return "Last 1 day"
	}
	return fmt.Sprintf("Last %d days", days)
}
