// Package timeseries turns raw dated history rows into the windowed,
// trend-annotated series shown on portfolio and holding views.
//
// Everything here is pure: no I/O, no shared state, inputs are never
// mutated. Callers may run independent computations in parallel.
package timeseries

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/core"
)

// MaxIntervalDays bounds the interval accepted by ParseInterval.
const MaxIntervalDays = 36500

// Record is one raw history row. Several records may share a date; a value
// of exactly zero means "not recorded", and a record with any such field is
// left out of aggregation.
type Record struct {
	Date     time.Time
	Total    decimal.Decimal
	NetSpent decimal.Decimal
	Profit   decimal.Decimal
}

// Point is the per-date mean of the complete records for that date.
type Point struct {
	Date     time.Time       `json:"date"`
	Total    decimal.Decimal `json:"total"`
	NetSpent decimal.Decimal `json:"netSpent"`
	Profit   decimal.Decimal `json:"profit"`
}

// FromHistory converts stored history rows into aggregator records.
func FromHistory(rows []core.HistoryRecord) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, Record{Date: r.Date, Total: r.Total, NetSpent: r.NetSpent, Profit: r.Profit})
	}
	return out
}

type fieldMean struct {
	sum   decimal.Decimal
	count int64
}

func (m *fieldMean) add(v decimal.Decimal) {
	m.sum = m.sum.Add(v)
	m.count++
}

func (m fieldMean) value() decimal.Decimal {
	if m.count == 0 {
		return decimal.Zero
	}
	return m.sum.Div(decimal.NewFromInt(m.count))
}

type dateBucket struct {
	date                    time.Time
	total, netSpent, profit fieldMean
}

// Complete reports whether every field of r holds a recorded value.
func (r Record) Complete() bool {
	return !r.Total.IsZero() && !r.NetSpent.IsZero() && !r.Profit.IsZero()
}

// AggregateByDate groups records by calendar date and takes the plain mean
// of each field. Records with a zero in any field are dropped. The result is
// sorted ascending with unique dates.
func AggregateByDate(records []Record) []Point {
	buckets := make(map[string]*dateBucket)
	for _, r := range records {
		if !r.Complete() {
			continue
		}
		day := core.TruncateDay(r.Date)
		key := core.FormatDate(day)
		b, ok := buckets[key]
		if !ok {
			b = &dateBucket{date: day}
			buckets[key] = b
		}
		b.total.add(r.Total)
		b.netSpent.add(r.NetSpent)
		b.profit.add(r.Profit)
	}

	points := make([]Point, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, Point{
			Date:     b.date,
			Total:    b.total.value(),
			NetSpent: b.netSpent.value(),
			Profit:   b.profit.value(),
		})
	}
	sortPoints(points)
	return points
}

// SelectWindow keeps the points dated within intervalDays of the newest
// point, cutoff inclusive. An interval of zero returns the input as is.
func SelectWindow(points []Point, intervalDays int) ([]Point, error) {
	if err := ValidateInterval(intervalDays); err != nil {
		return nil, err
	}
	if intervalDays == 0 {
		return slices.Clone(points), nil
	}
	if len(points) == 0 {
		return []Point{}, nil
	}

	sorted := slices.Clone(points)
	sortPoints(sorted)

	anchor := sorted[len(sorted)-1].Date
	cutoff := anchor.AddDate(0, 0, -intervalDays)
	start, _ := slices.BinarySearchFunc(sorted, cutoff, func(p Point, t time.Time) int {
		return p.Date.Compare(t)
	})
	return sorted[start:], nil
}

// ValidateInterval rejects negative day counts.
func ValidateInterval(intervalDays int) error {
	if intervalDays < 0 {
		return &ValidationError{
			Field:  "interval",
			Value:  strconv.Itoa(intervalDays),
			Reason: "must not be negative",
		}
	}
	return nil
}

// ParseInterval parses a day count received from a client.
func ParseInterval(s string) (int, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ValidationError{Field: "interval", Value: s, Reason: "must be a finite number"}
	}
	switch {
	case f < 0:
		return 0, &ValidationError{Field: "interval", Value: s, Reason: "must not be negative"}
	case f != math.Trunc(f):
		return 0, &ValidationError{Field: "interval", Value: s, Reason: "must be a whole number of days"}
	case f > MaxIntervalDays:
		return 0, &ValidationError{Field: "interval", Value: s, Reason: "must be at most " + strconv.Itoa(MaxIntervalDays) + " days"}
	}
	return int(f), nil
}

func sortPoints(points []Point) {
	slices.SortStableFunc(points, func(a, b Point) int {
		return a.Date.Compare(b.Date)
	})
}
