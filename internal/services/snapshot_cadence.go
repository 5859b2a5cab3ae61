package services

import (
	"fmt"
	"time"

	"cryptofolio/internal/core"
)

// Cadence names how often a portfolio gets a snapshot row.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// DuenessChecker decides whether a new snapshot is due given the date of the
// newest existing row. A zero lastSnapshot means the portfolio has none.
type DuenessChecker interface {
	IsDue(lastSnapshot, now time.Time) bool
}

// DailyChecker allows one snapshot per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(lastSnapshot, now time.Time) bool {
	if lastSnapshot.IsZero() {
		return true
	}
	return core.FormatDate(lastSnapshot) != core.FormatDate(now)
}

// WeeklyChecker is due once 7 or more days have passed.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastSnapshot, now time.Time) bool {
	if lastSnapshot.IsZero() {
		return true
	}
	return !core.TruncateDay(now).Before(core.TruncateDay(lastSnapshot).AddDate(0, 0, 7))
}

// MonthlyChecker is due once per calendar month.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastSnapshot, now time.Time) bool {
	if lastSnapshot.IsZero() {
		return true
	}
	return lastSnapshot.Year() != now.Year() || lastSnapshot.Month() != now.Month()
}

var duenessStrategies = map[Cadence]DuenessChecker{
	CadenceDaily:   DailyChecker{},
	CadenceWeekly:  WeeklyChecker{},
	CadenceMonthly: MonthlyChecker{},
}

// GetDuenessChecker returns the checker registered for cadence.
func GetDuenessChecker(cadence Cadence) (DuenessChecker, error) {
	checker, ok := duenessStrategies[cadence]
	if !ok {
		return nil, fmt.Errorf("unknown snapshot cadence: %s", cadence)
	}
	return checker, nil
}
