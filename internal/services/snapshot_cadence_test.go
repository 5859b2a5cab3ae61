package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuenessCheckers(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	at := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		checker DuenessChecker
		last    time.Time
		want    bool
	}{
		{"daily never", DailyChecker{}, time.Time{}, true},
		{"daily today", DailyChecker{}, at(3, 15), false},
		{"daily yesterday", DailyChecker{}, at(3, 14), true},
		{"weekly never", WeeklyChecker{}, time.Time{}, true},
		{"weekly 6 days", WeeklyChecker{}, at(3, 9), false},
		{"weekly 7 days", WeeklyChecker{}, at(3, 8), true},
		{"monthly same month", MonthlyChecker{}, at(3, 1), false},
		{"monthly previous month", MonthlyChecker{}, at(2, 28), true},
		{"monthly never", MonthlyChecker{}, time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.checker.IsDue(tt.last, now))
		})
	}
}

func TestGetDuenessChecker(t *testing.T) {
	for _, c := range []Cadence{CadenceDaily, CadenceWeekly, CadenceMonthly} {
		checker, err := GetDuenessChecker(c)
		require.NoError(t, err)
		assert.NotNil(t, checker)
	}

	_, err := GetDuenessChecker("hourly")
	assert.EqualError(t, err, "unknown snapshot cadence: hourly")
}
