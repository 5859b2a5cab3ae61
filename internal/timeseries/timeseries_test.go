package timeseries

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rec(date time.Time, total, netSpent, profit string) Record {
	return Record{Date: date, Total: dec(total), NetSpent: dec(netSpent), Profit: dec(profit)}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestAggregateByDateEmpty(t *testing.T) {
	assert.Empty(t, AggregateByDate(nil))
	assert.Empty(t, AggregateByDate([]Record{}))
}

func TestAggregateByDateAveragesDuplicates(t *testing.T) {
	records := []Record{
		rec(day(2024, 1, 10), "300", "200", "100"),
		rec(day(2024, 1, 1), "100", "80", "20"),
		rec(day(2024, 1, 1), "200", "120", "80"),
	}

	points := AggregateByDate(records)
	require.Len(t, points, 2)

	assert.Equal(t, day(2024, 1, 1), points[0].Date)
	assertDecimal(t, "150", points[0].Total)
	assertDecimal(t, "100", points[0].NetSpent)
	assertDecimal(t, "50", points[0].Profit)

	assert.Equal(t, day(2024, 1, 10), points[1].Date)
	assertDecimal(t, "300", points[1].Total)
}

func TestAggregateByDateDropsRecordsWithAnyZeroField(t *testing.T) {
	records := []Record{
		rec(day(2024, 1, 1), "100", "0", "0"),
		rec(day(2024, 1, 1), "0", "40", "0"),
		rec(day(2024, 1, 1), "0", "0", "0"),
		rec(day(2024, 1, 2), "0", "0", "0"),
	}
	assert.Empty(t, AggregateByDate(records))
}

func TestAggregateByDateMixedZeroRow(t *testing.T) {
	records := []Record{
		rec(day(2024, 1, 1), "100", "100", "0"),
		rec(day(2024, 1, 1), "200", "150", "50"),
	}

	points := AggregateByDate(records)
	require.Len(t, points, 1)
	assertDecimal(t, "200", points[0].Total, "a row with a zero field must not reach the mean")
	assertDecimal(t, "150", points[0].NetSpent)
	assertDecimal(t, "50", points[0].Profit)
}

func TestAggregateByDateMergesTimesOfDay(t *testing.T) {
	records := []Record{
		{Date: time.Date(2024, 2, 3, 8, 0, 0, 0, time.UTC), Total: dec("10"), NetSpent: dec("8"), Profit: dec("2")},
		{Date: time.Date(2024, 2, 3, 20, 30, 0, 0, time.UTC), Total: dec("30"), NetSpent: dec("8"), Profit: dec("22")},
	}

	points := AggregateByDate(records)
	require.Len(t, points, 1)
	assert.Equal(t, day(2024, 2, 3), points[0].Date)
	assertDecimal(t, "20", points[0].Total)
	assertDecimal(t, "12", points[0].Profit)
}

func TestAggregateByDateIsPure(t *testing.T) {
	records := []Record{
		rec(day(2024, 1, 3), "7", "3", "4"),
		rec(day(2024, 1, 1), "1", "1", "1"),
		rec(day(2024, 1, 3), "8", "0", "5"),
	}
	snapshot := append([]Record(nil), records...)

	first := AggregateByDate(records)
	second := AggregateByDate(records)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, records)
	for i := 1; i < len(first); i++ {
		assert.True(t, first[i-1].Date.Before(first[i].Date), "dates must be unique and ascending")
	}
}

func points(dates ...time.Time) []Point {
	out := make([]Point, len(dates))
	for i, d := range dates {
		out[i] = Point{Date: d, Total: decimal.NewFromInt(int64(i + 1))}
	}
	return out
}

func TestSelectWindow(t *testing.T) {
	series := points(day(2024, 1, 1), day(2024, 1, 5), day(2024, 1, 10), day(2024, 1, 11))

	cases := []struct {
		name     string
		interval int
		want     []time.Time
	}{
		{"cutoff is inclusive", 10, []time.Time{day(2024, 1, 1), day(2024, 1, 5), day(2024, 1, 10), day(2024, 1, 11)}},
		{"trailing six days", 6, []time.Time{day(2024, 1, 5), day(2024, 1, 10), day(2024, 1, 11)}},
		{"single day", 1, []time.Time{day(2024, 1, 10), day(2024, 1, 11)}},
		{"wider than history", 365, []time.Time{day(2024, 1, 1), day(2024, 1, 5), day(2024, 1, 10), day(2024, 1, 11)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SelectWindow(series, tc.interval)
			require.NoError(t, err)
			var dates []time.Time
			for _, p := range got {
				dates = append(dates, p.Date)
			}
			assert.Equal(t, tc.want, dates)
		})
	}
}

func TestSelectWindowSortsInput(t *testing.T) {
	unsorted := points(day(2024, 3, 10), day(2024, 3, 1), day(2024, 3, 8))

	got, err := SelectWindow(unsorted, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, day(2024, 3, 8), got[0].Date)
	assert.Equal(t, day(2024, 3, 10), got[1].Date)
	assert.Equal(t, day(2024, 3, 10), unsorted[0].Date, "input must not be reordered")
}

func TestSelectWindowEmpty(t *testing.T) {
	for _, n := range []int{0, 1, 90} {
		got, err := SelectWindow(nil, n)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestSelectWindowZeroIsIdentity(t *testing.T) {
	unsorted := points(day(2024, 3, 10), day(2024, 3, 1), day(2024, 3, 8))

	got, err := SelectWindow(unsorted, 0)
	require.NoError(t, err)
	assert.Equal(t, unsorted, got)
}

func TestSelectWindowRejectsNegative(t *testing.T) {
	_, err := SelectWindow(points(day(2024, 1, 1)), -3)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "interval", ve.Field)
}

func TestParseInterval(t *testing.T) {
	good := map[string]int{"30": 30, "0": 0, " 7 ": 7, "1e1": 10, "90.0": 90}
	for in, want := range good {
		got, err := ParseInterval(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "NaN", "Inf", "-Inf", "-1", "7.5", "1e9"} {
		_, err := ParseInterval(in)
		assert.True(t, IsValidationError(err), "%q should fail validation, got %v", in, err)
	}
}
