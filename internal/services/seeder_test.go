package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptofolio/internal/core"
	"cryptofolio/internal/storage"
	"cryptofolio/internal/timeseries"
)

const seedJSON = `[
  {"title": "Total", "values": [
    {"date": "2024-03-01", "value": 100},
    {"date": "2024-03-01", "value": 120},
    {"date": "2024-03-02", "value": 0},
    {"date": "2024-03-02", "value": 140}
  ]},
  {"title": "Net Spent", "values": [
    {"date": "2024-03-01", "value": 90},
    {"date": "2024-03-02", "value": 90}
  ]},
  {"title": "Profit", "values": [
    {"date": "2024-03-01", "value": 20},
    {"date": "2024-03-02", "value": 50}
  ]},
  {"title": "Ignored", "values": [{"date": "2024-03-01", "value": 1}]}
]`

func TestSeederInit_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seeder := NewSeeder(repo, newTestService(repo, nil), nil)

	u1, p1, err := seeder.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultUsername, u1.Username)
	assert.Equal(t, core.DefaultPortfolioName, p1.Name)

	u2, p2, err := seeder.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, u1.ID, u2.ID)
	assert.Equal(t, p1.ID, p2.ID)
}

func TestSeederReset_AveragesPerField(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := newTestService(repo, nil)
	seeder := NewSeeder(repo, svc, nil)
	_, p, err := seeder.Init(ctx)
	require.NoError(t, err)

	_, err = repo.InsertHistory(ctx, storage.PortfolioHistory, core.HistoryRecord{OwnerID: p.ID, Date: day(20), Total: dec("5")})
	require.NoError(t, err)

	n, err := seeder.Reset(ctx, p.ID, strings.NewReader(seedJSON))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, points, err := svc.PortfolioWindow(ctx, p.ID, 0)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[0].Total.Equal(dec("110")), points[0].Total.String())
	assert.True(t, points[0].NetSpent.Equal(dec("90")))
	assert.True(t, points[0].Profit.Equal(dec("20")))
	assert.True(t, points[1].Total.Equal(dec("140")), "zero values are left out of the mean")
}

func TestSeedPoints_AveragesEachSeriesBeforeMerging(t *testing.T) {
	series, err := ParseSeed(strings.NewReader(`[
		{"title":"Total","values":[{"date":"2024-03-01","value":100},{"date":"2024-03-01","value":200},{"date":"2024-03-03","value":7}]},
		{"title":"Net Spent","values":[{"date":"2024-03-01","value":150}]},
		{"title":"Profit","values":[{"date":"2024-03-01","value":0},{"date":"2024-03-01","value":50}]}
	]`))
	require.NoError(t, err)

	points, err := SeedPoints(series)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, day(1), points[0].Date)
	assert.True(t, points[0].Total.Equal(dec("150")), points[0].Total.String())
	assert.True(t, points[0].NetSpent.Equal(dec("150")))
	assert.True(t, points[0].Profit.Equal(dec("50")), "a zero profit must not halve the mean")

	assert.Equal(t, day(3), points[1].Date)
	assert.True(t, points[1].Total.Equal(dec("7")))
	assert.True(t, points[1].NetSpent.IsZero(), "a series without the date leaves its field at zero")
}

func TestSeedPoints_Errors(t *testing.T) {
	_, err := SeedPoints([]SeedSeries{{Title: timeseries.TitleTotal}})
	assert.ErrorContains(t, err, `missing "Net Spent" series`)

	series, err := ParseSeed(strings.NewReader(`[
		{"title":"Total","values":[{"date":"2024-03-01"}]},
		{"title":"Net Spent","values":[]},
		{"title":"Profit","values":[]}
	]`))
	require.NoError(t, err)
	_, err = SeedPoints(series)
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))

	series[0].Values[0].Date = "not a date"
	_, err = SeedPoints(series)
	assert.True(t, errors.Is(err, core.ErrInvalidDate))

	_, err = ParseSeed(strings.NewReader(`{"title":`))
	assert.Error(t, err)
}

func TestSeederRestore_MarksRowsSynced(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	seeder := NewSeeder(repo, newTestService(repo, nil), nil)
	_, p, err := seeder.Init(ctx)
	require.NoError(t, err)

	n, err := seeder.Restore(ctx, p.ID, []core.HistoryRecord{
		{OwnerID: p.ID, Date: day(1), Total: dec("10")},
		{OwnerID: p.ID, Date: day(2), Total: dec("12")},
		{OwnerID: p.ID + 1, Date: day(2), Total: dec("99")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pending, err := repo.PendingPortfolioHistory(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
