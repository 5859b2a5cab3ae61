package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/core"
	"cryptofolio/internal/storage"
	"cryptofolio/internal/timeseries"
)

// Development defaults created by Seeder.Init.
const (
	DefaultUsername = "default_user"
	DefaultEmail    = "default@example.com"
)

// SeedSeries is one titled series of the seed file.
type SeedSeries struct {
	Title  string      `json:"title"`
	Values []SeedValue `json:"values"`
}

type SeedValue struct {
	Date  string           `json:"date"`
	Value *decimal.Decimal `json:"value"`
}

// ParseSeed decodes a seed file: a JSON array of titled series.
func ParseSeed(r io.Reader) ([]SeedSeries, error) {
	var series []SeedSeries
	if err := json.NewDecoder(r).Decode(&series); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return series, nil
}

// SeedPoints averages the Total, Net Spent and Profit series separately per
// date, ignoring zero values, and merges them into one point per date. A
// date missing from a series gets zero for that field.
func SeedPoints(series []SeedSeries) ([]timeseries.Point, error) {
	byTitle := make(map[string]SeedSeries, len(series))
	for _, s := range series {
		byTitle[s.Title] = s
	}

	type sum struct {
		total decimal.Decimal
		count int64
	}
	titles := []string{timeseries.TitleTotal, timeseries.TitleNetSpent, timeseries.TitleProfit}
	dates := make(map[string]time.Time)
	sums := make([]map[string]*sum, len(titles))
	for ti, title := range titles {
		s, ok := byTitle[title]
		if !ok {
			return nil, fmt.Errorf("seed: missing %q series", title)
		}
		sums[ti] = make(map[string]*sum)
		for i, v := range s.Values {
			date, err := core.ParseDate(v.Date)
			if err != nil {
				return nil, fmt.Errorf("seed %q value %d: %w", title, i, err)
			}
			if v.Value == nil {
				return nil, fmt.Errorf("seed %q value %d: %w: missing value", title, i, core.ErrInvalidAmount)
			}
			if v.Value.IsZero() {
				continue
			}
			key := core.FormatDate(date)
			dates[key] = date
			acc, ok := sums[ti][key]
			if !ok {
				acc = &sum{}
				sums[ti][key] = acc
			}
			acc.total = acc.total.Add(*v.Value)
			acc.count++
		}
	}

	mean := func(ti int, key string) decimal.Decimal {
		acc, ok := sums[ti][key]
		if !ok {
			return decimal.Zero
		}
		return acc.total.Div(decimal.NewFromInt(acc.count))
	}
	points := make([]timeseries.Point, 0, len(dates))
	for key, date := range dates {
		points = append(points, timeseries.Point{
			Date:     date,
			Total:    mean(0, key),
			NetSpent: mean(1, key),
			Profit:   mean(2, key),
		})
	}
	slices.SortFunc(points, func(a, b timeseries.Point) int {
		return a.Date.Compare(b.Date)
	})
	return points, nil
}

// Seeder prepares a development database.
type Seeder struct {
	repo      *storage.SQLiteRepository
	portfolio *PortfolioService
	logger    *slog.Logger
}

func NewSeeder(repo *storage.SQLiteRepository, portfolio *PortfolioService, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{repo: repo, portfolio: portfolio, logger: logger}
}

// Init makes sure the default user and its first portfolio exist.
func (s *Seeder) Init(ctx context.Context) (core.User, core.Portfolio, error) {
	user, err := s.repo.EnsureUser(ctx, core.User{Username: DefaultUsername, Email: DefaultEmail})
	if err != nil {
		return core.User{}, core.Portfolio{}, fmt.Errorf("ensure default user: %w", err)
	}
	portfolios, err := s.repo.GetOrCreatePortfolios(ctx, user.ID)
	if err != nil {
		return core.User{}, core.Portfolio{}, fmt.Errorf("ensure default portfolio: %w", err)
	}
	s.logger.InfoContext(ctx, "Database initialized",
		"user_id", user.ID,
		"portfolio_id", portfolios[0].ID)
	return user, portfolios[0], nil
}

// Reset replaces the portfolio's history with the aggregated seed series and
// returns the number of rows written.
func (s *Seeder) Reset(ctx context.Context, portfolioID int64, seed io.Reader) (int, error) {
	series, err := ParseSeed(seed)
	if err != nil {
		return 0, err
	}
	points, err := SeedPoints(series)
	if err != nil {
		return 0, err
	}

	rows := make([]core.HistoryRecord, 0, len(points))
	for _, p := range points {
		rows = append(rows, core.HistoryRecord{
			OwnerID:  portfolioID,
			Date:     p.Date,
			Total:    p.Total,
			NetSpent: p.NetSpent,
			Profit:   p.Profit,
		})
	}

	if err := s.portfolio.ReplacePortfolioHistory(ctx, portfolioID, rows); err != nil {
		return 0, fmt.Errorf("replace portfolio history: %w", err)
	}
	s.logger.InfoContext(ctx, "Portfolio history seeded",
		"portfolio_id", portfolioID,
		"rows", len(rows))
	return len(rows), nil
}

// Restore replaces the portfolio's history with rows read back from the
// mirror and marks them synced so they are not mirrored twice.
func (s *Seeder) Restore(ctx context.Context, portfolioID int64, rows []core.HistoryRecord) (int, error) {
	clean := make([]core.HistoryRecord, 0, len(rows))
	for _, r := range rows {
		if r.OwnerID != portfolioID {
			continue
		}
		clean = append(clean, core.HistoryRecord{
			OwnerID:  portfolioID,
			Date:     r.Date,
			Total:    r.Total,
			NetSpent: r.NetSpent,
			Profit:   r.Profit,
		})
	}
	if err := s.portfolio.ReplacePortfolioHistory(ctx, portfolioID, clean); err != nil {
		return 0, fmt.Errorf("replace portfolio history: %w", err)
	}
	pending, err := s.repo.ListHistory(ctx, storage.PortfolioHistory, portfolioID)
	if err != nil {
		return 0, err
	}
	for _, r := range pending {
		if err := s.repo.MarkSynced(ctx, r.ID); err != nil {
			return 0, err
		}
	}
	s.logger.InfoContext(ctx, "Portfolio history restored from mirror",
		"portfolio_id", portfolioID,
		"rows", len(clean))
	return len(clean), nil
}
