package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"cryptofolio/internal/amqp"
	"cryptofolio/internal/cache"
	"cryptofolio/internal/core"
	"cryptofolio/internal/storage"
	"cryptofolio/internal/timeseries"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.HistorySyncMessage
	err  error
}

func (p *recordingPublisher) PublishHistorySync(_ context.Context, msg *amqp.HistorySyncMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "services.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestPortfolio(t *testing.T, repo *storage.SQLiteRepository) core.Portfolio {
	t.Helper()
	ctx := context.Background()
	user, err := repo.CreateUser(ctx, core.User{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	p, err := repo.CreatePortfolio(ctx, core.Portfolio{UserID: user.ID, Name: "Main"})
	require.NoError(t, err)
	return p
}

func newTestService(repo *storage.SQLiteRepository, pub amqp.Publisher) *PortfolioService {
	return NewPortfolioService(repo, PortfolioServiceOptions{
		Publisher: pub,
		Cache:     cache.NewLRUCache[[]timeseries.SummaryCard](16, time.Minute),
	})
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func decFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
