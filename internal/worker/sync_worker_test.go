package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptofolio/internal/amqp"
	"cryptofolio/internal/core"
	"cryptofolio/internal/sheets/memory"
	"cryptofolio/internal/storage"
)

type failingMirror struct{ calls int }

func (f *failingMirror) AppendHistory(context.Context, core.HistoryRecord) (string, error) {
	f.calls++
	return "", errors.New("quota exceeded")
}

func setup(t *testing.T) (*storage.SQLiteRepository, core.Portfolio) {
	t.Helper()
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	user, err := repo.CreateUser(ctx, core.User{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	p, err := repo.CreatePortfolio(ctx, core.Portfolio{UserID: user.ID, Name: "Main"})
	require.NoError(t, err)
	return repo, p
}

func insertRow(t *testing.T, repo *storage.SQLiteRepository, portfolioID int64, day int) core.HistoryRecord {
	t.Helper()
	rec, err := repo.InsertHistory(context.Background(), storage.PortfolioHistory, core.HistoryRecord{
		OwnerID:  portfolioID,
		Date:     time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC),
		Total:    decimal.NewFromInt(int64(100 + day)),
		NetSpent: decimal.NewFromInt(100),
		Profit:   decimal.NewFromInt(int64(day)),
	})
	require.NoError(t, err)
	return rec
}

func TestHandleSyncMessage_SyncsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, p := setup(t)
	rec := insertRow(t, repo, p.ID, 1)
	mirror := memory.New()
	w := NewSyncWorker(repo, mirror, 10, nil, nil)

	msg := amqp.NewHistorySyncMessage(rec.ID, p.ID, "2024-05-01", 1)
	require.NoError(t, w.HandleSyncMessage(ctx, msg))
	require.NoError(t, w.HandleSyncMessage(ctx, msg))

	assert.Equal(t, 1, mirror.Len())
	got, err := repo.GetHistory(ctx, storage.PortfolioHistory, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, core.SyncSynced, got.SyncStatus)
}

func TestHandleSyncMessage_MissingRowIsDropped(t *testing.T) {
	repo, p := setup(t)
	mirror := memory.New()
	w := NewSyncWorker(repo, mirror, 10, nil, nil)

	err := w.HandleSyncMessage(context.Background(), amqp.NewHistorySyncMessage(999, p.ID, "2024-05-01", 1))
	require.NoError(t, err)
	assert.Equal(t, 0, mirror.Len())
}

func TestHandleSyncMessage_MirrorFailureMarksError(t *testing.T) {
	ctx := context.Background()
	repo, p := setup(t)
	rec := insertRow(t, repo, p.ID, 2)
	mirror := &failingMirror{}
	w := NewSyncWorker(repo, mirror, 10, nil, nil)

	err := w.HandleSyncMessage(ctx, amqp.NewHistorySyncMessage(rec.ID, p.ID, "2024-05-02", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	got, err := repo.GetHistory(ctx, storage.PortfolioHistory, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, core.SyncError, got.SyncStatus)
	assert.Equal(t, "quota exceeded", got.SyncError)
}

func TestProcessPending(t *testing.T) {
	ctx := context.Background()
	repo, p := setup(t)
	for d := 1; d <= 3; d++ {
		insertRow(t, repo, p.ID, d)
	}
	mirror := memory.New()
	w := NewSyncWorker(repo, mirror, 2, nil, nil)

	synced, err := w.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, synced)

	synced, err = w.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)

	synced, err = w.ProcessPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, synced)
	assert.Equal(t, 3, mirror.Len())
}

func TestStartupSyncCheck_ContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	repo, p := setup(t)
	insertRow(t, repo, p.ID, 1)
	insertRow(t, repo, p.ID, 2)
	mirror := &failingMirror{}
	w := NewSyncWorker(repo, mirror, 1, nil, nil)

	require.NoError(t, w.StartupSyncCheck(ctx))
	assert.Equal(t, 2, mirror.calls)

	pending, err := repo.PendingPortfolioHistory(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
