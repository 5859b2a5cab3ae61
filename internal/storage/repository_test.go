package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptofolio/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func seedHolding(t *testing.T, repo *SQLiteRepository) (core.User, core.Portfolio, core.Holding) {
	t.Helper()
	ctx := context.Background()
	user, err := repo.CreateUser(ctx, core.User{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	portfolio, err := repo.CreatePortfolio(ctx, core.Portfolio{UserID: user.ID, Name: "Main"})
	require.NoError(t, err)
	holding, err := repo.CreateHolding(ctx, core.Holding{PortfolioID: portfolio.ID, Name: "Bitcoin", Category: "L1"})
	require.NoError(t, err)
	return user, portfolio, holding
}

func TestUserLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, core.User{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.GetUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	name := "robert"
	updated, err := repo.UpdateUser(ctx, user.ID, core.UserUpdate{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "robert", updated.Username)
	assert.Equal(t, "bob@example.com", updated.Email)

	_, err = repo.UpdateUser(ctx, user.ID, core.UserUpdate{})
	assert.ErrorIs(t, err, core.ErrNothingToUpdate)

	require.NoError(t, repo.DeleteUser(ctx, user.ID))
	_, err = repo.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteUser(ctx, user.ID), core.ErrNotFound)
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.EnsureUser(ctx, core.User{Username: "default_user", Email: "default@example.com"})
	require.NoError(t, err)
	second, err := repo.EnsureUser(ctx, core.User{Username: "default_user", Email: "default@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetOrCreatePortfolios(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, core.User{Username: "carol", Email: "carol@example.com"})
	require.NoError(t, err)

	portfolios, err := repo.GetOrCreatePortfolios(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, portfolios, 1)
	assert.Equal(t, core.DefaultPortfolioName, portfolios[0].Name)

	again, err := repo.GetOrCreatePortfolios(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, portfolios[0].ID, again[0].ID)

	_, err = repo.GetOrCreatePortfolios(ctx, 9999)
	assert.ErrorIs(t, err, core.ErrNotFound)

	renamed, err := repo.RenamePortfolio(ctx, portfolios[0].ID, "Long term")
	require.NoError(t, err)
	assert.Equal(t, "Long term", renamed.Name)
}

func TestHoldingAssetTransactionFlow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_, portfolio, holding := seedHolding(t, repo)

	sold := true
	updated, err := repo.UpdateHolding(ctx, holding.ID, core.HoldingUpdate{Sold: &sold})
	require.NoError(t, err)
	assert.True(t, updated.Sold)
	assert.Equal(t, "Bitcoin", updated.Name)

	asset, err := repo.CreateAsset(ctx, core.Asset{HoldingID: holding.ID, Symbol: "BTC", Name: "Bitcoin"})
	require.NoError(t, err)

	tx, err := repo.CreateTransaction(ctx, core.Transaction{
		PortfolioID: portfolio.ID,
		AssetID:     asset.ID,
		Type:        core.TransactionBuy,
		Quantity:    dec("0.5"),
		Price:       dec("30000"),
	})
	require.NoError(t, err)
	assert.True(t, tx.Quantity.Equal(dec("0.5")))

	byAsset, err := repo.ListTransactionsByAsset(ctx, asset.ID)
	require.NoError(t, err)
	require.Len(t, byAsset, 1)

	price := dec("31000")
	changed, err := repo.UpdateTransaction(ctx, tx.ID, core.TransactionUpdate{Price: &price})
	require.NoError(t, err)
	assert.True(t, changed.Price.Equal(price))
	assert.True(t, changed.Quantity.Equal(dec("0.5")))

	_, err = repo.CreateAssetPrice(ctx, core.AssetPrice{AssetID: asset.ID, Price: dec("40000"), Date: day(2024, 1, 1)})
	require.NoError(t, err)
	_, err = repo.CreateAssetPrice(ctx, core.AssetPrice{AssetID: asset.ID, Price: dec("42000"), Date: day(2024, 1, 2)})
	require.NoError(t, err)

	latest, err := repo.LatestAssetPrice(ctx, asset.ID)
	require.NoError(t, err)
	assert.True(t, latest.Price.Equal(dec("42000")))
	assert.Equal(t, day(2024, 1, 2), latest.Date)

	// Deleting the holding cascades to assets, prices and transactions.
	require.NoError(t, repo.DeleteHolding(ctx, holding.ID))
	assets, err := repo.ListAssets(ctx, holding.ID)
	require.NoError(t, err)
	assert.Empty(t, assets)
	txs, err := repo.ListTransactionsByPortfolio(ctx, portfolio.ID)
	require.NoError(t, err)
	assert.Empty(t, txs)
	_, err = repo.LatestAssetPrice(ctx, asset.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestHistoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_, portfolio, holding := seedHolding(t, repo)

	for _, d := range []time.Time{day(2024, 1, 1), day(2024, 1, 3), day(2024, 1, 2)} {
		_, err := repo.InsertHistory(ctx, PortfolioHistory, core.HistoryRecord{
			OwnerID: portfolio.ID, Date: d, Total: dec("100.5"), NetSpent: dec("80"), Profit: dec("20.5"),
		})
		require.NoError(t, err)
	}

	rows, err := repo.ListHistory(ctx, PortfolioHistory, portfolio.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, day(2024, 1, 3), rows[0].Date, "newest first")
	assert.True(t, rows[0].Total.Equal(dec("100.5")))
	assert.Equal(t, core.SyncPending, rows[0].SyncStatus)

	byDate, err := repo.HistoryByDate(ctx, PortfolioHistory, portfolio.ID, "2024-01-02")
	require.NoError(t, err)
	require.Len(t, byDate, 1)

	profit := dec("-5")
	updated, err := repo.UpdateHistory(ctx, PortfolioHistory, byDate[0].ID, core.HistoryUpdate{Profit: &profit})
	require.NoError(t, err)
	assert.True(t, updated.Profit.Equal(profit))
	assert.True(t, updated.Total.Equal(dec("100.5")))

	require.NoError(t, repo.DeleteHistory(ctx, PortfolioHistory, byDate[0].ID))
	assert.ErrorIs(t, repo.DeleteHistory(ctx, PortfolioHistory, byDate[0].ID), core.ErrNotFound)

	n, err := repo.ClearHistory(ctx, PortfolioHistory, portfolio.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.InsertHistory(ctx, HoldingsHistory, core.HistoryRecord{OwnerID: holding.ID, Date: day(2024, 2, 1), Total: dec("10")})
	require.NoError(t, err)
	holdingRows, err := repo.ListHistory(ctx, HoldingsHistory, holding.ID)
	require.NoError(t, err)
	require.Len(t, holdingRows, 1)
	assert.Equal(t, core.SyncStatus(""), holdingRows[0].SyncStatus)
}

func TestReplaceHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_, portfolio, _ := seedHolding(t, repo)

	_, err := repo.InsertHistory(ctx, PortfolioHistory, core.HistoryRecord{OwnerID: portfolio.ID, Date: day(2023, 1, 1), Total: dec("1")})
	require.NoError(t, err)

	err = repo.ReplaceHistory(ctx, PortfolioHistory, portfolio.ID, []core.HistoryRecord{
		{OwnerID: portfolio.ID, Date: day(2024, 1, 1), Total: dec("10")},
		{OwnerID: portfolio.ID, Date: day(2024, 1, 2), Total: dec("12")},
	})
	require.NoError(t, err)

	rows, err := repo.ListHistory(ctx, PortfolioHistory, portfolio.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, day(2024, 1, 2), rows[0].Date)

	err = repo.ReplaceHistory(ctx, PortfolioHistory, portfolio.ID, []core.HistoryRecord{
		{OwnerID: portfolio.ID + 1, Date: day(2024, 1, 1)},
	})
	assert.ErrorIs(t, err, core.ErrInvalidID)
}

func TestSyncStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_, portfolio, _ := seedHolding(t, repo)

	var ids []int64
	for i := 1; i <= 3; i++ {
		rec, err := repo.InsertHistory(ctx, PortfolioHistory, core.HistoryRecord{OwnerID: portfolio.ID, Date: day(2024, 1, i), Total: dec("1")})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	pending, err := repo.PendingPortfolioHistory(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, repo.MarkSynced(ctx, ids[0]))
	require.NoError(t, repo.MarkSyncError(ctx, ids[1], "quota exceeded"))

	pending, err = repo.PendingPortfolioHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ids[2], pending[0].ID)

	failed, err := repo.GetHistory(ctx, PortfolioHistory, ids[1])
	require.NoError(t, err)
	assert.Equal(t, core.SyncError, failed.SyncStatus)
	assert.Equal(t, "quota exceeded", failed.SyncError)

	assert.ErrorIs(t, repo.MarkSynced(ctx, 12345), core.ErrNotFound)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")

	first, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.SchemaVersion())
	require.NoError(t, first.Close())

	second, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer second.Close()
	assert.Equal(t, uint(1), second.SchemaVersion())
}
