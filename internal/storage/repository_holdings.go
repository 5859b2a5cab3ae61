package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/core"
)

// Holdings

func toCoreHolding(h Holding) core.Holding {
	return core.Holding{
		ID:          h.ID,
		PortfolioID: h.PortfolioID,
		Name:        h.Name,
		Category:    h.Category,
		Sold:        h.Sold,
		CreatedAt:   parseTimestamp(h.CreatedAt),
	}
}

func (r *SQLiteRepository) CreateHolding(ctx context.Context, h core.Holding) (core.Holding, error) {
	if err := h.Validate(); err != nil {
		return core.Holding{}, err
	}
	row, err := r.queries.CreateHolding(ctx, CreateHoldingParams{
		PortfolioID: h.PortfolioID,
		Name:        h.Name,
		Category:    h.Category,
	})
	if err != nil {
		return core.Holding{}, fmt.Errorf("create holding: %w", err)
	}
	slog.InfoContext(ctx, "Holding created", "id", row.ID, "portfolio_id", row.PortfolioID, "name", row.Name)
	return toCoreHolding(row), nil
}

func (r *SQLiteRepository) GetHolding(ctx context.Context, id int64) (core.Holding, error) {
	row, err := r.queries.GetHolding(ctx, id)
	if err != nil {
		return core.Holding{}, fmt.Errorf("get holding: %w", notFound(err, "holding", id))
	}
	return toCoreHolding(row), nil
}

func (r *SQLiteRepository) ListHoldings(ctx context.Context, portfolioID int64) ([]core.Holding, error) {
	rows, err := r.queries.ListHoldingsByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	out := make([]core.Holding, 0, len(rows))
	for _, h := range rows {
		out = append(out, toCoreHolding(h))
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateHolding(ctx context.Context, id int64, upd core.HoldingUpdate) (core.Holding, error) {
	if err := upd.Validate(); err != nil {
		return core.Holding{}, err
	}
	params := UpdateHoldingParams{
		Name:     nullString(upd.Name),
		Category: nullString(upd.Category),
		ID:       id,
	}
	if upd.Sold != nil {
		params.Sold = sql.NullBool{Bool: *upd.Sold, Valid: true}
	}
	row, err := r.queries.UpdateHolding(ctx, params)
	if err != nil {
		return core.Holding{}, fmt.Errorf("update holding: %w", notFound(err, "holding", id))
	}
	return toCoreHolding(row), nil
}

func (r *SQLiteRepository) DeleteHolding(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteHolding(ctx, id)
	if err := affected(n, err, "holding", id); err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}
	return nil
}

// Assets

func toCoreAsset(a Asset) core.Asset {
	return core.Asset{ID: a.ID, HoldingID: a.HoldingID, Symbol: a.Symbol, Name: a.Name}
}

func (r *SQLiteRepository) CreateAsset(ctx context.Context, a core.Asset) (core.Asset, error) {
	if err := a.Validate(); err != nil {
		return core.Asset{}, err
	}
	row, err := r.queries.CreateAsset(ctx, CreateAssetParams{HoldingID: a.HoldingID, Symbol: a.Symbol, Name: a.Name})
	if err != nil {
		return core.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	return toCoreAsset(row), nil
}

func (r *SQLiteRepository) ListAssets(ctx context.Context, holdingID int64) ([]core.Asset, error) {
	rows, err := r.queries.ListAssetsByHolding(ctx, holdingID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	out := make([]core.Asset, 0, len(rows))
	for _, a := range rows {
		out = append(out, toCoreAsset(a))
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateAsset(ctx context.Context, id int64, upd core.AssetUpdate) (core.Asset, error) {
	if err := upd.Validate(); err != nil {
		return core.Asset{}, err
	}
	row, err := r.queries.UpdateAsset(ctx, UpdateAssetParams{
		Symbol: nullString(upd.Symbol),
		Name:   nullString(upd.Name),
		ID:     id,
	})
	if err != nil {
		return core.Asset{}, fmt.Errorf("update asset: %w", notFound(err, "asset", id))
	}
	return toCoreAsset(row), nil
}

func (r *SQLiteRepository) DeleteAsset(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteAsset(ctx, id)
	if err := affected(n, err, "asset", id); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

// Transactions

func toCoreTransaction(t Transaction) core.Transaction {
	return core.Transaction{
		ID:          t.ID,
		PortfolioID: t.PortfolioID,
		AssetID:     t.AssetID,
		Type:        core.TransactionType(t.TransactionType),
		Quantity:    t.Quantity,
		Price:       t.Price,
		CreatedAt:   parseTimestamp(t.CreatedAt),
	}
}

func toCoreTransactions(rows []Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(rows))
	for _, t := range rows {
		out = append(out, toCoreTransaction(t))
	}
	return out
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		PortfolioID:     t.PortfolioID,
		AssetID:         t.AssetID,
		TransactionType: string(t.Type),
		Quantity:        t.Quantity,
		Price:           t.Price,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction recorded",
		"id", row.ID,
		"asset_id", row.AssetID,
		"type", row.TransactionType,
		"quantity", row.Quantity.String())
	return toCoreTransaction(row), nil
}

func (r *SQLiteRepository) ListTransactionsByPortfolio(ctx context.Context, portfolioID int64) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsByPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("list transactions by portfolio: %w", err)
	}
	return toCoreTransactions(rows), nil
}

func (r *SQLiteRepository) ListTransactionsByAsset(ctx context.Context, assetID int64) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("list transactions by asset: %w", err)
	}
	return toCoreTransactions(rows), nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id int64, upd core.TransactionUpdate) (core.Transaction, error) {
	if err := upd.Validate(); err != nil {
		return core.Transaction{}, err
	}
	params := UpdateTransactionParams{ID: id}
	if upd.Type != nil {
		params.TransactionType = sql.NullString{String: string(*upd.Type), Valid: true}
	}
	if upd.Quantity != nil {
		params.Quantity = decimal.NewNullDecimal(*upd.Quantity)
	}
	if upd.Price != nil {
		params.Price = decimal.NewNullDecimal(*upd.Price)
	}
	row, err := r.queries.UpdateTransaction(ctx, params)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", notFound(err, "transaction", id))
	}
	return toCoreTransaction(row), nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err := affected(n, err, "transaction", id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// Asset prices

func toCoreAssetPrice(p AssetPrice) core.AssetPrice {
	return core.AssetPrice{ID: p.ID, AssetID: p.AssetID, Price: p.Price, Date: parseTimestamp(p.Date)}
}

// CreateAssetPrice stores a quote. A zero Date means now.
func (r *SQLiteRepository) CreateAssetPrice(ctx context.Context, p core.AssetPrice) (core.AssetPrice, error) {
	if err := p.Validate(); err != nil {
		return core.AssetPrice{}, err
	}
	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	row, err := r.queries.CreateAssetPrice(ctx, CreateAssetPriceParams{
		AssetID: p.AssetID,
		Price:   p.Price,
		Date:    formatTimestamp(p.Date),
	})
	if err != nil {
		return core.AssetPrice{}, fmt.Errorf("create asset price: %w", err)
	}
	return toCoreAssetPrice(row), nil
}

func (r *SQLiteRepository) ListAssetPrices(ctx context.Context, assetID int64) ([]core.AssetPrice, error) {
	rows, err := r.queries.ListAssetPrices(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("list asset prices: %w", err)
	}
	out := make([]core.AssetPrice, 0, len(rows))
	for _, p := range rows {
		out = append(out, toCoreAssetPrice(p))
	}
	return out, nil
}

func (r *SQLiteRepository) LatestAssetPrice(ctx context.Context, assetID int64) (core.AssetPrice, error) {
	row, err := r.queries.GetLatestAssetPrice(ctx, assetID)
	if err != nil {
		return core.AssetPrice{}, fmt.Errorf("get latest asset price: %w", notFound(err, "price for asset", assetID))
	}
	return toCoreAssetPrice(row), nil
}

func (r *SQLiteRepository) DeleteAssetPrice(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteAssetPrice(ctx, id)
	if err := affected(n, err, "asset price", id); err != nil {
		return fmt.Errorf("delete asset price: %w", err)
	}
	return nil
}
