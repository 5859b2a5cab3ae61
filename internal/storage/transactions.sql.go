package storage

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (portfolio_id, asset_id, transaction_type, quantity, price)
VALUES (?, ?, ?, ?, ?)
RETURNING id, portfolio_id, asset_id, transaction_type, quantity, price, created_at
`

type CreateTransactionParams struct {
	PortfolioID     int64
	AssetID         int64
	TransactionType string
	Quantity        decimal.Decimal
	Price           decimal.Decimal
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.PortfolioID,
		arg.AssetID,
		arg.TransactionType,
		arg.Quantity,
		arg.Price,
	)
	var i Transaction
	err := row.Scan(&i.ID, &i.PortfolioID, &i.AssetID, &i.TransactionType, &i.Quantity, &i.Price, &i.CreatedAt)
	return i, err
}

const listTransactionsByPortfolio = `-- name: ListTransactionsByPortfolio :many
SELECT id, portfolio_id, asset_id, transaction_type, quantity, price, created_at FROM transactions
WHERE portfolio_id = ?
ORDER BY created_at, id
`

func (q *Queries) ListTransactionsByPortfolio(ctx context.Context, portfolioID int64) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByPortfolio, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

const listTransactionsByAsset = `-- name: ListTransactionsByAsset :many
SELECT id, portfolio_id, asset_id, transaction_type, quantity, price, created_at FROM transactions
WHERE asset_id = ?
ORDER BY created_at, id
`

func (q *Queries) ListTransactionsByAsset(ctx context.Context, assetID int64) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByAsset, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows rowScanner) ([]Transaction, error) {
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(&i.ID, &i.PortfolioID, &i.AssetID, &i.TransactionType, &i.Quantity, &i.Price, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateTransaction = `-- name: UpdateTransaction :one
UPDATE transactions
SET transaction_type = COALESCE(?, transaction_type),
    quantity = COALESCE(?, quantity),
    price = COALESCE(?, price)
WHERE id = ?
RETURNING id, portfolio_id, asset_id, transaction_type, quantity, price, created_at
`

type UpdateTransactionParams struct {
	TransactionType sql.NullString
	Quantity        decimal.NullDecimal
	Price           decimal.NullDecimal
	ID              int64
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction, arg.TransactionType, arg.Quantity, arg.Price, arg.ID)
	var i Transaction
	err := row.Scan(&i.ID, &i.PortfolioID, &i.AssetID, &i.TransactionType, &i.Quantity, &i.Price, &i.CreatedAt)
	return i, err
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
