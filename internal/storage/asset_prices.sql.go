package storage

import (
	"context"

	"github.com/shopspring/decimal"
)

const createAssetPrice = `-- name: CreateAssetPrice :one
INSERT INTO asset_prices (asset_id, price, date)
VALUES (?, ?, ?)
RETURNING id, asset_id, price, date
`

type CreateAssetPriceParams struct {
	AssetID int64
	Price   decimal.Decimal
	Date    string
}

func (q *Queries) CreateAssetPrice(ctx context.Context, arg CreateAssetPriceParams) (AssetPrice, error) {
	row := q.db.QueryRowContext(ctx, createAssetPrice, arg.AssetID, arg.Price, arg.Date)
	var i AssetPrice
	err := row.Scan(&i.ID, &i.AssetID, &i.Price, &i.Date)
	return i, err
}

const listAssetPrices = `-- name: ListAssetPrices :many
SELECT id, asset_id, price, date FROM asset_prices
WHERE asset_id = ?
ORDER BY date DESC, id DESC
`

func (q *Queries) ListAssetPrices(ctx context.Context, assetID int64) ([]AssetPrice, error) {
	rows, err := q.db.QueryContext(ctx, listAssetPrices, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AssetPrice
	for rows.Next() {
		var i AssetPrice
		if err := rows.Scan(&i.ID, &i.AssetID, &i.Price, &i.Date); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getLatestAssetPrice = `-- name: GetLatestAssetPrice :one
SELECT id, asset_id, price, date FROM asset_prices
WHERE asset_id = ?
ORDER BY date DESC, id DESC
LIMIT 1
`

func (q *Queries) GetLatestAssetPrice(ctx context.Context, assetID int64) (AssetPrice, error) {
	row := q.db.QueryRowContext(ctx, getLatestAssetPrice, assetID)
	var i AssetPrice
	err := row.Scan(&i.ID, &i.AssetID, &i.Price, &i.Date)
	return i, err
}

const deleteAssetPrice = `-- name: DeleteAssetPrice :execrows
DELETE FROM asset_prices WHERE id = ?
`

func (q *Queries) DeleteAssetPrice(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAssetPrice, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
