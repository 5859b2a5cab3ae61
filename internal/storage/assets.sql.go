package storage

import (
	"context"
	"database/sql"
)

const createAsset = `-- name: CreateAsset :one
INSERT INTO assets (holding_id, symbol, name)
VALUES (?, ?, ?)
RETURNING id, holding_id, symbol, name
`

type CreateAssetParams struct {
	HoldingID int64
	Symbol    string
	Name      string
}

func (q *Queries) CreateAsset(ctx context.Context, arg CreateAssetParams) (Asset, error) {
	row := q.db.QueryRowContext(ctx, createAsset, arg.HoldingID, arg.Symbol, arg.Name)
	var i Asset
	err := row.Scan(&i.ID, &i.HoldingID, &i.Symbol, &i.Name)
	return i, err
}

const listAssetsByHolding = `-- name: ListAssetsByHolding :many
SELECT id, holding_id, symbol, name FROM assets
WHERE holding_id = ?
ORDER BY id
`

func (q *Queries) ListAssetsByHolding(ctx context.Context, holdingID int64) ([]Asset, error) {
	rows, err := q.db.QueryContext(ctx, listAssetsByHolding, holdingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Asset
	for rows.Next() {
		var i Asset
		if err := rows.Scan(&i.ID, &i.HoldingID, &i.Symbol, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateAsset = `-- name: UpdateAsset :one
UPDATE assets
SET symbol = COALESCE(?, symbol),
    name = COALESCE(?, name)
WHERE id = ?
RETURNING id, holding_id, symbol, name
`

type UpdateAssetParams struct {
	Symbol sql.NullString
	Name   sql.NullString
	ID     int64
}

func (q *Queries) UpdateAsset(ctx context.Context, arg UpdateAssetParams) (Asset, error) {
	row := q.db.QueryRowContext(ctx, updateAsset, arg.Symbol, arg.Name, arg.ID)
	var i Asset
	err := row.Scan(&i.ID, &i.HoldingID, &i.Symbol, &i.Name)
	return i, err
}

const deleteAsset = `-- name: DeleteAsset :execrows
DELETE FROM assets WHERE id = ?
`

func (q *Queries) DeleteAsset(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAsset, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
