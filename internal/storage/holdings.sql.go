package storage

import (
	"context"
	"database/sql"
)

const createHolding = `-- name: CreateHolding :one
INSERT INTO holdings (portfolio_id, name, category)
VALUES (?, ?, ?)
RETURNING id, portfolio_id, name, category, sold, created_at
`

type CreateHoldingParams struct {
	PortfolioID int64
	Name        string
	Category    string
}

func (q *Queries) CreateHolding(ctx context.Context, arg CreateHoldingParams) (Holding, error) {
	row := q.db.QueryRowContext(ctx, createHolding, arg.PortfolioID, arg.Name, arg.Category)
	var i Holding
	err := row.Scan(&i.ID, &i.PortfolioID, &i.Name, &i.Category, &i.Sold, &i.CreatedAt)
	return i, err
}

const getHolding = `-- name: GetHolding :one
SELECT id, portfolio_id, name, category, sold, created_at FROM holdings
WHERE id = ?
`

func (q *Queries) GetHolding(ctx context.Context, id int64) (Holding, error) {
	row := q.db.QueryRowContext(ctx, getHolding, id)
	var i Holding
	err := row.Scan(&i.ID, &i.PortfolioID, &i.Name, &i.Category, &i.Sold, &i.CreatedAt)
	return i, err
}

const listHoldingsByPortfolio = `-- name: ListHoldingsByPortfolio :many
SELECT id, portfolio_id, name, category, sold, created_at FROM holdings
WHERE portfolio_id = ?
ORDER BY id
`

func (q *Queries) ListHoldingsByPortfolio(ctx context.Context, portfolioID int64) ([]Holding, error) {
	rows, err := q.db.QueryContext(ctx, listHoldingsByPortfolio, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Holding
	for rows.Next() {
		var i Holding
		if err := rows.Scan(&i.ID, &i.PortfolioID, &i.Name, &i.Category, &i.Sold, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateHolding = `-- name: UpdateHolding :one
UPDATE holdings
SET name = COALESCE(?, name),
    category = COALESCE(?, category),
    sold = COALESCE(?, sold)
WHERE id = ?
RETURNING id, portfolio_id, name, category, sold, created_at
`

type UpdateHoldingParams struct {
	Name     sql.NullString
	Category sql.NullString
	Sold     sql.NullBool
	ID       int64
}

func (q *Queries) UpdateHolding(ctx context.Context, arg UpdateHoldingParams) (Holding, error) {
	row := q.db.QueryRowContext(ctx, updateHolding, arg.Name, arg.Category, arg.Sold, arg.ID)
	var i Holding
	err := row.Scan(&i.ID, &i.PortfolioID, &i.Name, &i.Category, &i.Sold, &i.CreatedAt)
	return i, err
}

const deleteHolding = `-- name: DeleteHolding :execrows
DELETE FROM holdings WHERE id = ?
`

func (q *Queries) DeleteHolding(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteHolding, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
