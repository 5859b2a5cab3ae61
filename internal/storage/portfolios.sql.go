package storage

import (
	"context"
)

const createPortfolio = `-- name: CreatePortfolio :one
INSERT INTO portfolios (user_id, name)
VALUES (?, ?)
RETURNING id, user_id, name, created_at
`

type CreatePortfolioParams struct {
	UserID int64
	Name   string
}

func (q *Queries) CreatePortfolio(ctx context.Context, arg CreatePortfolioParams) (Portfolio, error) {
	row := q.db.QueryRowContext(ctx, createPortfolio, arg.UserID, arg.Name)
	var i Portfolio
	err := row.Scan(&i.ID, &i.UserID, &i.Name, &i.CreatedAt)
	return i, err
}

const getPortfolio = `-- name: GetPortfolio :one
SELECT id, user_id, name, created_at FROM portfolios
WHERE id = ?
`

func (q *Queries) GetPortfolio(ctx context.Context, id int64) (Portfolio, error) {
	row := q.db.QueryRowContext(ctx, getPortfolio, id)
	var i Portfolio
	err := row.Scan(&i.ID, &i.UserID, &i.Name, &i.CreatedAt)
	return i, err
}

const listPortfoliosByUser = `-- name: ListPortfoliosByUser :many
SELECT id, user_id, name, created_at FROM portfolios
WHERE user_id = ?
ORDER BY id
`

func (q *Queries) ListPortfoliosByUser(ctx context.Context, userID int64) ([]Portfolio, error) {
	rows, err := q.db.QueryContext(ctx, listPortfoliosByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPortfolios(rows)
}

const listPortfolios = `-- name: ListPortfolios :many
SELECT id, user_id, name, created_at FROM portfolios
ORDER BY id
`

func (q *Queries) ListPortfolios(ctx context.Context) ([]Portfolio, error) {
	rows, err := q.db.QueryContext(ctx, listPortfolios)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPortfolios(rows)
}

func scanPortfolios(rows rowScanner) ([]Portfolio, error) {
	var items []Portfolio
	for rows.Next() {
		var i Portfolio
		if err := rows.Scan(&i.ID, &i.UserID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const renamePortfolio = `-- name: RenamePortfolio :one
UPDATE portfolios SET name = ?
WHERE id = ?
RETURNING id, user_id, name, created_at
`

type RenamePortfolioParams struct {
	Name string
	ID   int64
}

func (q *Queries) RenamePortfolio(ctx context.Context, arg RenamePortfolioParams) (Portfolio, error) {
	row := q.db.QueryRowContext(ctx, renamePortfolio, arg.Name, arg.ID)
	var i Portfolio
	err := row.Scan(&i.ID, &i.UserID, &i.Name, &i.CreatedAt)
	return i, err
}

const deletePortfolio = `-- name: DeletePortfolio :execrows
DELETE FROM portfolios WHERE id = ?
`

func (q *Queries) DeletePortfolio(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePortfolio, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// rowScanner is the subset of *sql.Rows the scan helpers need.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}
