package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

// HistoryKind selects between the two history tables, which share a shape.
type HistoryKind int

const (
	PortfolioHistory HistoryKind = iota
	HoldingsHistory
)

func (k HistoryKind) String() string {
	if k == HoldingsHistory {
		return "holdings history"
	}
	return "portfolio history"
}

type historyTable struct {
	table   string
	owner   string
	columns string
}

var historyTables = map[HistoryKind]historyTable{
	PortfolioHistory: {
		table:   "portfolio_history",
		owner:   "portfolio_id",
		columns: "id, portfolio_id, date, total, net_spent, profit, sync_status, sync_error",
	},
	HoldingsHistory: {
		table:   "holdings_history",
		owner:   "holdings_id",
		columns: "id, holdings_id, date, total, net_spent, profit, '' AS sync_status, '' AS sync_error",
	},
}

func (k HistoryKind) table() historyTable {
	t, ok := historyTables[k]
	if !ok {
		panic(fmt.Sprintf("storage: unknown history kind %d", int(k)))
	}
	return t
}

func scanHistory(row interface{ Scan(...any) error }) (History, error) {
	var i History
	err := row.Scan(&i.ID, &i.OwnerID, &i.Date, &i.Total, &i.NetSpent, &i.Profit, &i.SyncStatus, &i.SyncError)
	return i, err
}

func scanHistoryRows(rows *sql.Rows) ([]History, error) {
	var items []History
	for rows.Next() {
		i, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type InsertHistoryParams struct {
	OwnerID  int64
	Date     string
	Total    decimal.Decimal
	NetSpent decimal.Decimal
	Profit   decimal.Decimal
}

// -- name: InsertHistory :one
func (q *Queries) InsertHistory(ctx context.Context, kind HistoryKind, arg InsertHistoryParams) (History, error) {
	t := kind.table()
	query := fmt.Sprintf(`INSERT INTO %s (%s, date, total, net_spent, profit)
VALUES (?, ?, ?, ?, ?)
RETURNING %s`, t.table, t.owner, t.columns)
	row := q.db.QueryRowContext(ctx, query, arg.OwnerID, arg.Date, arg.Total, arg.NetSpent, arg.Profit)
	return scanHistory(row)
}

// -- name: GetHistory :one
func (q *Queries) GetHistory(ctx context.Context, kind HistoryKind, id int64) (History, error) {
	t := kind.table()
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, t.columns, t.table)
	return scanHistory(q.db.QueryRowContext(ctx, query, id))
}

// -- name: ListHistory :many
func (q *Queries) ListHistory(ctx context.Context, kind HistoryKind, ownerID int64) ([]History, error) {
	t := kind.table()
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? ORDER BY date DESC, id DESC`, t.columns, t.table, t.owner)
	rows, err := q.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistoryRows(rows)
}

// -- name: ListHistoryByDate :many
func (q *Queries) ListHistoryByDate(ctx context.Context, kind HistoryKind, ownerID int64, date string) ([]History, error) {
	t := kind.table()
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? AND date = ? ORDER BY id`, t.columns, t.table, t.owner)
	rows, err := q.db.QueryContext(ctx, query, ownerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistoryRows(rows)
}

type UpdateHistoryParams struct {
	Date     sql.NullString
	Total    decimal.NullDecimal
	NetSpent decimal.NullDecimal
	Profit   decimal.NullDecimal
	ID       int64
}

// -- name: UpdateHistory :one
func (q *Queries) UpdateHistory(ctx context.Context, kind HistoryKind, arg UpdateHistoryParams) (History, error) {
	t := kind.table()
	query := fmt.Sprintf(`UPDATE %s
SET date = COALESCE(?, date),
    total = COALESCE(?, total),
    net_spent = COALESCE(?, net_spent),
    profit = COALESCE(?, profit)
WHERE id = ?
RETURNING %s`, t.table, t.columns)
	row := q.db.QueryRowContext(ctx, query, arg.Date, arg.Total, arg.NetSpent, arg.Profit, arg.ID)
	return scanHistory(row)
}

// -- name: DeleteHistory :execrows
func (q *Queries) DeleteHistory(ctx context.Context, kind HistoryKind, id int64) (int64, error) {
	t := kind.table()
	result, err := q.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.table), id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// -- name: ClearHistory :execrows
func (q *Queries) ClearHistory(ctx context.Context, kind HistoryKind, ownerID int64) (int64, error) {
	t := kind.table()
	result, err := q.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, t.table, t.owner), ownerID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listPendingPortfolioHistory = `-- name: ListPendingPortfolioHistory :many
SELECT id, portfolio_id, date, total, net_spent, profit, sync_status, sync_error FROM portfolio_history
WHERE sync_status = 'pending'
ORDER BY id
LIMIT ?
`

func (q *Queries) ListPendingPortfolioHistory(ctx context.Context, limit int64) ([]History, error) {
	rows, err := q.db.QueryContext(ctx, listPendingPortfolioHistory, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistoryRows(rows)
}

const setPortfolioHistorySyncStatus = `-- name: SetPortfolioHistorySyncStatus :execrows
UPDATE portfolio_history
SET sync_status = ?, sync_error = ?
WHERE id = ?
`

type SetPortfolioHistorySyncStatusParams struct {
	SyncStatus string
	SyncError  string
	ID         int64
}

func (q *Queries) SetPortfolioHistorySyncStatus(ctx context.Context, arg SetPortfolioHistorySyncStatusParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setPortfolioHistorySyncStatus, arg.SyncStatus, arg.SyncError, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
