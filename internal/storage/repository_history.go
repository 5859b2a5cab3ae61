package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/core"
)

// toCoreHistory parses the stored date; rows with unparseable dates are
// rejected here rather than corrupting date ordering downstream.
func toCoreHistory(h History) (core.HistoryRecord, error) {
	date, err := core.ParseDate(h.Date)
	if err != nil {
		return core.HistoryRecord{}, fmt.Errorf("history row %d: %w", h.ID, err)
	}
	return core.HistoryRecord{
		ID:         h.ID,
		OwnerID:    h.OwnerID,
		Date:       date,
		Total:      h.Total,
		NetSpent:   h.NetSpent,
		Profit:     h.Profit,
		SyncStatus: core.SyncStatus(h.SyncStatus),
		SyncError:  h.SyncError,
	}, nil
}

func toCoreHistoryRows(rows []History) ([]core.HistoryRecord, error) {
	out := make([]core.HistoryRecord, 0, len(rows))
	for _, h := range rows {
		rec, err := toCoreHistory(h)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *SQLiteRepository) InsertHistory(ctx context.Context, kind HistoryKind, rec core.HistoryRecord) (core.HistoryRecord, error) {
	if err := rec.Validate(); err != nil {
		return core.HistoryRecord{}, err
	}
	row, err := r.queries.InsertHistory(ctx, kind, InsertHistoryParams{
		OwnerID:  rec.OwnerID,
		Date:     core.FormatDate(rec.Date),
		Total:    rec.Total,
		NetSpent: rec.NetSpent,
		Profit:   rec.Profit,
	})
	if err != nil {
		return core.HistoryRecord{}, fmt.Errorf("insert %s: %w", kind, err)
	}
	slog.DebugContext(ctx, "History row inserted", "kind", kind.String(), "id", row.ID, "owner_id", row.OwnerID, "date", row.Date)
	return toCoreHistory(row)
}

func (r *SQLiteRepository) GetHistory(ctx context.Context, kind HistoryKind, id int64) (core.HistoryRecord, error) {
	row, err := r.queries.GetHistory(ctx, kind, id)
	if err != nil {
		return core.HistoryRecord{}, fmt.Errorf("get %s: %w", kind, notFound(err, kind.String(), id))
	}
	return toCoreHistory(row)
}

// ListHistory returns the owner's rows, newest first.
func (r *SQLiteRepository) ListHistory(ctx context.Context, kind HistoryKind, ownerID int64) ([]core.HistoryRecord, error) {
	rows, err := r.queries.ListHistory(ctx, kind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return toCoreHistoryRows(rows)
}

func (r *SQLiteRepository) HistoryByDate(ctx context.Context, kind HistoryKind, ownerID int64, date string) ([]core.HistoryRecord, error) {
	day, err := core.ParseDate(date)
	if err != nil {
		return nil, err
	}
	rows, err := r.queries.ListHistoryByDate(ctx, kind, ownerID, core.FormatDate(day))
	if err != nil {
		return nil, fmt.Errorf("list %s by date: %w", kind, err)
	}
	return toCoreHistoryRows(rows)
}

func (r *SQLiteRepository) UpdateHistory(ctx context.Context, kind HistoryKind, id int64, upd core.HistoryUpdate) (core.HistoryRecord, error) {
	if err := upd.Validate(); err != nil {
		return core.HistoryRecord{}, err
	}
	params := UpdateHistoryParams{ID: id}
	if upd.Date != nil {
		day, _ := core.ParseDate(*upd.Date)
		params.Date = sql.NullString{String: core.FormatDate(day), Valid: true}
	}
	params.Total = nullDecimal(upd.Total)
	params.NetSpent = nullDecimal(upd.NetSpent)
	params.Profit = nullDecimal(upd.Profit)

	row, err := r.queries.UpdateHistory(ctx, kind, params)
	if err != nil {
		return core.HistoryRecord{}, fmt.Errorf("update %s: %w", kind, notFound(err, kind.String(), id))
	}
	return toCoreHistory(row)
}

func (r *SQLiteRepository) DeleteHistory(ctx context.Context, kind HistoryKind, id int64) error {
	n, err := r.queries.DeleteHistory(ctx, kind, id)
	if err := affected(n, err, kind.String(), id); err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return nil
}

// ClearHistory deletes every row of the owner and returns how many went.
func (r *SQLiteRepository) ClearHistory(ctx context.Context, kind HistoryKind, ownerID int64) (int64, error) {
	n, err := r.queries.ClearHistory(ctx, kind, ownerID)
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", kind, err)
	}
	slog.InfoContext(ctx, "History cleared", "kind", kind.String(), "owner_id", ownerID, "rows", n)
	return n, nil
}

// ReplaceHistory swaps the owner's rows for recs in a single transaction.
func (r *SQLiteRepository) ReplaceHistory(ctx context.Context, kind HistoryKind, ownerID int64, recs []core.HistoryRecord) error {
	for _, rec := range recs {
		if rec.OwnerID != ownerID {
			return fmt.Errorf("%w: record owner %d does not match %d", core.ErrInvalidID, rec.OwnerID, ownerID)
		}
		if err := rec.Validate(); err != nil {
			return err
		}
	}
	return r.withTx(ctx, func(q *Queries) error {
		if _, err := q.ClearHistory(ctx, kind, ownerID); err != nil {
			return fmt.Errorf("clear %s: %w", kind, err)
		}
		for _, rec := range recs {
			_, err := q.InsertHistory(ctx, kind, InsertHistoryParams{
				OwnerID:  ownerID,
				Date:     core.FormatDate(rec.Date),
				Total:    rec.Total,
				NetSpent: rec.NetSpent,
				Profit:   rec.Profit,
			})
			if err != nil {
				return fmt.Errorf("insert %s: %w", kind, err)
			}
		}
		return nil
	})
}

// PendingPortfolioHistory returns up to limit rows not yet mirrored.
func (r *SQLiteRepository) PendingPortfolioHistory(ctx context.Context, limit int) ([]core.HistoryRecord, error) {
	rows, err := r.queries.ListPendingPortfolioHistory(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending portfolio history: %w", err)
	}
	return toCoreHistoryRows(rows)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	return r.setSyncStatus(ctx, id, core.SyncSynced, "")
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64, reason string) error {
	return r.setSyncStatus(ctx, id, core.SyncError, reason)
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, id int64, status core.SyncStatus, reason string) error {
	n, err := r.queries.SetPortfolioHistorySyncStatus(ctx, SetPortfolioHistorySyncStatusParams{
		SyncStatus: string(status),
		SyncError:  reason,
		ID:         id,
	})
	if err := affected(n, err, "portfolio history", id); err != nil {
		return fmt.Errorf("mark portfolio history %s: %w", status, err)
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
