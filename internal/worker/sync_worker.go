package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cryptofolio/internal/amqp"
	"cryptofolio/internal/core"
	"cryptofolio/internal/metrics"
	"cryptofolio/internal/sheets"
	"cryptofolio/internal/storage"
)

// HistoryStore is the slice of the repository the worker needs.
type HistoryStore interface {
	GetHistory(ctx context.Context, kind storage.HistoryKind, id int64) (core.HistoryRecord, error)
	PendingPortfolioHistory(ctx context.Context, limit int) ([]core.HistoryRecord, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64, reason string) error
}

// SyncWorker mirrors portfolio history rows from SQLite to the configured mirror.
type SyncWorker struct {
	store     HistoryStore
	mirror    sheets.HistoryWriter
	batchSize int
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewSyncWorker(store HistoryStore, mirror sheets.HistoryWriter, batchSize int, m *metrics.Metrics, logger *slog.Logger) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncWorker{
		store:     store,
		mirror:    mirror,
		batchSize: batchSize,
		metrics:   m,
		logger:    logger,
	}
}

// HandleSyncMessage processes a single history sync message from AMQP.
// Rows that no longer exist or are already synced are acknowledged without work.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.HistorySyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"portfolio_id", msg.PortfolioID,
		"version", msg.Version)

	rec, err := w.store.GetHistory(ctx, storage.PortfolioHistory, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		w.logger.WarnContext(ctx, "History row gone, dropping sync message", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get history from storage: %w", err)
	}
	if rec.SyncStatus == core.SyncSynced {
		w.logger.DebugContext(ctx, "History row already synced", "id", msg.ID)
		return nil
	}

	if err := w.syncRecord(ctx, rec); err != nil {
		return fmt.Errorf("sync history row: %w", err)
	}
	return nil
}

// ProcessPending sweeps rows still pending. It covers messages lost in transit.
func (w *SyncWorker) ProcessPending(ctx context.Context) (synced int, err error) {
	return w.processBatch(ctx, w.batchSize)
}

// StartupSyncCheck runs a larger sweep once when the worker boots.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, err := w.processBatch(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup sync completed", "synced", synced)
	return nil
}

// RunSweeper calls ProcessPending every interval until ctx is done.
func (w *SyncWorker) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Pending sweep failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) processBatch(ctx context.Context, limit int) (int, error) {
	pending, err := w.store.PendingPortfolioHistory(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending history: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending history rows", "count", len(pending))

	synced := 0
	for _, rec := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if err := w.syncRecord(ctx, rec); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync history row", "id", rec.ID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

func (w *SyncWorker) syncRecord(ctx context.Context, rec core.HistoryRecord) error {
	ref, err := w.mirror.AppendHistory(ctx, rec)
	if err != nil {
		w.metrics.HistoryEvent(metrics.EventSyncError)
		if markErr := w.store.MarkSyncError(ctx, rec.ID, err.Error()); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", "id", rec.ID, "error", markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	// the row is mirrored even if the status update fails
	if err := w.store.MarkSynced(ctx, rec.ID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced", "id", rec.ID, "error", err)
	}
	w.metrics.HistoryEvent(metrics.EventSynced)

	w.logger.InfoContext(ctx, "Synced history row",
		"id", rec.ID,
		"portfolio_id", rec.OwnerID,
		"date", core.FormatDate(rec.Date),
		"sheets_ref", ref)
	return nil
}
