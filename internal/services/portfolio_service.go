package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"cryptofolio/internal/amqp"
	"cryptofolio/internal/cache"
	"cryptofolio/internal/core"
	applog "cryptofolio/internal/log"
	"cryptofolio/internal/metrics"
	"cryptofolio/internal/storage"
	"cryptofolio/internal/timeseries"
)

const defaultSummaryConcurrency = 4

// PortfolioServiceOptions carries the optional collaborators of PortfolioService.
type PortfolioServiceOptions struct {
	Publisher      amqp.Publisher
	Cache          cache.Cache[[]timeseries.SummaryCard]
	Metrics        *metrics.Metrics
	Logger         *applog.Logger
	MaxConcurrency int
}

// PortfolioService builds the summary views and owns portfolio history writes,
// keeping the summary cache and the mirror queue in step with the database.
type PortfolioService struct {
	repo        *storage.SQLiteRepository
	publisher   amqp.Publisher
	cache       cache.Cache[[]timeseries.SummaryCard]
	metrics     *metrics.Metrics
	logger      *applog.Logger
	events      *applog.StructuredLogger
	concurrency int

	// genMu orders cache fills against invalidations. A fill started before
	// a write carries an older generation and is discarded.
	genMu       sync.Mutex
	generations map[int64]uint64
}

func NewPortfolioService(repo *storage.SQLiteRepository, opts PortfolioServiceOptions) *PortfolioService {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentPortfolio)
	concurrency := opts.MaxConcurrency
	if concurrency <= 0 {
		concurrency = defaultSummaryConcurrency
	}
	return &PortfolioService{
		repo:        repo,
		publisher:   opts.Publisher,
		cache:       opts.Cache,
		metrics:     opts.Metrics,
		logger:      logger,
		events:      applog.NewStructuredLogger(logger),
		concurrency: concurrency,
		generations: make(map[int64]uint64),
	}
}

func summaryKey(portfolioID int64, interval int) string {
	return summaryPrefix(portfolioID) + strconv.Itoa(interval)
}

func summaryPrefix(portfolioID int64) string {
	return "portfolio:" + strconv.FormatInt(portfolioID, 10) + ":"
}

// PortfolioSummary returns the Total, Net Spent and Profit cards of a portfolio.
func (s *PortfolioService) PortfolioSummary(ctx context.Context, portfolioID int64, interval int) ([]timeseries.SummaryCard, error) {
	if err := timeseries.ValidateInterval(interval); err != nil {
		return nil, err
	}
	key := summaryKey(portfolioID, interval)
	if s.cache != nil {
		if cards, ok := s.cache.Get(key); ok {
			s.metrics.SummaryServed(true)
			return cards, nil
		}
	}
	gen := s.generation(portfolioID)

	_, records, err := s.portfolioRecords(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	cards, err := timeseries.BuildPortfolioCards(records, interval)
	if err != nil {
		return nil, err
	}

	if !s.storeSummary(key, portfolioID, gen, cards) {
		s.logger.DebugContext(ctx, "Discarded summary built before a history write",
			applog.FieldPortfolioID, portfolioID)
	}
	s.metrics.SummaryServed(false)
	s.logger.DebugContext(ctx, "Portfolio summary built",
		applog.NewFields().WithSummary(portfolioID, interval).ToSlice()...)
	return cards, nil
}

// PortfolioWindow returns the aggregated points of a portfolio inside the interval.
func (s *PortfolioService) PortfolioWindow(ctx context.Context, portfolioID int64, interval int) (core.Portfolio, []timeseries.Point, error) {
	if err := timeseries.ValidateInterval(interval); err != nil {
		return core.Portfolio{}, nil, err
	}
	p, records, err := s.portfolioRecords(ctx, portfolioID)
	if err != nil {
		return core.Portfolio{}, nil, err
	}
	window, err := timeseries.SelectWindow(timeseries.AggregateByDate(records), interval)
	if err != nil {
		return core.Portfolio{}, nil, err
	}
	return p, window, nil
}

func (s *PortfolioService) portfolioRecords(ctx context.Context, portfolioID int64) (core.Portfolio, []timeseries.Record, error) {
	p, err := s.repo.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return core.Portfolio{}, nil, err
	}
	rows, err := s.repo.ListHistory(ctx, storage.PortfolioHistory, portfolioID)
	if err != nil {
		return core.Portfolio{}, nil, fmt.Errorf("load portfolio history: %w", err)
	}
	return p, timeseries.FromHistory(rows), nil
}

// HoldingSummaries returns one view per holding of the portfolio, in holding
// order. Histories are loaded concurrently.
func (s *PortfolioService) HoldingSummaries(ctx context.Context, portfolioID int64, interval int) ([]*timeseries.HoldingView, error) {
	if err := timeseries.ValidateInterval(interval); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}
	holdings, err := s.repo.ListHoldings(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	views := make([]*timeseries.HoldingView, len(holdings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, h := range holdings {
		g.Go(func() error {
			rows, err := s.repo.ListHistory(gctx, storage.HoldingsHistory, h.ID)
			if err != nil {
				return fmt.Errorf("load history of holding %d: %w", h.ID, err)
			}
			view := timeseries.NewHoldingView(h)
			view.LoadHistory(timeseries.FromHistory(rows))
			if err := view.ApplyInterval(interval); err != nil {
				return err
			}
			views[i] = view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// RecordPortfolioHistory stores a new history row and announces it to the
// mirror worker. A failed publish is logged; the pending sweep picks the row up.
func (s *PortfolioService) RecordPortfolioHistory(ctx context.Context, rec core.HistoryRecord) (core.HistoryRecord, error) {
	saved, err := s.repo.InsertHistory(ctx, storage.PortfolioHistory, rec)
	if err != nil {
		return core.HistoryRecord{}, err
	}
	s.invalidate(saved.OwnerID)
	s.metrics.HistoryEvent(metrics.EventRecorded)

	published := s.publish(ctx, saved)
	s.events.LogHistoryRecorded(ctx, saved.OwnerID, saved.ID, core.FormatDate(saved.Date), published)
	return saved, nil
}

func (s *PortfolioService) publish(ctx context.Context, rec core.HistoryRecord) bool {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not available, leaving row for the sweep", "id", rec.ID)
		return false
	}
	msg := amqp.NewHistorySyncMessage(rec.ID, rec.OwnerID, core.FormatDate(rec.Date), 1)
	if err := s.publisher.PublishHistorySync(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sync message", "id", rec.ID, "error", err)
		return false
	}
	s.metrics.HistoryEvent(metrics.EventPublished)
	return true
}

func (s *PortfolioService) UpdatePortfolioHistory(ctx context.Context, id int64, upd core.HistoryUpdate) (core.HistoryRecord, error) {
	rec, err := s.repo.UpdateHistory(ctx, storage.PortfolioHistory, id, upd)
	if err != nil {
		return core.HistoryRecord{}, err
	}
	s.invalidate(rec.OwnerID)
	return rec, nil
}

func (s *PortfolioService) DeletePortfolioHistory(ctx context.Context, id int64) error {
	rec, err := s.repo.GetHistory(ctx, storage.PortfolioHistory, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteHistory(ctx, storage.PortfolioHistory, id); err != nil {
		return err
	}
	s.invalidate(rec.OwnerID)
	return nil
}

// ClearPortfolioHistory removes every history row of the portfolio.
func (s *PortfolioService) ClearPortfolioHistory(ctx context.Context, portfolioID int64) (int64, error) {
	n, err := s.repo.ClearHistory(ctx, storage.PortfolioHistory, portfolioID)
	if err != nil {
		return 0, err
	}
	s.invalidate(portfolioID)
	return n, nil
}

// ReplacePortfolioHistory swaps the whole history of a portfolio in one transaction.
func (s *PortfolioService) ReplacePortfolioHistory(ctx context.Context, portfolioID int64, recs []core.HistoryRecord) error {
	if err := s.repo.ReplaceHistory(ctx, storage.PortfolioHistory, portfolioID, recs); err != nil {
		return err
	}
	s.invalidate(portfolioID)
	return nil
}

// Invalidate drops every cached summary of the portfolio.
func (s *PortfolioService) Invalidate(portfolioID int64) {
	s.invalidate(portfolioID)
}

func (s *PortfolioService) generation(portfolioID int64) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.generations[portfolioID]
}

// storeSummary caches cards unless the portfolio was written to since gen
// was read.
func (s *PortfolioService) storeSummary(key string, portfolioID int64, gen uint64, cards []timeseries.SummaryCard) bool {
	if s.cache == nil {
		return true
	}
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.generations[portfolioID] != gen {
		return false
	}
	s.cache.Set(key, cards)
	return true
}

func (s *PortfolioService) invalidate(portfolioID int64) {
	if s.cache == nil {
		return
	}
	s.genMu.Lock()
	s.generations[portfolioID]++
	n := s.cache.DeletePrefix(summaryPrefix(portfolioID))
	s.genMu.Unlock()
	if n > 0 {
		s.logger.Debug("Summary cache invalidated", applog.FieldPortfolioID, portfolioID, "entries", n)
	}
}
