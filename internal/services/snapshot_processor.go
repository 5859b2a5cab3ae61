package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/core"
	"cryptofolio/internal/metrics"
	"cryptofolio/internal/storage"
)

// Valuation is the computed value of a holding or a portfolio on one day.
type Valuation struct {
	Total    decimal.Decimal
	NetSpent decimal.Decimal
	Profit   decimal.Decimal
}

func (v Valuation) add(o Valuation) Valuation {
	return Valuation{
		Total:    v.Total.Add(o.Total),
		NetSpent: v.NetSpent.Add(o.NetSpent),
		Profit:   v.Profit.Add(o.Profit),
	}
}

func (v Valuation) isZero() bool {
	return v.Total.IsZero() && v.NetSpent.IsZero() && v.Profit.IsZero()
}

// SnapshotProcessor writes holding and portfolio history rows computed from
// transactions and the latest asset prices.
type SnapshotProcessor struct {
	storage   *storage.SQLiteRepository
	portfolio *PortfolioService
	checker   DuenessChecker
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewSnapshotProcessor(storage *storage.SQLiteRepository, portfolio *PortfolioService, checker DuenessChecker, m *metrics.Metrics, logger *slog.Logger) *SnapshotProcessor {
	if checker == nil {
		checker = DailyChecker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotProcessor{
		storage:   storage,
		portfolio: portfolio,
		checker:   checker,
		metrics:   m,
		logger:    logger,
	}
}

// ProcessDueSnapshots records a snapshot for every portfolio that is due on
// now's date and returns how many portfolio rows were written.
func (p *SnapshotProcessor) ProcessDueSnapshots(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil || p.portfolio == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	portfolios, err := p.storage.ListAllPortfolios(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list portfolios: %w", err)
	}

	day := core.TruncateDay(now)
	p.logger.InfoContext(ctx, "Processing portfolio snapshots",
		"portfolios", len(portfolios),
		"date", core.FormatDate(day))

	recorded := 0
	for _, pf := range portfolios {
		ok, err := p.SnapshotPortfolio(ctx, pf.ID, day)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to snapshot portfolio",
				"portfolio_id", pf.ID,
				"error", err)
			continue
		}
		if ok {
			recorded++
		}
	}

	p.logger.InfoContext(ctx, "Snapshot processing complete",
		"recorded", recorded,
		"total_checked", len(portfolios))
	return recorded, nil
}

// SnapshotPortfolio writes the rows of one portfolio for day. It reports
// false when the portfolio is not due or holds nothing.
func (p *SnapshotProcessor) SnapshotPortfolio(ctx context.Context, portfolioID int64, day time.Time) (bool, error) {
	day = core.TruncateDay(day)
	last, err := p.lastSnapshot(ctx, storage.PortfolioHistory, portfolioID)
	if err != nil {
		return false, err
	}
	if !p.checker.IsDue(last, day) {
		p.logger.DebugContext(ctx, "Snapshot not due", "portfolio_id", portfolioID, "last", core.FormatDate(last))
		return false, nil
	}

	holdings, err := p.storage.ListHoldings(ctx, portfolioID)
	if err != nil {
		return false, err
	}

	var sum Valuation
	for _, h := range holdings {
		v, err := p.ValueHolding(ctx, h.ID)
		if err != nil {
			return false, fmt.Errorf("value holding %d: %w", h.ID, err)
		}
		sum = sum.add(v)
		if v.isZero() {
			continue
		}
		if err := p.recordHolding(ctx, h.ID, day, v); err != nil {
			return false, err
		}
	}

	if sum.isZero() {
		return false, nil
	}
	_, err = p.portfolio.RecordPortfolioHistory(ctx, core.HistoryRecord{
		OwnerID:  portfolioID,
		Date:     day,
		Total:    sum.Total,
		NetSpent: sum.NetSpent,
		Profit:   sum.Profit,
	})
	if err != nil {
		return false, fmt.Errorf("record portfolio snapshot: %w", err)
	}
	p.metrics.HistoryEvent(metrics.EventSnapshot)
	return true, nil
}

// ValueHolding sums every asset of the holding: total is net quantity times
// the latest price, net spent is buys minus sells at their trade prices.
// Assets without a price contribute their cost but no value.
func (p *SnapshotProcessor) ValueHolding(ctx context.Context, holdingID int64) (Valuation, error) {
	assets, err := p.storage.ListAssets(ctx, holdingID)
	if err != nil {
		return Valuation{}, err
	}

	var v Valuation
	for _, a := range assets {
		txs, err := p.storage.ListTransactionsByAsset(ctx, a.ID)
		if err != nil {
			return Valuation{}, err
		}
		qty, spent := decimal.Zero, decimal.Zero
		for _, tx := range txs {
			qty = qty.Add(tx.SignedQuantity())
			spent = spent.Add(tx.Cost())
		}

		price, err := p.storage.LatestAssetPrice(ctx, a.ID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			p.logger.WarnContext(ctx, "No price for asset, valuing at zero", "asset_id", a.ID, "symbol", a.Symbol)
		case err != nil:
			return Valuation{}, err
		default:
			v.Total = v.Total.Add(qty.Mul(price.Price))
		}
		v.NetSpent = v.NetSpent.Add(spent)
	}
	v.Profit = v.Total.Sub(v.NetSpent)
	return v, nil
}

func (p *SnapshotProcessor) recordHolding(ctx context.Context, holdingID int64, day time.Time, v Valuation) error {
	existing, err := p.storage.HistoryByDate(ctx, storage.HoldingsHistory, holdingID, core.FormatDate(day))
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	_, err = p.storage.InsertHistory(ctx, storage.HoldingsHistory, core.HistoryRecord{
		OwnerID:  holdingID,
		Date:     day,
		Total:    v.Total,
		NetSpent: v.NetSpent,
		Profit:   v.Profit,
	})
	if err != nil {
		return fmt.Errorf("record holding snapshot: %w", err)
	}
	return nil
}

func (p *SnapshotProcessor) lastSnapshot(ctx context.Context, kind storage.HistoryKind, ownerID int64) (time.Time, error) {
	rows, err := p.storage.ListHistory(ctx, kind, ownerID)
	if err != nil {
		return time.Time{}, err
	}
	if len(rows) == 0 {
		return time.Time{}, nil
	}
	return rows[0].Date, nil
}
