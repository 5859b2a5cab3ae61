package timeseries

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/core"
)

// State tracks how far a HoldingView has been computed.
type State int

const (
	StateUninitialized State = iota
	StateHistoryLoaded
	StateIntervalApplied
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHistoryLoaded:
		return "history_loaded"
	case StateIntervalApplied:
		return "interval_applied"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// HoldingView is the per-holding view model. Raw history is loaded once;
// applying a different interval recomputes the derived fields from it.
type HoldingView struct {
	ID          int64  `json:"id"`
	PortfolioID int64  `json:"portfolioId"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Sold        bool   `json:"sold"`

	State    State `json:"state"`
	Interval int   `json:"interval"`

	history []Record
	points  []Point

	Performance    []decimal.Decimal `json:"performance"`
	Dates          []string          `json:"dates"`
	Total          decimal.Decimal   `json:"total"`
	NetSpent       decimal.Decimal   `json:"netSpent"`
	Profit         decimal.Decimal   `json:"profit"`
	GainLoss       decimal.Decimal   `json:"gainLoss"`
	IntervalChange decimal.Decimal   `json:"intervalChange"`
	Change         Change            `json:"change"`
}

// NewHoldingView starts an uninitialized view for h.
func NewHoldingView(h core.Holding) *HoldingView {
	return &HoldingView{
		ID:          h.ID,
		PortfolioID: h.PortfolioID,
		Name:        h.Name,
		Category:    h.Category,
		Sold:        h.Sold,
		State:       StateUninitialized,
	}
}

// LoadHistory stores the raw history and resets any derived fields.
func (v *HoldingView) LoadHistory(records []Record) {
	v.history = append([]Record(nil), records...)
	v.points = AggregateByDate(v.history)
	v.resetDerived()
	v.State = StateHistoryLoaded
}

// HistoryLoaded reports whether LoadHistory has been called.
func (v *HoldingView) HistoryLoaded() bool {
	return v.State != StateUninitialized
}

// Window returns the points currently inside the applied interval.
func (v *HoldingView) Window() []Point {
	if v.State != StateIntervalApplied {
		return nil
	}
	window, _ := SelectWindow(v.points, v.Interval)
	return window
}

// ApplyInterval windows the loaded history and recomputes derived fields.
// On error the view is left untouched.
func (v *HoldingView) ApplyInterval(intervalDays int) error {
	if !v.HistoryLoaded() {
		return ErrHistoryNotLoaded
	}
	window, err := SelectWindow(v.points, intervalDays)
	if err != nil {
		return err
	}

	v.resetDerived()
	v.Interval = intervalDays
	v.State = StateIntervalApplied
	if len(window) == 0 {
		return nil
	}

	for _, p := range window {
		v.Performance = append(v.Performance, p.Total)
		v.Dates = append(v.Dates, p.Date.Format(CardDateLayout))
	}
	oldest, newest := window[0], window[len(window)-1]
	v.Total = newest.Total
	v.NetSpent = newest.NetSpent
	v.Profit = newest.Profit
	v.GainLoss = gainLoss(newest.Profit, newest.NetSpent)
	v.Change = ComputeChange(newest.Total, oldest.Total)
	v.IntervalChange = v.Change.RawPercent
	return nil
}

// LatestDate is the newest date in the loaded history, zero if none.
func (v *HoldingView) LatestDate() time.Time {
	if len(v.points) == 0 {
		return time.Time{}
	}
	return v.points[len(v.points)-1].Date
}

func (v *HoldingView) resetDerived() {
	v.Performance = []decimal.Decimal{}
	v.Dates = []string{}
	v.Total = decimal.Zero
	v.NetSpent = decimal.Zero
	v.Profit = decimal.Zero
	v.GainLoss = decimal.Zero
	v.IntervalChange = decimal.Zero
	v.Change = ComputeChange(decimal.Zero, decimal.Zero)
}

func gainLoss(profit, netSpent decimal.Decimal) decimal.Decimal {
	if netSpent.IsZero() {
		return decimal.Zero
	}
	return profit.Div(netSpent)
}
