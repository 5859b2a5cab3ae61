package sheets

import (
	"context"

	"cryptofolio/internal/core"
)

// Ports for the history mirror.
type (
	// HistoryWriter appends one portfolio history row to the mirror.
	HistoryWriter interface {
		AppendHistory(ctx context.Context, r core.HistoryRecord) (rowRef string, err error)
	}

	// HistoryReader reads mirrored rows back. A portfolioID of 0 returns every row.
	HistoryReader interface {
		ReadHistory(ctx context.Context, portfolioID int64) ([]core.HistoryRecord, error)
	}

	HistoryMirror interface {
		HistoryWriter
		HistoryReader
	}
)

// Header is the first row the mirror sheet is expected to carry.
var Header = []string{"Date", "Portfolio", "History ID", "Total", "Net Spent", "Profit"}
