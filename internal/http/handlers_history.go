package http

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/core"
	"cryptofolio/internal/storage"
)

// historyRoutes are the handlers of one history table. Portfolio rows go
// through the portfolio service so the summary cache and the mirror queue
// stay in step; holding rows are written directly.
type historyRoutes struct {
	name string

	create, list, byDate, update, delete, clear http.HandlerFunc
}

type historyOwnerRequest struct {
	PortfolioID int64 `json:"portfolioId,omitempty"`
	HoldingsID  int64 `json:"holdingsId,omitempty"`
}

func (o historyOwnerRequest) owner(kind storage.HistoryKind) int64 {
	if kind == storage.HoldingsHistory {
		return o.HoldingsID
	}
	return o.PortfolioID
}

type createHistoryRequest struct {
	historyOwnerRequest
	Date     string          `json:"date" validate:"required"`
	Total    decimal.Decimal `json:"total"`
	NetSpent decimal.Decimal `json:"netSpent"`
	Profit   decimal.Decimal `json:"profit"`
}

type updateHistoryRequest struct {
	ID      int64 `json:"id" validate:"required,gt=0"`
	Updates struct {
		Date     *string          `json:"date,omitempty"`
		Total    *decimal.Decimal `json:"total,omitempty"`
		NetSpent *decimal.Decimal `json:"netSpent,omitempty"`
		Profit   *decimal.Decimal `json:"profit,omitempty"`
	} `json:"updates"`
}

// historyWriter is the write path of one history table.
type historyWriter struct {
	insert func(context.Context, core.HistoryRecord) (core.HistoryRecord, error)
	update func(context.Context, int64, core.HistoryUpdate) (core.HistoryRecord, error)
	delete func(context.Context, int64) error
	clear  func(context.Context, int64) (int64, error)
}

func (s *Server) portfolioHistoryRoutes() historyRoutes {
	return s.historyRoutes("PortfolioHistory", storage.PortfolioHistory, "portfolioId", historyWriter{
		insert: s.portfolio.RecordPortfolioHistory,
		update: s.portfolio.UpdatePortfolioHistory,
		delete: s.portfolio.DeletePortfolioHistory,
		clear:  s.portfolio.ClearPortfolioHistory,
	})
}

func (s *Server) holdingsHistoryRoutes() historyRoutes {
	kind := storage.HoldingsHistory
	return s.historyRoutes("HoldingsHistory", kind, "holdingsId", historyWriter{
		insert: func(ctx context.Context, rec core.HistoryRecord) (core.HistoryRecord, error) {
			return s.repo.InsertHistory(ctx, kind, rec)
		},
		update: func(ctx context.Context, id int64, upd core.HistoryUpdate) (core.HistoryRecord, error) {
			return s.repo.UpdateHistory(ctx, kind, id, upd)
		},
		delete: func(ctx context.Context, id int64) error {
			return s.repo.DeleteHistory(ctx, kind, id)
		},
		clear: func(ctx context.Context, ownerID int64) (int64, error) {
			return s.repo.ClearHistory(ctx, kind, ownerID)
		},
	})
}

func (s *Server) historyRoutes(name string, kind storage.HistoryKind, ownerParam string, wr historyWriter) historyRoutes {
	label := kind.String()
	return historyRoutes{
		name: name,

		create: func(w http.ResponseWriter, r *http.Request) {
			var req createHistoryRequest
			if err := s.decodeJSON(r, &req); err != nil {
				writeError(w, r, "Failed to create "+label, err)
				return
			}
			date, err := core.ParseDate(req.Date)
			if err != nil {
				writeError(w, r, "Failed to create "+label, err)
				return
			}
			rec, err := wr.insert(r.Context(), core.HistoryRecord{
				OwnerID:  req.owner(kind),
				Date:     date,
				Total:    req.Total,
				NetSpent: req.NetSpent,
				Profit:   req.Profit,
			})
			if err != nil {
				writeError(w, r, "Failed to create "+label, err)
				return
			}
			writeJSON(w, r, http.StatusCreated, toHistoryJSON(rec))
		},

		list: func(w http.ResponseWriter, r *http.Request) {
			ownerID, err := queryID(r, ownerParam)
			if err != nil {
				writeError(w, r, "Failed to fetch "+label, err)
				return
			}
			rows, err := s.repo.ListHistory(r.Context(), kind, ownerID)
			if err != nil {
				writeError(w, r, "Failed to fetch "+label, err)
				return
			}
			writeJSON(w, r, http.StatusOK, mapSlice(rows, toHistoryJSON))
		},

		byDate: func(w http.ResponseWriter, r *http.Request) {
			ownerID, err := queryID(r, ownerParam)
			if err != nil {
				writeError(w, r, "Failed to fetch "+label, err)
				return
			}
			raw, err := queryString(r, "date")
			if err != nil {
				writeError(w, r, "Failed to fetch "+label, err)
				return
			}
			date, err := core.ParseDate(raw)
			if err != nil {
				writeError(w, r, "Failed to fetch "+label, err)
				return
			}
			rows, err := s.repo.HistoryByDate(r.Context(), kind, ownerID, core.FormatDate(date))
			if err != nil {
				writeError(w, r, "Failed to fetch "+label, err)
				return
			}
			writeJSON(w, r, http.StatusOK, mapSlice(rows, toHistoryJSON))
		},

		update: func(w http.ResponseWriter, r *http.Request) {
			var req updateHistoryRequest
			if err := s.decodeJSON(r, &req); err != nil {
				writeError(w, r, "Failed to update "+label, err)
				return
			}
			rec, err := wr.update(r.Context(), req.ID, core.HistoryUpdate{
				Date:     req.Updates.Date,
				Total:    req.Updates.Total,
				NetSpent: req.Updates.NetSpent,
				Profit:   req.Updates.Profit,
			})
			if err != nil {
				writeError(w, r, "Failed to update "+label, err)
				return
			}
			writeJSON(w, r, http.StatusOK, toHistoryJSON(rec))
		},

		delete: func(w http.ResponseWriter, r *http.Request) {
			var req idRequest
			if err := s.decodeJSON(r, &req); err != nil {
				writeError(w, r, "Failed to delete "+label, err)
				return
			}
			if err := wr.delete(r.Context(), req.ID); err != nil {
				writeError(w, r, "Failed to delete "+label, err)
				return
			}
			writeMessage(w, r, "History entry deleted successfully")
		},

		clear: func(w http.ResponseWriter, r *http.Request) {
			var req historyOwnerRequest
			if err := s.decodeJSON(r, &req); err != nil {
				writeError(w, r, "Failed to clear "+label, err)
				return
			}
			ownerID := req.owner(kind)
			if ownerID <= 0 {
				writeError(w, r, "Failed to clear "+label, newBadRequest(core.ErrInvalidID))
				return
			}
			n, err := wr.clear(r.Context(), ownerID)
			if err != nil {
				writeError(w, r, "Failed to clear "+label, err)
				return
			}
			writeJSON(w, r, http.StatusOK, struct {
				Message string `json:"message"`
				Deleted int64  `json:"deleted"`
			}{Message: "History cleared successfully", Deleted: n})
		},
	}
}
