package http

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"cryptofolio/internal/export"
)

func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	portfolioID, interval, err := s.viewParams(r)
	if err != nil {
		writeError(w, r, "Failed to build portfolio summary", err)
		return
	}
	cards, err := s.portfolio.PortfolioSummary(r.Context(), portfolioID, interval)
	if err != nil {
		writeError(w, r, "Failed to build portfolio summary", err)
		return
	}
	writeJSON(w, r, http.StatusOK, cards)
}

func (s *Server) handleHoldingSummaries(w http.ResponseWriter, r *http.Request) {
	portfolioID, interval, err := s.viewParams(r)
	if err != nil {
		writeError(w, r, "Failed to build holding summaries", err)
		return
	}
	views, err := s.portfolio.HoldingSummaries(r.Context(), portfolioID, interval)
	if err != nil {
		writeError(w, r, "Failed to build holding summaries", err)
		return
	}
	writeJSON(w, r, http.StatusOK, views)
}

func (s *Server) handleExportPortfolioHistory(w http.ResponseWriter, r *http.Request) {
	portfolioID, interval, err := s.viewParams(r)
	if err != nil {
		writeError(w, r, "Failed to export portfolio history", err)
		return
	}
	p, points, err := s.portfolio.PortfolioWindow(r.Context(), portfolioID, interval)
	if err != nil {
		writeError(w, r, "Failed to export portfolio history", err)
		return
	}

	// Build in memory so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := export.WriteHistory(&buf, p, points, interval); err != nil {
		writeError(w, r, "Failed to export portfolio history", err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(p, interval, time.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) viewParams(r *http.Request) (int64, int, error) {
	portfolioID, err := queryID(r, "portfolioId")
	if err != nil {
		return 0, 0, err
	}
	interval, err := queryInterval(r, s.defaultInterval)
	if err != nil {
		return 0, 0, err
	}
	return portfolioID, interval, nil
}
