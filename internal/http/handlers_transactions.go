package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/core"
)

type createTransactionRequest struct {
	PortfolioID     int64            `json:"portfolioId" validate:"required,gt=0"`
	AssetID         int64            `json:"assetId" validate:"required,gt=0"`
	TransactionType string           `json:"transactionType" validate:"required,oneof=buy sell"`
	Quantity        *decimal.Decimal `json:"quantity" validate:"required"`
	Price           *decimal.Decimal `json:"price" validate:"required"`
}

type updateTransactionRequest struct {
	ID      int64 `json:"id" validate:"required,gt=0"`
	Updates struct {
		TransactionType *string          `json:"transactionType,omitempty" validate:"omitempty,oneof=buy sell"`
		Quantity        *decimal.Decimal `json:"quantity,omitempty"`
		Price           *decimal.Decimal `json:"price,omitempty"`
	} `json:"updates"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to create transaction", err)
		return
	}
	t, err := s.repo.CreateTransaction(r.Context(), core.Transaction{
		PortfolioID: req.PortfolioID,
		AssetID:     req.AssetID,
		Type:        core.TransactionType(req.TransactionType),
		Quantity:    *req.Quantity,
		Price:       *req.Price,
	})
	if err != nil {
		writeError(w, r, "Failed to create transaction", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toTransactionJSON(t))
}

func (s *Server) handleGetTransactionsByPortfolioID(w http.ResponseWriter, r *http.Request) {
	portfolioID, err := queryID(r, "portfolioId")
	if err != nil {
		writeError(w, r, "Failed to fetch transactions", err)
		return
	}
	ts, err := s.repo.ListTransactionsByPortfolio(r.Context(), portfolioID)
	if err != nil {
		writeError(w, r, "Failed to fetch transactions", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(ts, toTransactionJSON))
}

func (s *Server) handleGetTransactionsByAssetID(w http.ResponseWriter, r *http.Request) {
	assetID, err := queryID(r, "assetId")
	if err != nil {
		writeError(w, r, "Failed to fetch transactions", err)
		return
	}
	ts, err := s.repo.ListTransactionsByAsset(r.Context(), assetID)
	if err != nil {
		writeError(w, r, "Failed to fetch transactions", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(ts, toTransactionJSON))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to update transaction", err)
		return
	}
	upd := core.TransactionUpdate{Quantity: req.Updates.Quantity, Price: req.Updates.Price}
	if req.Updates.TransactionType != nil {
		tt := core.TransactionType(*req.Updates.TransactionType)
		upd.Type = &tt
	}
	t, err := s.repo.UpdateTransaction(r.Context(), req.ID, upd)
	if err != nil {
		writeError(w, r, "Failed to update transaction", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toTransactionJSON(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to delete transaction", err)
		return
	}
	if err := s.repo.DeleteTransaction(r.Context(), req.ID); err != nil {
		writeError(w, r, "Failed to delete transaction", err)
		return
	}
	writeMessage(w, r, "Transaction deleted successfully")
}

// Asset prices

type createAssetPriceRequest struct {
	AssetID int64            `json:"assetId" validate:"required,gt=0"`
	Price   *decimal.Decimal `json:"price" validate:"required"`
	// Date is optional; the quote is stamped with the current time when empty.
	Date string `json:"date,omitempty"`
}

func (s *Server) handleCreateAssetPrice(w http.ResponseWriter, r *http.Request) {
	var req createAssetPriceRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to create asset price", err)
		return
	}
	var date time.Time
	if req.Date != "" {
		d, err := core.ParseDate(req.Date)
		if err != nil {
			writeError(w, r, "Failed to create asset price", err)
			return
		}
		date = d
	}
	p, err := s.repo.CreateAssetPrice(r.Context(), core.AssetPrice{AssetID: req.AssetID, Price: *req.Price, Date: date})
	if err != nil {
		writeError(w, r, "Failed to create asset price", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toAssetPriceJSON(p))
}

func (s *Server) handleGetAssetPrices(w http.ResponseWriter, r *http.Request) {
	assetID, err := queryID(r, "assetId")
	if err != nil {
		writeError(w, r, "Failed to fetch asset prices", err)
		return
	}
	ps, err := s.repo.ListAssetPrices(r.Context(), assetID)
	if err != nil {
		writeError(w, r, "Failed to fetch asset prices", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(ps, toAssetPriceJSON))
}

func (s *Server) handleGetLatestAssetPrice(w http.ResponseWriter, r *http.Request) {
	assetID, err := queryID(r, "assetId")
	if err != nil {
		writeError(w, r, "Failed to fetch latest asset price", err)
		return
	}
	p, err := s.repo.LatestAssetPrice(r.Context(), assetID)
	if err != nil {
		writeError(w, r, "No price found for this asset", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toAssetPriceJSON(p))
}

func (s *Server) handleDeleteAssetPrice(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to delete asset price", err)
		return
	}
	if err := s.repo.DeleteAssetPrice(r.Context(), req.ID); err != nil {
		writeError(w, r, "Failed to delete asset price", err)
		return
	}
	writeMessage(w, r, "Asset price deleted successfully")
}
