package http

import (
	"net/http"

	"cryptofolio/internal/core"
)

type createHoldingRequest struct {
	PortfolioID int64  `json:"portfolioId" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required,max=200"`
	Category    string `json:"category" validate:"max=100"`
}

type updateHoldingRequest struct {
	ID      int64 `json:"id" validate:"required,gt=0"`
	Updates struct {
		Name     *string `json:"name,omitempty"`
		Category *string `json:"category,omitempty"`
		Sold     *bool   `json:"sold,omitempty"`
	} `json:"updates"`
}

func (s *Server) handleCreateHolding(w http.ResponseWriter, r *http.Request) {
	var req createHoldingRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to create holding", err)
		return
	}
	h, err := s.repo.CreateHolding(r.Context(), core.Holding{PortfolioID: req.PortfolioID, Name: req.Name, Category: req.Category})
	if err != nil {
		writeError(w, r, "Failed to create holding", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toHoldingJSON(h))
}

func (s *Server) handleGetHoldingsByPortfolioID(w http.ResponseWriter, r *http.Request) {
	portfolioID, err := queryID(r, "portfolioId")
	if err != nil {
		writeError(w, r, "Failed to fetch holdings", err)
		return
	}
	hs, err := s.repo.ListHoldings(r.Context(), portfolioID)
	if err != nil {
		writeError(w, r, "Failed to fetch holdings", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(hs, toHoldingJSON))
}

func (s *Server) handleUpdateHolding(w http.ResponseWriter, r *http.Request) {
	var req updateHoldingRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to update holding", err)
		return
	}
	h, err := s.repo.UpdateHolding(r.Context(), req.ID, core.HoldingUpdate{
		Name:     req.Updates.Name,
		Category: req.Updates.Category,
		Sold:     req.Updates.Sold,
	})
	if err != nil {
		writeError(w, r, "Failed to update holding", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toHoldingJSON(h))
}

func (s *Server) handleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to delete holding", err)
		return
	}
	if err := s.repo.DeleteHolding(r.Context(), req.ID); err != nil {
		writeError(w, r, "Failed to delete holding", err)
		return
	}
	writeMessage(w, r, "Holding deleted successfully")
}

// Assets

type createAssetRequest struct {
	HoldingID int64  `json:"holdingId" validate:"required,gt=0"`
	Symbol    string `json:"symbol" validate:"required,max=20"`
	Name      string `json:"name" validate:"required,max=200"`
}

type updateAssetRequest struct {
	ID      int64 `json:"id" validate:"required,gt=0"`
	Updates struct {
		Symbol *string `json:"symbol,omitempty"`
		Name   *string `json:"name,omitempty"`
	} `json:"updates"`
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to create asset", err)
		return
	}
	a, err := s.repo.CreateAsset(r.Context(), core.Asset{HoldingID: req.HoldingID, Symbol: req.Symbol, Name: req.Name})
	if err != nil {
		writeError(w, r, "Failed to create asset", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toAssetJSON(a))
}

func (s *Server) handleGetAssetsByHoldingID(w http.ResponseWriter, r *http.Request) {
	holdingID, err := queryID(r, "holdingId")
	if err != nil {
		writeError(w, r, "Failed to fetch assets", err)
		return
	}
	as, err := s.repo.ListAssets(r.Context(), holdingID)
	if err != nil {
		writeError(w, r, "Failed to fetch assets", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(as, toAssetJSON))
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	var req updateAssetRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to update asset", err)
		return
	}
	a, err := s.repo.UpdateAsset(r.Context(), req.ID, core.AssetUpdate{Symbol: req.Updates.Symbol, Name: req.Updates.Name})
	if err != nil {
		writeError(w, r, "Failed to update asset", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toAssetJSON(a))
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to delete asset", err)
		return
	}
	if err := s.repo.DeleteAsset(r.Context(), req.ID); err != nil {
		writeError(w, r, "Failed to delete asset", err)
		return
	}
	writeMessage(w, r, "Asset deleted successfully")
}
