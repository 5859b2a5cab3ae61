package http

import (
	"net/http"

	"cryptofolio/internal/core"
)

type idRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
}

type updateUserRequest struct {
	ID      int64 `json:"id" validate:"required,gt=0"`
	Updates struct {
		Username *string `json:"username,omitempty"`
		Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	} `json:"updates"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to create user", err)
		return
	}
	u, err := s.repo.CreateUser(r.Context(), core.User{Username: req.Username, Email: req.Email})
	if err != nil {
		writeError(w, r, "Failed to create user", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toUserJSON(u))
}

func (s *Server) handleGetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "id")
	if err != nil {
		writeError(w, r, "Failed to fetch user", err)
		return
	}
	u, err := s.repo.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, "User not found", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toUserJSON(u))
}

func (s *Server) handleGetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email, err := queryString(r, "email")
	if err != nil {
		writeError(w, r, "Failed to fetch user", err)
		return
	}
	u, err := s.repo.GetUserByEmail(r.Context(), email)
	if err != nil {
		writeError(w, r, "User not found", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toUserJSON(u))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to update user", err)
		return
	}
	u, err := s.repo.UpdateUser(r.Context(), req.ID, core.UserUpdate{
		Username: req.Updates.Username,
		Email:    req.Updates.Email,
	})
	if err != nil {
		writeError(w, r, "Failed to update user", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toUserJSON(u))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to delete user", err)
		return
	}
	if err := s.repo.DeleteUser(r.Context(), req.ID); err != nil {
		writeError(w, r, "Failed to delete user", err)
		return
	}
	writeMessage(w, r, "User deleted successfully")
}

// Portfolios

type createPortfolioRequest struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Name   string `json:"name" validate:"required,max=200"`
}

type renamePortfolioRequest struct {
	ID   int64  `json:"id" validate:"required,gt=0"`
	Name string `json:"name" validate:"required,max=200"`
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req createPortfolioRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to create portfolio", err)
		return
	}
	p, err := s.repo.CreatePortfolio(r.Context(), core.Portfolio{UserID: req.UserID, Name: req.Name})
	if err != nil {
		writeError(w, r, "Failed to create portfolio", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toPortfolioJSON(p))
}

// handleGetPortfoliosByUserID creates the default portfolio for users that
// have none, so the list is never empty for an existing user.
func (s *Server) handleGetPortfoliosByUserID(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r, "userId")
	if err != nil {
		writeError(w, r, "Failed to fetch portfolios", err)
		return
	}
	ps, err := s.repo.GetOrCreatePortfolios(r.Context(), userID)
	if err != nil {
		writeError(w, r, "Failed to fetch portfolios", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(ps, toPortfolioJSON))
}

func (s *Server) handleUpdatePortfolioName(w http.ResponseWriter, r *http.Request) {
	var req renamePortfolioRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to update portfolio", err)
		return
	}
	p, err := s.repo.RenamePortfolio(r.Context(), req.ID, req.Name)
	if err != nil {
		writeError(w, r, "Failed to update portfolio", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toPortfolioJSON(p))
}

func (s *Server) handleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := s.decodeJSON(r, &req); err != nil {
		writeError(w, r, "Failed to delete portfolio", err)
		return
	}
	if err := s.repo.DeletePortfolio(r.Context(), req.ID); err != nil {
		writeError(w, r, "Failed to delete portfolio", err)
		return
	}
	s.portfolio.Invalidate(req.ID)
	writeMessage(w, r, "Portfolio deleted successfully")
}
