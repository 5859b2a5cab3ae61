package http

import (
	"time"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/core"
)

// JSON shapes of stored rows. Column names follow the database.

type userJSON struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type portfolioJSON struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type holdingJSON struct {
	ID          int64     `json:"id"`
	PortfolioID int64     `json:"portfolio_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Sold        bool      `json:"sold"`
	CreatedAt   time.Time `json:"created_at"`
}

type assetJSON struct {
	ID        int64  `json:"id"`
	HoldingID int64  `json:"holding_id"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
}

type transactionJSON struct {
	ID              int64           `json:"id"`
	PortfolioID     int64           `json:"portfolio_id"`
	AssetID         int64           `json:"asset_id"`
	TransactionType string          `json:"transaction_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	CreatedAt       time.Time       `json:"created_at"`
}

type assetPriceJSON struct {
	ID      int64           `json:"id"`
	AssetID int64           `json:"asset_id"`
	Price   decimal.Decimal `json:"price"`
	Date    time.Time       `json:"date"`
}

type historyJSON struct {
	ID         int64           `json:"id"`
	OwnerID    int64           `json:"owner_id"`
	Date       string          `json:"date"`
	Total      decimal.Decimal `json:"total"`
	NetSpent   decimal.Decimal `json:"net_spent"`
	Profit     decimal.Decimal `json:"profit"`
	SyncStatus string          `json:"sync_status,omitempty"`
}

func toUserJSON(u core.User) userJSON {
	return userJSON{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toPortfolioJSON(p core.Portfolio) portfolioJSON {
	return portfolioJSON{ID: p.ID, UserID: p.UserID, Name: p.Name, CreatedAt: p.CreatedAt}
}

func toHoldingJSON(h core.Holding) holdingJSON {
	return holdingJSON{ID: h.ID, PortfolioID: h.PortfolioID, Name: h.Name, Category: h.Category, Sold: h.Sold, CreatedAt: h.CreatedAt}
}

func toAssetJSON(a core.Asset) assetJSON {
	return assetJSON{ID: a.ID, HoldingID: a.HoldingID, Symbol: a.Symbol, Name: a.Name}
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:              t.ID,
		PortfolioID:     t.PortfolioID,
		AssetID:         t.AssetID,
		TransactionType: string(t.Type),
		Quantity:        t.Quantity,
		Price:           t.Price,
		CreatedAt:       t.CreatedAt,
	}
}

func toAssetPriceJSON(p core.AssetPrice) assetPriceJSON {
	return assetPriceJSON{ID: p.ID, AssetID: p.AssetID, Price: p.Price, Date: p.Date}
}

func toHistoryJSON(r core.HistoryRecord) historyJSON {
	return historyJSON{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		Date:       core.FormatDate(r.Date),
		Total:      r.Total,
		NetSpent:   r.NetSpent,
		Profit:     r.Profit,
		SyncStatus: string(r.SyncStatus),
	}
}

// mapSlice converts every element with fn, never returning nil so empty
// lists encode as [].
func mapSlice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
