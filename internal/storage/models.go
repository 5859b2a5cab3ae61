package storage

import (
	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt string
}

type Portfolio struct {
	ID        int64
	UserID    int64
	Name      string
	CreatedAt string
}

type Holding struct {
	ID          int64
	PortfolioID int64
	Name        string
	Category    string
	Sold        bool
	CreatedAt   string
}

type Asset struct {
	ID        int64
	HoldingID int64
	Symbol    string
	Name      string
}

type Transaction struct {
	ID              int64
	PortfolioID     int64
	AssetID         int64
	TransactionType string
	Quantity        decimal.Decimal
	Price           decimal.Decimal
	CreatedAt       string
}

type AssetPrice struct {
	ID      int64
	AssetID int64
	Price   decimal.Decimal
	Date    string
}

// History is a row of either portfolio_history or holdings_history.
// SyncStatus and SyncError are only populated for portfolio rows.
type History struct {
	ID         int64
	OwnerID    int64
	Date       string
	Total      decimal.Decimal
	NetSpent   decimal.Decimal
	Profit     decimal.Decimal
	SyncStatus string
	SyncError  string
}
