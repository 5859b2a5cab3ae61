package core

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionBuy  TransactionType = "buy"
	TransactionSell TransactionType = "sell"
)

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

// DefaultPortfolioName is given to the portfolio created for a user that has none.
const DefaultPortfolioName = "Portfolio 1"

type (
	TransactionType string
	SyncStatus      string

	User struct {
		ID        int64
		Username  string
		Email     string
		CreatedAt time.Time
	}

	Portfolio struct {
		ID        int64
		UserID    int64
		Name      string
		CreatedAt time.Time
	}

	Holding struct {
		ID          int64
		PortfolioID int64
		Name        string
		Category    string
		Sold        bool
		CreatedAt   time.Time
	}

	Asset struct {
		ID        int64
		HoldingID int64
		Symbol    string
		Name      string
	}

	Transaction struct {
		ID          int64
		PortfolioID int64
		AssetID     int64
		Type        TransactionType
		Quantity    decimal.Decimal
		Price       decimal.Decimal
		CreatedAt   time.Time
	}

	AssetPrice struct {
		ID      int64
		AssetID int64
		Price   decimal.Decimal
		Date    time.Time
	}

	// HistoryRecord is one dated row of portfolio or holding history.
	// OwnerID is the portfolio id or the holding id depending on the table.
	HistoryRecord struct {
		ID         int64
		OwnerID    int64
		Date       time.Time
		Total      decimal.Decimal
		NetSpent   decimal.Decimal
		Profit     decimal.Decimal
		SyncStatus SyncStatus
		SyncError  string
	}
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidID       = errors.New("invalid id")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyUsername   = errors.New("empty username")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrEmptySymbol     = errors.New("empty symbol")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrInvalidTxType   = errors.New("invalid transaction type")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNothingToUpdate = errors.New("no fields to update")
)

// IsValidationError reports whether err comes from domain validation.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidID, ErrEmptyName, ErrEmptyUsername, ErrInvalidEmail,
		ErrEmptySymbol, ErrInvalidQuantity, ErrInvalidPrice, ErrInvalidTxType,
		ErrInvalidDate, ErrInvalidAmount, ErrNothingToUpdate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if len(u.Username) > 100 {
		return fmt.Errorf("%w: username too long (max 100 characters)", ErrEmptyUsername)
	}
	return ValidateEmail(u.Email)
}

// ValidateEmail checks that s is a bare address like "a@b.c".
func ValidateEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, s)
	}
	return nil
}

func (p Portfolio) Validate() error {
	if p.UserID <= 0 {
		return fmt.Errorf("%w: user id %d", ErrInvalidID, p.UserID)
	}
	return ValidateName(p.Name)
}

func (h Holding) Validate() error {
	if h.PortfolioID <= 0 {
		return fmt.Errorf("%w: portfolio id %d", ErrInvalidID, h.PortfolioID)
	}
	return ValidateName(h.Name)
}

func (a Asset) Validate() error {
	if a.HoldingID <= 0 {
		return fmt.Errorf("%w: holding id %d", ErrInvalidID, a.HoldingID)
	}
	if strings.TrimSpace(a.Symbol) == "" {
		return ErrEmptySymbol
	}
	return ValidateName(a.Name)
}

func (t TransactionType) Validate() error {
	switch t {
	case TransactionBuy, TransactionSell:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidTxType, string(t))
}

func (t Transaction) Validate() error {
	if t.PortfolioID <= 0 {
		return fmt.Errorf("%w: portfolio id %d", ErrInvalidID, t.PortfolioID)
	}
	if t.AssetID <= 0 {
		return fmt.Errorf("%w: asset id %d", ErrInvalidID, t.AssetID)
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if !t.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if t.Price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// Cost is quantity times price, signed negative for sells.
func (t Transaction) Cost() decimal.Decimal {
	cost := t.Quantity.Mul(t.Price)
	if t.Type == TransactionSell {
		return cost.Neg()
	}
	return cost
}

// SignedQuantity is the quantity added to (buy) or removed from (sell) the position.
func (t Transaction) SignedQuantity() decimal.Decimal {
	if t.Type == TransactionSell {
		return t.Quantity.Neg()
	}
	return t.Quantity
}

func (p AssetPrice) Validate() error {
	if p.AssetID <= 0 {
		return fmt.Errorf("%w: asset id %d", ErrInvalidID, p.AssetID)
	}
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

func (r HistoryRecord) Validate() error {
	if r.OwnerID <= 0 {
		return fmt.Errorf("%w: owner id %d", ErrInvalidID, r.OwnerID)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// ValidateName rejects blank and overlong names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > 200 {
		return fmt.Errorf("%w: name too long (max 200 characters)", ErrEmptyName)
	}
	return nil
}
