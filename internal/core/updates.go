package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Partial updates. A nil field is left unchanged.
type (
	UserUpdate struct {
		Username *string
		Email    *string
	}

	HoldingUpdate struct {
		Name     *string
		Category *string
		Sold     *bool
	}

	AssetUpdate struct {
		Symbol *string
		Name   *string
	}

	TransactionUpdate struct {
		Type     *TransactionType
		Quantity *decimal.Decimal
		Price    *decimal.Decimal
	}

	HistoryUpdate struct {
		Date     *string
		Total    *decimal.Decimal
		NetSpent *decimal.Decimal
		Profit   *decimal.Decimal
	}
)

func (u UserUpdate) Validate() error {
	if u.Username == nil && u.Email == nil {
		return ErrNothingToUpdate
	}
	if u.Username != nil && strings.TrimSpace(*u.Username) == "" {
		return ErrEmptyUsername
	}
	if u.Email != nil {
		return ValidateEmail(*u.Email)
	}
	return nil
}

func (u HoldingUpdate) Validate() error {
	if u.Name == nil && u.Category == nil && u.Sold == nil {
		return ErrNothingToUpdate
	}
	if u.Name != nil {
		return ValidateName(*u.Name)
	}
	return nil
}

func (u AssetUpdate) Validate() error {
	if u.Symbol == nil && u.Name == nil {
		return ErrNothingToUpdate
	}
	if u.Symbol != nil && strings.TrimSpace(*u.Symbol) == "" {
		return ErrEmptySymbol
	}
	if u.Name != nil {
		return ValidateName(*u.Name)
	}
	return nil
}

func (u TransactionUpdate) Validate() error {
	if u.Type == nil && u.Quantity == nil && u.Price == nil {
		return ErrNothingToUpdate
	}
	if u.Type != nil {
		if err := u.Type.Validate(); err != nil {
			return err
		}
	}
	if u.Quantity != nil && !u.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if u.Price != nil && u.Price.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

func (u HistoryUpdate) Validate() error {
	if u.Date == nil && u.Total == nil && u.NetSpent == nil && u.Profit == nil {
		return ErrNothingToUpdate
	}
	if u.Date != nil {
		if _, err := ParseDate(*u.Date); err != nil {
			return fmt.Errorf("history update: %w", err)
		}
	}
	return nil
}
