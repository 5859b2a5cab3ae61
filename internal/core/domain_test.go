package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUserValidate(t *testing.T) {
	cases := []struct {
		name string
		user User
		err  error
	}{
		{"ok", User{Username: "alice", Email: "alice@example.com"}, nil},
		{"empty username", User{Username: "  ", Email: "alice@example.com"}, ErrEmptyUsername},
		{"bad email", User{Username: "alice", Email: "not-an-email"}, ErrInvalidEmail},
		{"display name email", User{Username: "alice", Email: "Alice <alice@example.com>"}, ErrInvalidEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.user.Validate()
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		PortfolioID: 1,
		AssetID:     2,
		Type:        TransactionBuy,
		Quantity:    decimal.NewFromFloat(0.5),
		Price:       decimal.NewFromInt(30000),
	}
	assert.NoError(t, good.Validate())

	bad := good
	bad.Type = "swap"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidTxType)

	bad = good
	bad.Quantity = decimal.Zero
	assert.ErrorIs(t, bad.Validate(), ErrInvalidQuantity)

	bad = good
	bad.Price = decimal.NewFromInt(-1)
	assert.ErrorIs(t, bad.Validate(), ErrInvalidPrice)

	bad = good
	bad.AssetID = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidID)
}

func TestTransactionCost(t *testing.T) {
	buy := Transaction{Type: TransactionBuy, Quantity: decimal.NewFromInt(2), Price: decimal.NewFromInt(10)}
	sell := Transaction{Type: TransactionSell, Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(15)}

	assert.True(t, buy.Cost().Equal(decimal.NewFromInt(20)))
	assert.True(t, sell.Cost().Equal(decimal.NewFromInt(-15)))
	assert.True(t, sell.SignedQuantity().Equal(decimal.NewFromInt(-1)))
}

func TestHistoryRecordValidate(t *testing.T) {
	assert.NoError(t, HistoryRecord{OwnerID: 1, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}.Validate())
	assert.ErrorIs(t, HistoryRecord{OwnerID: 1}.Validate(), ErrInvalidDate)
	assert.ErrorIs(t, HistoryRecord{Date: time.Now()}.Validate(), ErrInvalidID)
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(ErrEmptyName))
	assert.True(t, IsValidationError(User{}.Validate()))
	assert.False(t, IsValidationError(ErrNotFound))
	assert.False(t, IsValidationError(nil))
}
