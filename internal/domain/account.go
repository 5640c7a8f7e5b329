package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID        int64           `json:"account_id"`
	Currency  Currency        `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type AccountRepository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, id int64) (*Account, error)
	// UpdateAccount writes the whole record, inserting it when missing.
	UpdateAccount(ctx context.Context, account *Account) error
}
