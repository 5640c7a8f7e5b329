package domain

import (
	"context"

	"github.com/shopspring/decimal"

	"money-transfers/internal/errors"
)

// ExchangeRate converts From into To by multiplication. The inverse pair is
// stored independently and need not be reciprocal.
type ExchangeRate struct {
	From Currency        `json:"currency_code_from"`
	To   Currency        `json:"currency_code_to"`
	Rate decimal.Decimal `json:"rate"`
}

func (r *ExchangeRate) Validate() error {
	if !r.From.IsValid() || !r.To.IsValid() {
		return errors.ErrInvalidCurrency
	}
	if r.From == r.To {
		return errors.NewAppError(errors.InvalidInput, "exchange rate cannot have equal to and from currencies")
	}
	if !r.Rate.IsPositive() {
		return errors.NewAppError(errors.InvalidAmount, "rate must be positive")
	}
	return nil
}

type ExchangeRateRepository interface {
	CreateRate(ctx context.Context, rate *ExchangeRate) error
	FindRate(ctx context.Context, from, to Currency) (*ExchangeRate, error)
	UpdateRate(ctx context.Context, rate *ExchangeRate) error
	ListRates(ctx context.Context) ([]ExchangeRate, error)
}
