package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/shopspring/decimal"

	"money-transfers/internal/domain"
	"money-transfers/internal/errors"
)

// ConversionError reports a missing rate for an ordered currency pair.
type ConversionError struct {
	From domain.Currency
	To   domain.Currency
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("No exchange rate info for %s->%s currencies", e.From, e.To)
}

// CurrencyConverter converts amounts with the stored rate of the exact pair.
// The inverse pair is never consulted.
type CurrencyConverter struct {
	rates domain.ExchangeRateRepository
}

func NewCurrencyConverter(rates domain.ExchangeRateRepository) *CurrencyConverter {
	return &CurrencyConverter{rates: rates}
}

// Convert returns amount*rate without rounding. Equal currencies return the
// amount unchanged and skip the lookup.
func (c *CurrencyConverter) Convert(ctx context.Context, from, to domain.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	rate, err := c.rates.FindRate(ctx, from, to)
	if err != nil {
		if stderrors.Is(err, errors.ErrRateNotFound) {
			return decimal.Zero, &ConversionError{From: from, To: to}
		}
		return decimal.Zero, err
	}

	return amount.Mul(rate.Rate), nil
}
