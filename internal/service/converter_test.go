package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"money-transfers/internal/domain"
	apperrors "money-transfers/internal/errors"
)

func TestCurrencyConverter_SameCurrencySkipsLookup(t *testing.T) {
	rates := new(MockExchangeRateRepository)
	converter := NewCurrencyConverter(rates)
	amount := decimal.RequireFromString("12.345")

	for _, currency := range domain.Currencies() {
		t.Run(currency.String(), func(t *testing.T) {
			out, err := converter.Convert(context.Background(), currency, currency, amount)

			require.NoError(t, err)
			assert.True(t, amount.Equal(out))
			assert.Equal(t, amount.Exponent(), out.Exponent())
		})
	}
	rates.AssertNotCalled(t, "FindRate", mock.Anything, mock.Anything, mock.Anything)
}

func TestCurrencyConverter_MultipliesByStoredRate(t *testing.T) {
	rates := new(MockExchangeRateRepository)
	rates.On("FindRate", mock.Anything, domain.USD, domain.RUB).
		Return(&domain.ExchangeRate{From: domain.USD, To: domain.RUB, Rate: decimal.RequireFromString("90.123")}, nil)

	converter := NewCurrencyConverter(rates)
	out, err := converter.Convert(context.Background(), domain.USD, domain.RUB, decimal.RequireFromString("1.5"))

	require.NoError(t, err)
	assert.Equal(t, "135.1845", out.String())
	rates.AssertExpectations(t)
}

func TestCurrencyConverter_MissingRate(t *testing.T) {
	rates := new(MockExchangeRateRepository)
	rates.On("FindRate", mock.Anything, domain.GBP, domain.CHF).Return(nil, apperrors.ErrRateNotFound)

	converter := NewCurrencyConverter(rates)
	_, err := converter.Convert(context.Background(), domain.GBP, domain.CHF, decimal.NewFromInt(1))

	var conversion *ConversionError
	require.True(t, errors.As(err, &conversion))
	assert.Equal(t, domain.GBP, conversion.From)
	assert.Equal(t, domain.CHF, conversion.To)
	assert.Equal(t, "No exchange rate info for GBP->CHF currencies", err.Error())
}

func TestCurrencyConverter_RepositoryFailurePropagates(t *testing.T) {
	rates := new(MockExchangeRateRepository)
	dbErr := apperrors.NewAppError(apperrors.InternalError, "failed to get exchange rate")
	rates.On("FindRate", mock.Anything, domain.USD, domain.EUR).Return(nil, dbErr)

	converter := NewCurrencyConverter(rates)
	_, err := converter.Convert(context.Background(), domain.USD, domain.EUR, decimal.NewFromInt(1))

	assert.Same(t, dbErr, err)
}
