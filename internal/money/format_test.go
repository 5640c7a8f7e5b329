package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestPlain(t *testing.T) {
	assert.Equal(t, "5.00 USD", Plain(decimal.NewFromInt(5), "USD"))
	assert.Equal(t, "0.13 EUR", Plain(decimal.RequireFromString("0.125"), "EUR"))
}

func TestLocaleFormatter_UnknownCodeFallsBack(t *testing.T) {
	f := NewFormatter(language.English)

	assert.Equal(t, "12.35 QQQ", f.Format(decimal.RequireFromString("12.345"), "QQQ"))
}

func TestLocaleFormatter_KnownCurrency(t *testing.T) {
	f := NewFormatter(language.English)

	out := f.Format(decimal.RequireFromString("1234.5"), "USD")
	assert.Contains(t, out, "$")
}
