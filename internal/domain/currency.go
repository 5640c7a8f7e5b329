package domain

import "strings"

// Currency is an ISO 4217 code from the supported set.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	RUB Currency = "RUB"
	CHF Currency = "CHF"
)

var supportedCurrencies = map[Currency]struct{}{
	USD: {},
	EUR: {},
	GBP: {},
	RUB: {},
	CHF: {},
}

// Currencies returns every supported currency.
func Currencies() []Currency {
	return []Currency{USD, EUR, GBP, RUB, CHF}
}

func (c Currency) IsValid() bool {
	_, ok := supportedCurrencies[c]
	return ok
}

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency accepts a code in any letter case.
func ParseCurrency(s string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.IsValid()
}
