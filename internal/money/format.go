// Package money renders amounts for logs and human readable messages.
// Stored values are never rounded; only the rendered text is.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DisplayScale is the number of fraction digits shown to people.
const DisplayScale = 2

type Formatter interface {
	Format(amount decimal.Decimal, code string) string
}

// FormatterFunc lets an ordinary function act as a Formatter.
type FormatterFunc func(amount decimal.Decimal, code string) string

func (f FormatterFunc) Format(amount decimal.Decimal, code string) string {
	return f(amount, code)
}

// LocaleFormatter formats with the currency symbol and grouping of a locale.
type LocaleFormatter struct {
	printer *message.Printer
}

func NewFormatter(tag language.Tag) *LocaleFormatter {
	return &LocaleFormatter{printer: message.NewPrinter(tag)}
}

// Format falls back to "amount CODE" when code is not an ISO 4217 currency.
func (f *LocaleFormatter) Format(amount decimal.Decimal, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Plain(amount, code)
	}
	return f.printer.Sprint(currency.Symbol(unit.Amount(amount.InexactFloat64())))
}

// Plain renders the amount at display scale followed by the code.
func Plain(amount decimal.Decimal, code string) string {
	return amount.StringFixed(DisplayScale) + " " + code
}
