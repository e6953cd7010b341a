package usecase

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money renders whole-unit amounts with locale grouping and no decimals.
type Money struct {
	Currency string
	Lang     language.Tag
}

func NewMoney(currency string) Money {
	return Money{Currency: currency, Lang: language.English}
}

// Group formats n with thousands separators, e.g. 60000 -> "60,000".
func (m Money) Group(n int64) string {
	return message.NewPrinter(m.Lang).Sprintf("%d", n)
}

// Format prefixes the grouped amount with the currency code.
func (m Money) Format(n int64) string {
	if m.Currency == "" {
		return m.Group(n)
	}
	return m.Currency + " " + m.Group(n)
}
