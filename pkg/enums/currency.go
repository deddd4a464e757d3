package enums

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the ISO 4217 code a plan is priced in.
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
)

var currencies = valueSet[Currency]{CurrencyEUR, CurrencyUSD, CurrencyGBP}

func (c Currency) String() string { return string(c) }

func (c Currency) IsValid() bool { return currencies.contains(c) }

// FormatMinor renders an amount held in minor units, e.g. 799 -> "7.99".
// Every supported currency has two decimal places.
func (c Currency) FormatMinor(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}

// ParseCurrency accepts any casing, e.g. "eur".
func ParseCurrency(value string) (Currency, error) {
	return currencies.parse("currency", strings.ToUpper(strings.TrimSpace(value)))
}
