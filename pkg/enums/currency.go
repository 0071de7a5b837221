package enums

import "fmt"

// Currency represents supported monetary denominations for trip expenses.
type Currency string

const (
	CurrencyVND Currency = "VND"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyJPY Currency = "JPY"
	CurrencyKRW Currency = "KRW"
)

var validCurrencies = []Currency{
	CurrencyVND,
	CurrencyUSD,
	CurrencyEUR,
	CurrencyJPY,
	CurrencyKRW,
}

// zeroDecimalCurrencies have no fractional minor unit.
var zeroDecimalCurrencies = map[Currency]bool{
	CurrencyVND: true,
	CurrencyJPY: true,
	CurrencyKRW: true,
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the currency is recognized.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// MinorUnitExponent returns the number of decimal places of the
// currency's minor unit.
func (c Currency) MinorUnitExponent() int {
	if zeroDecimalCurrencies[c] {
		return 0
	}
	return 2
}

// ParseCurrency converts a raw string into a Currency.
func ParseCurrency(value string) (Currency, error) {
	for _, candidate := range validCurrencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
