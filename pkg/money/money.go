// Package money provides exact integer arithmetic over monetary
// amounts expressed in a currency's minor unit. All splitting and
// aggregation math in the ledger goes through this package so that no
// float ever touches an amount.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tripmate-app/tripmate-backend/pkg/enums"
)

var (
	// ErrOverflow is returned when an operation would exceed the int64
	// range of an Amount.
	ErrOverflow = errors.New("money: amount overflow")
	// ErrInvalidRatio is returned when ScaleRatio is called with a
	// non-positive denominator or a negative numerator.
	ErrInvalidRatio = errors.New("money: invalid ratio")
	// ErrInvalidAmount is returned by Parse when the input is not a
	// whole number of minor units for the currency.
	ErrInvalidAmount = errors.New("money: invalid amount")
)

// Amount is a quantity of money in a currency's minor unit.
type Amount int64

// Add returns a+b, failing on int64 overflow.
func Add(a, b Amount) (Amount, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Sub returns a-b, failing on int64 overflow.
func Sub(a, b Amount) (Amount, error) {
	if b == math.MinInt64 {
		return 0, ErrOverflow
	}
	return Add(a, -b)
}

// MustSum adds amounts that are already known to be in range, such as
// shares previously produced by a split. It panics on overflow, which
// indicates corrupted stored data rather than bad input.
func MustSum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		sum, err := Add(total, a)
		if err != nil {
			panic(err)
		}
		total = sum
	}
	return total
}

// ScaleRatio returns floor(a * num / den) using 128-bit intermediate
// precision, so a*num may exceed int64 without losing exactness.
func ScaleRatio(a Amount, num, den int64) (Amount, error) {
	if den <= 0 || num < 0 {
		return 0, ErrInvalidRatio
	}
	product := decimal.NewFromInt(int64(a)).Mul(decimal.NewFromInt(num))
	quotient, rem := product.QuoRem(decimal.NewFromInt(den), 0)
	if product.IsNegative() && !rem.IsZero() {
		quotient = quotient.Sub(decimal.NewFromInt(1))
	}
	if quotient.Cmp(decimal.NewFromInt(math.MaxInt64)) > 0 ||
		quotient.Cmp(decimal.NewFromInt(math.MinInt64)) < 0 {
		return 0, ErrOverflow
	}
	return Amount(quotient.IntPart()), nil
}

// Parse converts a decimal string such as "120000" or "45.50" into an
// Amount of the currency's minor unit. Fractions finer than the minor
// unit are rejected.
func Parse(value string, currency enums.Currency) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	scaled := d.Shift(int32(currency.MinorUnitExponent()))
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: %q has sub-unit precision for %s", ErrInvalidAmount, value, currency)
	}
	if scaled.Cmp(decimal.NewFromInt(math.MaxInt64)) > 0 || scaled.Cmp(decimal.NewFromInt(math.MinInt64)) < 0 {
		return 0, ErrOverflow
	}
	return Amount(scaled.IntPart()), nil
}

var printer = message.NewPrinter(language.English)

// Format renders an Amount as a grouped decimal string with the
// currency code appended, e.g. "1,250,000 VND" or "45.50 USD".
func Format(a Amount, currency enums.Currency) string {
	exp := currency.MinorUnitExponent()
	if exp == 0 {
		return printer.Sprintf("%d %s", int64(a), currency)
	}
	d := decimal.New(int64(a), -int32(exp))
	whole := d.IntPart()
	frac := d.Sub(decimal.NewFromInt(whole)).Abs().Shift(int32(exp)).IntPart()
	return fmt.Sprintf("%s.%0*d %s", printer.Sprintf("%d", whole), exp, frac, currency)
}
