package money

import (
	"errors"
	"math"
	"testing"

	"github.com/tripmate-app/tripmate-backend/pkg/enums"
)

func TestAddOverflow(t *testing.T) {
	if _, err := Add(math.MaxInt64, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	sum, err := Add(40, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum != 42 {
		t.Fatalf("expected 42, got %d", sum)
	}
}

func TestSubOverflow(t *testing.T) {
	if _, err := Sub(0, math.MinInt64); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	diff, err := Sub(10, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff != 6 {
		t.Fatalf("expected 6, got %d", diff)
	}
}

func TestScaleRatio(t *testing.T) {
	tests := []struct {
		name    string
		amount  Amount
		num     int64
		den     int64
		want    Amount
		wantErr error
	}{
		{name: "exact thirds floor", amount: 100, num: 1, den: 3, want: 33},
		{name: "basis points", amount: 10000, num: 3333, den: 10000, want: 3333},
		{name: "large product exceeds int64", amount: math.MaxInt64 / 2, num: 4, den: 8, want: math.MaxInt64 / 4},
		{name: "zero denominator", amount: 100, num: 1, den: 0, wantErr: ErrInvalidRatio},
		{name: "negative numerator", amount: 100, num: -1, den: 3, wantErr: ErrInvalidRatio},
		{name: "quotient overflow", amount: math.MaxInt64, num: 2, den: 1, wantErr: ErrOverflow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ScaleRatio(tc.amount, tc.num, tc.den)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		currency enums.Currency
		want     Amount
		wantErr  bool
	}{
		{name: "zero decimal currency", value: "120000", currency: enums.CurrencyVND, want: 120000},
		{name: "two decimal currency", value: "45.50", currency: enums.CurrencyUSD, want: 4550},
		{name: "fraction rejected for VND", value: "120.5", currency: enums.CurrencyVND, wantErr: true},
		{name: "sub cent rejected", value: "45.505", currency: enums.CurrencyUSD, wantErr: true},
		{name: "garbage rejected", value: "abc", currency: enums.CurrencyVND, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.value, tc.currency)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected parse error for %q", tc.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	if got := Format(1250000, enums.CurrencyVND); got != "1,250,000 VND" {
		t.Fatalf("unexpected VND format %q", got)
	}
	if got := Format(4550, enums.CurrencyUSD); got != "45.50 USD" {
		t.Fatalf("unexpected USD format %q", got)
	}
	if got := Format(405, enums.CurrencyUSD); got != "4.05 USD" {
		t.Fatalf("unexpected USD format %q", got)
	}
}

func TestMustSum(t *testing.T) {
	if got := MustSum(10, 20, 12); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}
