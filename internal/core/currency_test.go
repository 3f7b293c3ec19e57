package core

import (
	"math"
	"testing"
)

func TestConvertIdentity(t *testing.T) {
	n := NewNormalizer(DefaultRates)
	// Same-currency conversion must return the input bit-for-bit, including
	// codes the table does not know.
	for _, code := range []string{"USD", "EUR", "JPY", "XXX"} {
		got := n.Convert(123.456789, code, code)
		if got != 123.456789 {
			t.Fatalf("Convert(x, %s, %s) = %v, want exact identity", code, code, got)
		}
	}
	if got := n.Convert(10, " eur ", "EUR"); got != 10 {
		t.Fatalf("expected identity after trim/case normalization, got %v", got)
	}
}

func TestConvertBridgeRates(t *testing.T) {
	n := NewNormalizer(DefaultRates)
	cases := []struct {
		amount   float64
		from, to string
		want     float64
	}{
		{50, "EUR", "USD", 52},
		{100, "USD", "EUR", 100 / 1.04},
		{1000, "JPY", "USD", 6.5},
		{10, "GBP", "CHF", 10 * 1.25 / 1.12},
	}
	for i, tc := range cases {
		got := n.Convert(tc.amount, tc.from, tc.to)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("case %d: Convert(%v, %s, %s) = %v, want %v", i, tc.amount, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestConvertUnknownCodeDefaultsToReference(t *testing.T) {
	n := NewNormalizer(DefaultRates)
	// Unknown codes take rate 1, i.e. are treated as the reference currency.
	if got := n.Convert(42, "XYZ", "USD"); got != 42 {
		t.Fatalf("Convert(42, XYZ, USD) = %v, want 42", got)
	}
	if got := n.Convert(42, "XYZ", "EUR"); math.Abs(got-42/1.04) > 1e-9 {
		t.Fatalf("Convert(42, XYZ, EUR) = %v, want %v", got, 42/1.04)
	}
}
