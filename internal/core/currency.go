// Package core contains the domain types and the pure calculation layer:
// currency normalization and financial aggregation. It has no dependencies
// on storage, transport, or AI providers.
package core

import "strings"

// RateTable maps a currency code to its rate against the reference currency
// (1 unit of code = rate units of reference). Built once at startup and
// treated as read-only afterwards.
type RateTable map[string]float64

// DefaultRates holds the static bridge rates to USD (approx. Feb 2026).
var DefaultRates = RateTable{
	"USD": 1.0,
	"EUR": 1.04,
	"GBP": 1.25,
	"CHF": 1.12,
	"JPY": 0.0065,
	"THB": 0.029,
	"AUD": 0.63,
	"CAD": 0.71,
	"NOK": 0.089,
	"ISK": 0.0071,
}

// Normalizer converts amounts between currencies via the bridge rates.
// Unknown codes fall back to rate 1 (treated as the reference currency);
// a lossy default, not an error.
type Normalizer struct {
	rates RateTable
}

func NewNormalizer(rates RateTable) *Normalizer {
	return &Normalizer{rates: rates}
}

// Convert translates amount from one currency to another. When the two codes
// match after trimming and case-folding the input is returned untouched, so
// same-currency conversion never drifts.
func (n *Normalizer) Convert(amount float64, from, to string) float64 {
	f := strings.ToUpper(strings.TrimSpace(from))
	t := strings.ToUpper(strings.TrimSpace(to))
	if f == t {
		return amount
	}
	return amount * n.rate(f) / n.rate(t)
}

func (n *Normalizer) rate(code string) float64 {
	if r, ok := n.rates[code]; ok {
		return r
	}
	return 1
}
