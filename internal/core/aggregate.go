package core

import (
	"strings"
	"time"
)

// Summary is the derived aggregation over a set of expenses. It is computed
// per request and never persisted.
type Summary struct {
	// Total is the plain sum of amounts in their original currencies.
	Total float64
	// TotalRef is the sum converted into the reference currency.
	TotalRef float64
	// RefCurrency names the currency TotalRef and DailyAverage are in.
	RefCurrency string
	// Currencies holds the distinct currency codes present, case-normalized,
	// in first-occurrence order.
	Currencies []string
	// ByCategory sums amounts per category in their original currencies.
	// No conversion happens inside a bucket even when currencies mix; only
	// TotalRef is normalized. Kept as observed behavior, not reconciled.
	ByCategory map[Category]float64
	// TripDays counts calendar days from start to end inclusive.
	// Zero when either date is unknown.
	TripDays int
	// DailyAverage is TotalRef / TripDays, zero when TripDays is unknown.
	DailyAverage float64
	// TopExpense points at the expense with the largest reference-currency
	// amount; ties keep the first occurrence. Nil when there are no expenses.
	TopExpense *Expense
	// UnusedCategories lists categories with no expenses, in fixed order.
	UnusedCategories []Category
}

// Aggregate computes the Summary for a trip's expenses. The trip's dates may
// be zero; expenses may be empty.
func Aggregate(expenses []Expense, trip Trip, n *Normalizer, refCurrency string) Summary {
	s := Summary{
		RefCurrency: refCurrency,
		ByCategory:  make(map[Category]float64),
	}

	seen := make(map[string]bool)
	var topRef float64
	for i := range expenses {
		e := &expenses[i]
		s.Total += e.Amount
		s.ByCategory[e.Category] += e.Amount

		code := strings.ToUpper(strings.TrimSpace(e.Currency))
		if !seen[code] {
			seen[code] = true
			s.Currencies = append(s.Currencies, code)
		}

		ref := n.Convert(e.Amount, e.Currency, refCurrency)
		s.TotalRef += ref
		if s.TopExpense == nil || ref > topRef {
			s.TopExpense = e
			topRef = ref
		}
	}

	if !trip.StartDate.IsZero() && !trip.EndDate.IsZero() {
		s.TripDays = tripDays(trip.StartDate, trip.EndDate)
		if s.TripDays > 0 {
			s.DailyAverage = s.TotalRef / float64(s.TripDays)
		}
	}

	for _, c := range Categories {
		if _, ok := s.ByCategory[c]; !ok {
			s.UnusedCategories = append(s.UnusedCategories, c)
		}
	}

	return s
}

// tripDays counts days between two dates, inclusive of both endpoints.
func tripDays(start, end time.Time) int {
	start = start.Truncate(24 * time.Hour)
	end = end.Truncate(24 * time.Hour)
	return int(end.Sub(start)/(24*time.Hour)) + 1
}
