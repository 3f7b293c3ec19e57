package core

import (
	"math"
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateSingleCurrency(t *testing.T) {
	n := NewNormalizer(DefaultRates)
	expenses := []Expense{
		{Amount: 100, Currency: "USD", Category: CategoryFood},
		{Amount: 40, Currency: "USD", Category: CategoryFood},
		{Amount: 60, Currency: "USD", Category: CategoryTransport},
	}
	s := Aggregate(expenses, Trip{}, n, "USD")

	if s.Total != 200 {
		t.Fatalf("Total = %v, want 200", s.Total)
	}
	// With one currency the category buckets sum to the plain total.
	var bucketSum float64
	for _, v := range s.ByCategory {
		bucketSum += v
	}
	if bucketSum != s.Total {
		t.Fatalf("sum of buckets = %v, want %v", bucketSum, s.Total)
	}
	if s.ByCategory[CategoryFood] != 140 {
		t.Fatalf("food bucket = %v, want 140", s.ByCategory[CategoryFood])
	}
	if len(s.Currencies) != 1 || s.Currencies[0] != "USD" {
		t.Fatalf("Currencies = %v, want [USD]", s.Currencies)
	}
}

func TestAggregateMixedCurrencies(t *testing.T) {
	n := NewNormalizer(DefaultRates)
	expenses := []Expense{
		{Amount: 100, Currency: "USD", Category: CategoryFood},
		{Amount: 50, Currency: "EUR", Category: CategoryTransport},
	}
	s := Aggregate(expenses, Trip{}, n, "USD")

	if want := 100 + 50*1.04; math.Abs(s.TotalRef-want) > 1e-9 {
		t.Fatalf("TotalRef = %v, want %v", s.TotalRef, want)
	}
	// Buckets stay in original currency, unconverted.
	if s.ByCategory[CategoryTransport] != 50 {
		t.Fatalf("transport bucket = %v, want 50", s.ByCategory[CategoryTransport])
	}
	if len(s.Currencies) != 2 {
		t.Fatalf("Currencies = %v, want two codes", s.Currencies)
	}
}

func TestAggregateTripDays(t *testing.T) {
	n := NewNormalizer(DefaultRates)
	cases := []struct {
		start, end time.Time
		want       int
	}{
		{date(2026, 3, 1), date(2026, 3, 5), 5},
		{date(2026, 3, 1), date(2026, 3, 1), 1}, // same-day trip counts one day
		{date(2025, 12, 30), date(2026, 1, 2), 4},
	}
	for i, tc := range cases {
		s := Aggregate(nil, Trip{StartDate: tc.start, EndDate: tc.end}, n, "USD")
		if s.TripDays != tc.want {
			t.Fatalf("case %d: TripDays = %d, want %d", i, s.TripDays, tc.want)
		}
	}

	// Unknown dates leave TripDays and DailyAverage unset.
	s := Aggregate(nil, Trip{StartDate: date(2026, 3, 1)}, n, "USD")
	if s.TripDays != 0 || s.DailyAverage != 0 {
		t.Fatalf("open-ended trip: TripDays=%d DailyAverage=%v, want zero", s.TripDays, s.DailyAverage)
	}
}

func TestAggregateZeroExpenses(t *testing.T) {
	n := NewNormalizer(DefaultRates)
	trip := Trip{StartDate: date(2026, 3, 1), EndDate: date(2026, 3, 5)}
	s := Aggregate(nil, trip, n, "USD")

	if s.Total != 0 || s.TotalRef != 0 {
		t.Fatalf("totals = %v/%v, want 0/0", s.Total, s.TotalRef)
	}
	if s.TripDays != 5 {
		t.Fatalf("TripDays = %d, want 5", s.TripDays)
	}
	if s.DailyAverage != 0 {
		t.Fatalf("DailyAverage = %v, want 0", s.DailyAverage)
	}
	if s.TopExpense != nil {
		t.Fatalf("TopExpense = %+v, want nil", s.TopExpense)
	}
	if len(s.UnusedCategories) != len(Categories) {
		t.Fatalf("UnusedCategories = %v, want all five", s.UnusedCategories)
	}
}

func TestAggregateUnusedCategoriesCoverAll(t *testing.T) {
	n := NewNormalizer(DefaultRates)
	cases := [][]Expense{
		nil,
		{{Amount: 1, Currency: "USD", Category: CategoryFood}},
		{
			{Amount: 1, Currency: "USD", Category: CategoryFood},
			{Amount: 2, Currency: "USD", Category: CategoryActivities},
			{Amount: 3, Currency: "USD", Category: CategoryOther},
		},
	}
	for i, expenses := range cases {
		s := Aggregate(expenses, Trip{}, n, "USD")
		if len(s.UnusedCategories)+len(s.ByCategory) != len(Categories) {
			t.Fatalf("case %d: unused=%d used=%d, want them to cover all %d categories",
				i, len(s.UnusedCategories), len(s.ByCategory), len(Categories))
		}
		// Fixed ordering: each unused entry appears in Categories order.
		pos := -1
		for _, u := range s.UnusedCategories {
			found := -1
			for j, c := range Categories {
				if c == u {
					found = j
				}
			}
			if found <= pos {
				t.Fatalf("case %d: UnusedCategories out of order: %v", i, s.UnusedCategories)
			}
			pos = found
		}
	}
}

func TestAggregateTopExpenseTieKeepsFirst(t *testing.T) {
	n := NewNormalizer(DefaultRates)
	expenses := []Expense{
		{Amount: 30, Currency: "USD", Category: CategoryFood, Notes: "first"},
		{Amount: 30, Currency: "USD", Category: CategoryOther, Notes: "second"},
	}
	s := Aggregate(expenses, Trip{}, n, "USD")
	if s.TopExpense == nil || s.TopExpense.Notes != "first" {
		t.Fatalf("TopExpense = %+v, want the first of the tied pair", s.TopExpense)
	}
}

func TestAggregateTopExpenseComparesInReferenceCurrency(t *testing.T) {
	n := NewNormalizer(DefaultRates)
	expenses := []Expense{
		{Amount: 100, Currency: "JPY", Category: CategoryFood},   // 0.65 USD
		{Amount: 10, Currency: "EUR", Category: CategoryOther},   // 10.40 USD
		{Amount: 11, Currency: "USD", Category: CategoryOther},   // 11.00 USD
	}
	s := Aggregate(expenses, Trip{}, n, "USD")
	if s.TopExpense == nil || s.TopExpense.Currency != "USD" {
		t.Fatalf("TopExpense = %+v, want the 11 USD expense", s.TopExpense)
	}
}
