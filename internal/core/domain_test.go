package core

import (
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
	}{
		{"food", CategoryFood},
		{" Transport ", CategoryTransport},
		{"ACCOMMODATION", CategoryAccommodation},
		{"groceries", CategoryOther},
		{"", CategoryOther},
	}
	for i, tc := range cases {
		if got := ParseCategory(tc.in); got != tc.want {
			t.Fatalf("case %d: ParseCategory(%q) = %q, want %q", i, tc.in, got, tc.want)
		}
	}
}

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"EUR", "EUR"},
		{"chf", "CHF"},
		{" thb ", "THB"},
		{"BTC", "USD"},
		{"", "USD"},
	}
	for i, tc := range cases {
		if got := ParseCurrency(tc.in); got != tc.want {
			t.Fatalf("case %d: ParseCurrency(%q) = %q, want %q", i, tc.in, got, tc.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	good := []struct {
		in   string
		want float64
	}{
		{"12.34", 12.34},
		{"12,34", 12.34},
		{" 50 ", 50},
	}
	for i, tc := range good {
		got, err := ParseAmount(tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("case %d: ParseAmount(%q) = %v, %v; want %v", i, tc.in, got, err, tc.want)
		}
	}

	for i, in := range []string{"", "abc", "-5", "0", "NaN"} {
		if _, err := ParseAmount(in); err == nil {
			t.Fatalf("case %d: ParseAmount(%q) expected error", i, in)
		}
	}
}

func TestTripValidate(t *testing.T) {
	good := Trip{Name: "Japan 2026"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Trip{
		{Name: ""},
		{Name: "  "},
		{
			Name:      "Backwards",
			StartDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for i, trip := range bads {
		if err := trip.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		TripID:   1,
		Amount:   9.5,
		Currency: "USD",
		Category: CategoryFood,
		Date:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{TripID: 0, Amount: 1, Date: good.Date},
		{TripID: 1, Amount: 0, Date: good.Date},
		{TripID: 1, Amount: -3, Date: good.Date},
		{TripID: 1, Amount: 1}, // zero date
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
