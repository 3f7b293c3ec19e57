package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Category is one of the five fixed expense categories.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryAccommodation Category = "accommodation"
	CategoryActivities    Category = "activities"
	CategoryOther         Category = "other"
)

// Categories lists every valid category in fixed order. Aggregation output
// (unused categories) follows this order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryAccommodation,
	CategoryActivities,
	CategoryOther,
}

// SupportedCurrencies is the set accepted for expense input. Anything else
// is coerced to USD at the boundary rather than rejected.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "CHF", "JPY", "THB"}

// DefaultCurrency is used when an utterance or request names no currency.
const DefaultCurrency = "USD"

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty name")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrNoTrips       = errors.New("no trips")
)

type (
	Trip struct {
		ID          int64
		UserID      int64
		Name        string
		Destination string
		StartDate   time.Time // zero when unknown
		EndDate     time.Time // zero when unknown
		CreatedAt   time.Time
	}

	Expense struct {
		ID        int64
		TripID    int64
		UserID    int64
		Amount    float64
		Currency  string
		Category  Category
		Date      time.Time
		Notes     string
		CreatedAt time.Time
	}
)

// ParseCategory maps arbitrary input to a valid category. Out-of-set values
// coerce to CategoryOther; expenses are never rejected over category spelling.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Categories {
		if c == valid {
			return c
		}
	}
	return CategoryOther
}

// ParseCurrency maps arbitrary input to a supported currency code,
// defaulting to USD for unknown or empty codes.
func ParseCurrency(s string) string {
	c := strings.ToUpper(strings.TrimSpace(s))
	for _, valid := range SupportedCurrencies {
		if c == valid {
			return c
		}
	}
	return DefaultCurrency
}

// ParseAmount parses a decimal amount string. It accepts both dot and comma
// decimal separators and requires a strictly positive value.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if v != v || v <= 0 { // NaN or non-positive
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// FormatDate renders a calendar date in YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func (t Trip) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if len(t.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
		return errors.New("end date before start date")
	}
	return nil
}

func (e Expense) Validate() error {
	if e.TripID == 0 {
		return errors.New("missing trip")
	}
	if e.Amount != e.Amount || e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if e.Date.IsZero() {
		return errors.New("missing date")
	}
	if len(e.Notes) > 200 {
		return errors.New("notes too long (max 200 characters)")
	}
	return nil
}
