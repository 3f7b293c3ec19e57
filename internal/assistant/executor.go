package assistant

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"viaggio/internal/core"
	"viaggio/internal/storage"
)

// User-facing sentences for terminal outcomes. These are spoken back, so
// they are full sentences rather than error codes.
const (
	NoTripsMessage      = "You have no trips yet. Create a trip first."
	BadAmountMessage    = "I couldn't understand the amount. Please say a number clearly."
	UnknownQueryMessage = "I found your trips but couldn't answer that specific question. Try asking for a total or a category breakdown."
)

// itemizeThreshold caps query verbosity: category queries matching at most
// this many records list each one; larger matches report only the total.
const itemizeThreshold = 5

type (
	// ExpenseFinder reads expenses for query answers.
	ExpenseFinder interface {
		FindExpenses(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error)
	}

	// ExpenseCreator persists a validated expense.
	ExpenseCreator interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	}
)

// Result is the outcome of executing an intent: a sentence to speak back
// and, for successful add-expense intents, the persisted record.
type Result struct {
	Text    string
	Expense *core.Expense
}

// Executor carries out a parsed intent: it either persists a new expense or
// answers one of the three query types from stored records.
type Executor struct {
	finder    ExpenseFinder
	creator   ExpenseCreator
	rates     *core.Normalizer
	summaries *SummaryService // optional; invalidated after mutations
}

func NewExecutor(finder ExpenseFinder, creator ExpenseCreator, rates *core.Normalizer, summaries *SummaryService) *Executor {
	return &Executor{
		finder:    finder,
		creator:   creator,
		rates:     rates,
		summaries: summaries,
	}
}

// Execute runs the intent for a user. activeTripID is the caller's UI
// context (0 when absent); trips is the user's trip list, newest first.
// Validation problems come back as Result text, not as errors: the voice
// flow speaks them to the user and stops.
func (x *Executor) Execute(ctx context.Context, intent Intent, userID, activeTripID int64, trips []core.Trip, homeCurrency string) (Result, error) {
	switch intent.Kind {
	case IntentAddExpense:
		return x.addExpense(ctx, intent.Add, userID, activeTripID, trips)
	case IntentQuery:
		return x.query(ctx, intent.Query, userID, activeTripID, trips, homeCurrency)
	default:
		return Result{}, fmt.Errorf("execute: unknown intent kind %q", intent.Kind)
	}
}

func (x *Executor) addExpense(ctx context.Context, add *AddExpenseIntent, userID, activeTripID int64, trips []core.Trip) (Result, error) {
	tripID, ok := ResolveTrip(activeTripID, add.TripHint, trips, true)
	if !ok {
		return Result{Text: NoTripsMessage}, nil
	}

	if add.Amount != add.Amount || add.Amount <= 0 { // NaN or non-positive
		return Result{Text: BadAmountMessage}, nil
	}

	expense := core.Expense{
		TripID:   tripID,
		UserID:   userID,
		Amount:   add.Amount,
		Currency: core.ParseCurrency(add.Currency),
		Category: core.ParseCategory(add.Category),
		Date:     add.Date,
		Notes:    add.Notes,
	}

	created, err := x.creator.CreateExpense(ctx, expense)
	if err != nil {
		return Result{}, fmt.Errorf("persist expense: %w", err)
	}

	if x.summaries != nil {
		x.summaries.InvalidateTrip(tripID)
	}

	text := fmt.Sprintf("Added %s %s for %s on %s to %s.",
		formatAmount(created.Amount), created.Currency, created.Category,
		core.FormatDate(created.Date), tripName(trips, tripID))
	return Result{Text: text, Expense: &created}, nil
}

func (x *Executor) query(ctx context.Context, q *QueryIntent, userID, activeTripID int64, trips []core.Trip, homeCurrency string) (Result, error) {
	// Queries never fall back to the latest trip here; each subtype decides
	// whether an unresolved trip means "latest" or "all trips".
	tripID, _ := ResolveTrip(activeTripID, q.TripHint, trips, false)

	switch QueryType(q.Type) {
	case QueryTotalByTrip:
		return x.totalByTrip(ctx, userID, tripID, trips, homeCurrency)
	case QueryTotalByCategory:
		if q.Category != "" {
			return x.totalByCategory(ctx, q, userID, tripID, trips, homeCurrency)
		}
	case QueryExpensesByDate:
		if !q.Date.IsZero() {
			return x.expensesByDate(ctx, q, userID)
		}
	}
	return Result{Text: UnknownQueryMessage}, nil
}

func (x *Executor) totalByTrip(ctx context.Context, userID, tripID int64, trips []core.Trip, homeCurrency string) (Result, error) {
	if tripID == 0 {
		if len(trips) == 0 {
			return Result{Text: "You have no trips yet."}, nil
		}
		tripID = trips[0].ID
	}
	name := tripName(trips, tripID)

	expenses, err := x.finder.FindExpenses(ctx, storage.ExpenseFilter{UserID: userID, TripID: tripID})
	if err != nil {
		return Result{}, fmt.Errorf("find trip expenses: %w", err)
	}
	if len(expenses) == 0 {
		return Result{Text: fmt.Sprintf("No expenses found for %s.", name)}, nil
	}

	// Sum per currency first, then convert each bucket once.
	byCurrency := make(map[string]float64)
	for _, e := range expenses {
		byCurrency[e.Currency] += e.Amount
	}
	var total float64
	for currency, amount := range byCurrency {
		total += x.rates.Convert(amount, currency, homeCurrency)
	}

	return Result{Text: fmt.Sprintf("Your %s cost approximately %.2f %s.", name, total, homeCurrency)}, nil
}

func (x *Executor) totalByCategory(ctx context.Context, q *QueryIntent, userID, tripID int64, trips []core.Trip, homeCurrency string) (Result, error) {
	category := core.ParseCategory(q.Category)
	expenses, err := x.finder.FindExpenses(ctx, storage.ExpenseFilter{
		UserID:   userID,
		TripID:   tripID, // 0 keeps the query user-wide
		Category: category,
	})
	if err != nil {
		return Result{}, fmt.Errorf("find category expenses: %w", err)
	}
	if len(expenses) == 0 {
		return Result{Text: fmt.Sprintf("No %s expenses found.", category)}, nil
	}

	var total float64
	for _, e := range expenses {
		total += x.rates.Convert(e.Amount, e.Currency, homeCurrency)
	}

	scope := ""
	if tripID != 0 {
		scope = " in " + tripName(trips, tripID)
	}

	if len(expenses) <= itemizeThreshold {
		items := make([]string, len(expenses))
		for i, e := range expenses {
			day := e.Date.Format("2 Jan")
			if e.Notes != "" {
				items[i] = fmt.Sprintf("%s %s for %s on %s", formatAmount(e.Amount), e.Currency, e.Notes, day)
			} else {
				items[i] = fmt.Sprintf("%s %s on %s", formatAmount(e.Amount), e.Currency, day)
			}
		}
		return Result{Text: fmt.Sprintf("You spent %.2f %s on %s%s: %s.",
			total, homeCurrency, category, scope, strings.Join(items, "; "))}, nil
	}

	return Result{Text: fmt.Sprintf("You spent %.2f %s on %s%s across %d expenses.",
		total, homeCurrency, category, scope, len(expenses))}, nil
}

func (x *Executor) expensesByDate(ctx context.Context, q *QueryIntent, userID int64) (Result, error) {
	expenses, err := x.finder.FindExpenses(ctx, storage.ExpenseFilter{UserID: userID, Date: q.Date})
	if err != nil {
		return Result{}, fmt.Errorf("find expenses by date: %w", err)
	}
	day := core.FormatDate(q.Date)
	if len(expenses) == 0 {
		return Result{Text: fmt.Sprintf("No expenses found on %s.", day)}, nil
	}

	// Day-level listing stays in original currencies; no conversion at this
	// granularity.
	items := make([]string, len(expenses))
	for i, e := range expenses {
		items[i] = fmt.Sprintf("%s %s for %s", formatAmount(e.Amount), e.Currency, e.Category)
	}
	return Result{Text: fmt.Sprintf("On %s you spent: %s.", day, strings.Join(items, ", "))}, nil
}

// formatAmount renders an amount the way it was spoken: no forced decimals,
// no trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
