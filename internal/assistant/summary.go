package assistant

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"viaggio/internal/ai"
	"viaggio/internal/cache"
	"viaggio/internal/core"
	"viaggio/internal/storage"
)

// The four section markers every summary carries, AI-generated or mock, in
// this order. Downstream consumers split on them, so both composers share
// the contract and callers cannot tell the outputs apart by shape.
var SummarySections = []string{"OVERVIEW", "TOP CATEGORIES", "INSIGHTS", "BUDGET TIP"}

const (
	summaryMaxTokens   = 300
	summaryTemperature = 0.7
	// topCategoryCount caps the TOP CATEGORIES section.
	topCategoryCount = 3
)

// TripReader fetches a single trip with ownership enforced.
type TripReader interface {
	GetTrip(ctx context.Context, id, userID int64) (core.Trip, error)
}

// SummaryService composes natural-language trip summaries. With a completer
// it prompts the AI provider; without one it falls back to the deterministic
// mock composer. Generated summaries are cached per trip and invalidated on
// expense mutations.
type SummaryService struct {
	trips        TripReader
	finder       ExpenseFinder
	completer    ai.ChatCompleter // nil selects the mock composer
	rates        *core.Normalizer
	homeCurrency string
	cache        *cache.LRUCache[string]
}

func NewSummaryService(trips TripReader, finder ExpenseFinder, completer ai.ChatCompleter, rates *core.Normalizer, homeCurrency string) *SummaryService {
	return &SummaryService{
		trips:        trips,
		finder:       finder,
		completer:    completer,
		rates:        rates,
		homeCurrency: homeCurrency,
		cache:        cache.NewLRUCache[string](64, 5*time.Minute),
	}
}

// Summarize returns the four-section summary for a trip owned by the user.
func (s *SummaryService) Summarize(ctx context.Context, userID, tripID int64) (string, error) {
	key := summaryCacheKey(tripID)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	trip, err := s.trips.GetTrip(ctx, tripID, userID)
	if err != nil {
		return "", fmt.Errorf("load trip: %w", err)
	}
	expenses, err := s.finder.FindExpenses(ctx, storage.ExpenseFilter{UserID: userID, TripID: tripID})
	if err != nil {
		return "", fmt.Errorf("load expenses: %w", err)
	}

	agg := core.Aggregate(expenses, trip, s.rates, s.homeCurrency)

	var summary string
	if s.completer == nil {
		summary = MockSummary(trip, agg)
	} else {
		summary, err = s.completer.Complete(ctx, BuildSummaryPrompt(trip, agg), ai.CompleteOptions{
			MaxTokens:   summaryMaxTokens,
			Temperature: summaryTemperature,
		})
		if err != nil {
			return "", fmt.Errorf("summary completion: %w", err)
		}
	}

	s.cache.Set(key, summary)
	return summary, nil
}

// InvalidateTrip drops the cached summary after the trip's expenses change.
func (s *SummaryService) InvalidateTrip(tripID int64) {
	s.cache.Delete(summaryCacheKey(tripID))
}

// CleanExpired evicts expired summaries, satisfying cache.Cleaner so the
// cache manager can sweep this service with the others.
func (s *SummaryService) CleanExpired() int {
	return s.cache.CleanExpired()
}

func summaryCacheKey(tripID int64) string {
	return fmt.Sprintf("summary:%d", tripID)
}

// BuildSummaryPrompt renders the structured prompt for an AI-generated trip
// summary. The model is told to emit the same four labeled sections the mock
// composer produces.
func BuildSummaryPrompt(trip core.Trip, s core.Summary) string {
	var b strings.Builder

	b.WriteString("You are a friendly travel finance assistant. Summarize the following trip expenses.\n")
	b.WriteString("Write exactly four sections, in this order, each starting with its label and a colon:\n")
	b.WriteString(strings.Join(SummarySections, ", "))
	b.WriteString(".\nBe specific about amounts, highlight the biggest spending category, and keep each section to 1-2 sentences.\n\n")

	fmt.Fprintf(&b, "Trip: %s to %s\n", trip.Name, orUnknownPlace(trip.Destination))
	fmt.Fprintf(&b, "Dates: %s to %s\n", orUnknownDate(trip.StartDate), orUnknownDate(trip.EndDate))
	if s.TripDays > 0 {
		fmt.Fprintf(&b, "Trip length: %d days, daily average %.2f %s\n", s.TripDays, s.DailyAverage, s.RefCurrency)
	}
	fmt.Fprintf(&b, "Total spent: %.2f (%.2f %s normalized; currencies used: %s)\n",
		s.Total, s.TotalRef, s.RefCurrency, orNone(strings.Join(s.Currencies, ", ")))

	ranked := rankCategories(s)
	parts := make([]string, len(ranked))
	for i, c := range ranked {
		parts[i] = fmt.Sprintf("%s: %.2f", c.Category, c.Amount)
	}
	fmt.Fprintf(&b, "Breakdown by category: %s\n", orNone(strings.Join(parts, ", ")))

	top := ranked
	if len(top) > topCategoryCount {
		top = top[:topCategoryCount]
	}
	topParts := make([]string, len(top))
	for i, c := range top {
		topParts[i] = fmt.Sprintf("%s: %.2f (%d%%)", c.Category, c.Amount, percentOf(c.Amount, s.Total))
	}
	fmt.Fprintf(&b, "Top categories: %s\n", orNone(strings.Join(topParts, ", ")))

	if s.TopExpense != nil {
		fmt.Fprintf(&b, "Highest single expense: %s %s on %s%s\n",
			formatAmount(s.TopExpense.Amount), s.TopExpense.Currency, s.TopExpense.Category,
			notesSuffix(s.TopExpense.Notes))
	}
	fmt.Fprintf(&b, "Unused categories: %s\n", unusedList(s.UnusedCategories))

	return b.String()
}

// MockSummary derives the four sections from the aggregation alone, with no
// provider call. Output is byte-for-byte reproducible for the same input.
func MockSummary(trip core.Trip, s core.Summary) string {
	var b strings.Builder
	ranked := rankCategories(s)

	b.WriteString("OVERVIEW: ")
	fmt.Fprintf(&b, "Your trip %q", trip.Name)
	if trip.Destination != "" {
		fmt.Fprintf(&b, " to %s", trip.Destination)
	}
	fmt.Fprintf(&b, " totalled %.2f %s across %d spending %s",
		s.TotalRef, s.RefCurrency, len(ranked), pluralize("category", "categories", len(ranked)))
	if s.TripDays > 0 {
		fmt.Fprintf(&b, " over %d %s", s.TripDays, pluralize("day", "days", s.TripDays))
	}
	b.WriteString(".\n")

	b.WriteString("TOP CATEGORIES: ")
	if len(ranked) == 0 {
		b.WriteString("no expenses recorded yet.\n")
	} else {
		top := ranked
		if len(top) > topCategoryCount {
			top = top[:topCategoryCount]
		}
		parts := make([]string, len(top))
		for i, c := range top {
			parts[i] = fmt.Sprintf("%s %.2f (%d%%)", c.Category, c.Amount, percentOf(c.Amount, s.Total))
		}
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(".\n")
	}

	b.WriteString("INSIGHTS: ")
	if s.TopExpense == nil {
		b.WriteString("Nothing recorded so far, so there is nothing to compare yet.\n")
	} else {
		fmt.Fprintf(&b, "The biggest single expense was %s %s for %s%s.",
			formatAmount(s.TopExpense.Amount), s.TopExpense.Currency, s.TopExpense.Category,
			notesSuffix(s.TopExpense.Notes))
		if s.TripDays > 0 {
			fmt.Fprintf(&b, " You averaged %.2f %s per day.", s.DailyAverage, s.RefCurrency)
		}
		b.WriteString("\n")
	}

	b.WriteString("BUDGET TIP: ")
	if len(s.UnusedCategories) > 0 {
		fmt.Fprintf(&b, "No spending on %s yet; set aside something before you need it.\n", unusedList(s.UnusedCategories))
	} else {
		fmt.Fprintf(&b, "Every category is in use; keep an eye on %s, your largest.\n", ranked[0].Category)
	}

	return b.String()
}

type categoryAmount struct {
	Category core.Category
	Amount   float64
}

// rankCategories orders the breakdown by amount descending; ties fall back
// to the fixed category order so output stays deterministic.
func rankCategories(s core.Summary) []categoryAmount {
	order := make(map[core.Category]int, len(core.Categories))
	for i, c := range core.Categories {
		order[c] = i
	}

	ranked := make([]categoryAmount, 0, len(s.ByCategory))
	for c, amount := range s.ByCategory {
		ranked = append(ranked, categoryAmount{Category: c, Amount: amount})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Amount != ranked[j].Amount {
			return ranked[i].Amount > ranked[j].Amount
		}
		return order[ranked[i].Category] < order[ranked[j].Category]
	})
	return ranked
}

// percentOf computes a share of the in-currency total, rounded to the
// nearest integer. Zero when the total is zero.
func percentOf(amount, total float64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(amount / total * 100))
}

func unusedList(unused []core.Category) string {
	if len(unused) == 0 {
		return "none"
	}
	parts := make([]string, len(unused))
	for i, c := range unused {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func notesSuffix(notes string) string {
	if notes == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", notes)
}

func pluralize(singular, plural string, n int) string {
	if n == 1 {
		return singular
	}
	return plural
}

func orUnknownPlace(s string) string {
	if s == "" {
		return "an undisclosed destination"
	}
	return s
}

func orUnknownDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return core.FormatDate(t)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
