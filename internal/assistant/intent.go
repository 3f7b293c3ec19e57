// Package assistant turns spoken commands into recorded expenses or answers.
// It contains the intent parser, the trip resolver, the action executor, the
// summary composer, and the voice pipeline that sequences them.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"viaggio/internal/ai"
	"viaggio/internal/core"
)

// ErrUnparseable marks a provider reply that is not one of the two intent
// shapes: invalid JSON or a missing/unknown discriminator. It degrades to a
// clarification message, never to a hard failure.
var ErrUnparseable = errors.New("unparseable intent")

type IntentKind string

const (
	IntentAddExpense IntentKind = "add_expense"
	IntentQuery      IntentKind = "query"
)

type QueryType string

const (
	QueryTotalByTrip     QueryType = "total_by_trip"
	QueryTotalByCategory QueryType = "total_by_category"
	QueryExpensesByDate  QueryType = "expenses_by_date"
)

type (
	// Intent is the structured interpretation of an utterance. Exactly one of
	// Add or Query is set, matching Kind.
	Intent struct {
		Kind  IntentKind
		Add   *AddExpenseIntent
		Query *QueryIntent
	}

	// AddExpenseIntent carries the fields of a spoken expense. Currency and
	// Category are kept as spoken; the executor coerces out-of-set values
	// rather than rejecting them.
	AddExpenseIntent struct {
		Amount   float64
		Currency string
		Category string
		Date     time.Time
		Notes    string
		TripHint string
	}

	// QueryIntent carries a spoken question. Type is kept as spoken; the
	// executor answers unknown types with a generic hint.
	QueryIntent struct {
		Type     string
		TripHint string
		Category string
		Date     time.Time // zero when the utterance named no date
	}
)

// IntentParser extracts an Intent from a transcript via a constrained JSON
// completion.
type IntentParser struct {
	completer ai.ChatCompleter
}

func NewIntentParser(completer ai.ChatCompleter) *IntentParser {
	return &IntentParser{completer: completer}
}

const (
	intentMaxTokens   = 200
	intentTemperature = 0.1
)

// Parse asks the provider to classify the transcript and decodes the reply.
// Returns ErrUnparseable when the reply is not one of the two intent shapes;
// provider failures pass through as ai.ProviderError.
func (p *IntentParser) Parse(ctx context.Context, transcript string, today time.Time, trips []core.Trip) (Intent, error) {
	prompt := buildIntentPrompt(transcript, today, trips)

	reply, err := p.completer.Complete(ctx, prompt, ai.CompleteOptions{
		MaxTokens:   intentMaxTokens,
		Temperature: intentTemperature,
		JSONMode:    true,
	})
	if err != nil {
		return Intent{}, fmt.Errorf("intent completion: %w", err)
	}

	return decodeIntent(reply, today)
}

// decodeIntent validates the provider's untyped reply field by field. The
// payload is external input; nothing about its shape is trusted.
func decodeIntent(reply string, today time.Time) (Intent, error) {
	raw := extractJSON(reply)
	if raw == "" {
		return Intent{}, fmt.Errorf("%w: no JSON object in reply", ErrUnparseable)
	}

	var wire struct {
		Intent   string   `json:"intent"`
		Amount   *float64 `json:"amount"`
		Currency string   `json:"currency"`
		Category string   `json:"category"`
		Date     string   `json:"date"`
		Notes    string   `json:"notes"`
		TripHint string   `json:"trip_hint"`
		Type     string   `json:"type"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Intent{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	switch wire.Intent {
	case string(IntentAddExpense):
		add := &AddExpenseIntent{
			Currency: wire.Currency,
			Category: wire.Category,
			Notes:    strings.TrimSpace(wire.Notes),
			TripHint: strings.TrimSpace(wire.TripHint),
		}
		if wire.Amount != nil {
			add.Amount = *wire.Amount
		}
		add.Date = parseDateOr(wire.Date, today)
		return Intent{Kind: IntentAddExpense, Add: add}, nil

	case string(IntentQuery):
		q := &QueryIntent{
			Type:     strings.TrimSpace(wire.Type),
			TripHint: strings.TrimSpace(wire.TripHint),
			Category: strings.TrimSpace(wire.Category),
		}
		if d, err := core.ParseDate(wire.Date); err == nil {
			q.Date = d
		}
		return Intent{Kind: IntentQuery, Query: q}, nil

	default:
		return Intent{}, fmt.Errorf("%w: intent %q", ErrUnparseable, wire.Intent)
	}
}

func buildIntentPrompt(transcript string, today time.Time, trips []core.Trip) string {
	names := make([]string, 0, len(trips))
	for _, t := range trips {
		names = append(names, fmt.Sprintf("%q (id:%d)", t.Name, t.ID))
	}
	tripNames := strings.Join(names, ", ")
	if tripNames == "" {
		tripNames = "none"
	}
	day := core.FormatDate(today)

	return fmt.Sprintf(`You are an expense tracking assistant. The user spoke a command.
Extract the intent and return ONLY valid JSON, no other text.

Intent must be one of: "add_expense" or "query"

For add_expense return:
{ "intent": "add_expense", "amount": number, "currency": "THB|CHF|EUR|USD|GBP|JPY", "category": "food|transport|accommodation|activities|other", "date": "YYYY-MM-DD", "notes": "string", "trip_hint": "string or null" }

For query return:
{ "intent": "query", "type": "total_by_category|total_by_trip|expenses_by_date", "trip_hint": "string or null", "category": "string or null", "date": "YYYY-MM-DD or null" }

Rules:
- Today is %s. User's trips: %s.
- If currency not mentioned, default to USD.
- If date not mentioned for add_expense, use today (%s).
- Category must be exactly one of: food, transport, accommodation, activities, other.
- notes should be a short description from the user's words (can be empty string).

User said: %q`, day, tripNames, day, transcript)
}

// extractJSON returns the outermost JSON object inside text, tolerating
// providers that wrap the object in prose or fencing despite JSON mode.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func parseDateOr(s string, fallback time.Time) time.Time {
	if d, err := core.ParseDate(s); err == nil {
		return d
	}
	return fallback
}
