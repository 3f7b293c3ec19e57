package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"viaggio/internal/ai/mock"
	"viaggio/internal/core"
)

func testToday(t *testing.T) time.Time {
	t.Helper()
	d, err := core.ParseDate("2026-03-10")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	return d
}

func TestIntentParserAddExpense(t *testing.T) {
	completer := &mock.Completer{
		Response: `{"intent":"add_expense","amount":50,"currency":"EUR","category":"food","date":"2026-03-08","notes":"lunch","trip_hint":"japan"}`,
	}
	parser := NewIntentParser(completer)

	intent, err := parser.Parse(context.Background(), "I spent 50 euros on lunch", testToday(t), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if intent.Kind != IntentAddExpense {
		t.Fatalf("Kind = %q, want %q", intent.Kind, IntentAddExpense)
	}
	add := intent.Add
	if add == nil {
		t.Fatal("Add is nil")
	}
	if add.Amount != 50 {
		t.Errorf("Amount = %v, want 50", add.Amount)
	}
	if add.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", add.Currency)
	}
	if add.Category != "food" {
		t.Errorf("Category = %q, want food", add.Category)
	}
	if got := core.FormatDate(add.Date); got != "2026-03-08" {
		t.Errorf("Date = %s, want 2026-03-08", got)
	}
	if add.Notes != "lunch" || add.TripHint != "japan" {
		t.Errorf("Notes/TripHint = %q/%q", add.Notes, add.TripHint)
	}
}

func TestIntentParserAddExpenseDefaultsDateToToday(t *testing.T) {
	completer := &mock.Completer{
		Response: `{"intent":"add_expense","amount":12.5,"currency":"USD","category":"transport"}`,
	}
	parser := NewIntentParser(completer)

	today := testToday(t)
	intent, err := parser.Parse(context.Background(), "twelve fifty for the bus", today, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !intent.Add.Date.Equal(today) {
		t.Errorf("Date = %v, want today %v", intent.Add.Date, today)
	}
}

func TestIntentParserQuery(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantType string
		wantDate string
	}{
		{
			name:     "total by trip",
			response: `{"intent":"query","type":"total_by_trip","trip_hint":"japan"}`,
			wantType: "total_by_trip",
		},
		{
			name:     "expenses by date",
			response: `{"intent":"query","type":"expenses_by_date","date":"2026-03-02"}`,
			wantType: "expenses_by_date",
			wantDate: "2026-03-02",
		},
		{
			name:     "query without date keeps zero time",
			response: `{"intent":"query","type":"total_by_category","category":"food","date":null}`,
			wantType: "total_by_category",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewIntentParser(&mock.Completer{Response: tt.response})
			intent, err := parser.Parse(context.Background(), "how much", testToday(t), nil)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if intent.Kind != IntentQuery {
				t.Fatalf("Kind = %q, want %q", intent.Kind, IntentQuery)
			}
			if intent.Query.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", intent.Query.Type, tt.wantType)
			}
			if tt.wantDate == "" {
				if !intent.Query.Date.IsZero() {
					t.Errorf("Date = %v, want zero", intent.Query.Date)
				}
			} else if got := core.FormatDate(intent.Query.Date); got != tt.wantDate {
				t.Errorf("Date = %s, want %s", got, tt.wantDate)
			}
		})
	}
}

func TestIntentParserToleratesProseAroundJSON(t *testing.T) {
	completer := &mock.Completer{
		Response: "Sure! Here is the result:\n```json\n{\"intent\":\"query\",\"type\":\"total_by_trip\"}\n```",
	}
	parser := NewIntentParser(completer)

	intent, err := parser.Parse(context.Background(), "trip total", testToday(t), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if intent.Kind != IntentQuery {
		t.Errorf("Kind = %q, want %q", intent.Kind, IntentQuery)
	}
}

func TestIntentParserUnparseable(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no JSON at all", "I cannot help with that."},
		{"invalid JSON", `{"intent": add_expense}`},
		{"unknown intent", `{"intent":"delete_everything"}`},
		{"missing intent", `{"amount": 50}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewIntentParser(&mock.Completer{Response: tt.response})
			_, err := parser.Parse(context.Background(), "gibberish", testToday(t), nil)
			if !errors.Is(err, ErrUnparseable) {
				t.Errorf("err = %v, want ErrUnparseable", err)
			}
		})
	}
}

func TestIntentParserPropagatesProviderError(t *testing.T) {
	wantErr := errors.New("upstream down")
	parser := NewIntentParser(&mock.Completer{Err: wantErr})

	_, err := parser.Parse(context.Background(), "anything", testToday(t), nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped %v", err, wantErr)
	}
}

func TestIntentPromptContents(t *testing.T) {
	completer := &mock.Completer{Response: `{"intent":"query","type":"total_by_trip"}`}
	parser := NewIntentParser(completer)

	trips := []core.Trip{
		{ID: 3, Name: "Japan 2026"},
		{ID: 1, Name: "Weekend in Rome"},
	}
	if _, err := parser.Parse(context.Background(), "how much was japan", testToday(t), trips); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(completer.Prompts) != 1 {
		t.Fatalf("got %d prompts, want 1", len(completer.Prompts))
	}

	prompt := completer.Prompts[0]
	for _, want := range []string{
		`"Japan 2026" (id:3)`,
		`"Weekend in Rome" (id:1)`,
		"Today is 2026-03-10",
		`"how much was japan"`,
		"food, transport, accommodation, activities, other",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestIntentPromptWithoutTrips(t *testing.T) {
	completer := &mock.Completer{Response: `{"intent":"query","type":"total_by_trip"}`}
	parser := NewIntentParser(completer)

	if _, err := parser.Parse(context.Background(), "total", testToday(t), nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !strings.Contains(completer.Prompts[0], "trips: none") {
		t.Errorf("prompt should state the user has no trips:\n%s", completer.Prompts[0])
	}
}
