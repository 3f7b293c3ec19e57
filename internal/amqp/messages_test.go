package amqp

import (
	"testing"
	"time"
)

func TestNewExpenseSyncMessage(t *testing.T) {
	msg := NewExpenseSyncMessage(12345, 7)

	if msg.ExpenseID != 12345 {
		t.Errorf("ExpenseID = %v, want 12345", msg.ExpenseID)
	}
	if msg.UserID != 7 {
		t.Errorf("UserID = %v, want 7", msg.UserID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestExpenseSyncMessageJSON(t *testing.T) {
	msg := &ExpenseSyncMessage{
		ExpenseID: 12345,
		UserID:    7,
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ExpenseSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("ExpenseSyncMessageFromJSON() error = %v", err)
	}

	if parsed.ExpenseID != msg.ExpenseID || parsed.UserID != msg.UserID {
		t.Errorf("round trip = %+v, want %+v", parsed, msg)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestExpenseSyncMessageInvalidJSON(t *testing.T) {
	if _, err := ExpenseSyncMessageFromJSON([]byte(`{"expense_id": "nope"}`)); err == nil {
		t.Error("ExpenseSyncMessageFromJSON() should fail on a malformed payload")
	}
}
