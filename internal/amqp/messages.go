package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseSyncMessage asks the worker to push one expense to the travel log.
// It carries only identifiers; the worker reads the current row from the
// database, so a message can never carry stale amounts.
type ExpenseSyncMessage struct {
	ExpenseID int64     `json:"expense_id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseSyncMessage(expenseID, userID int64) *ExpenseSyncMessage {
	return &ExpenseSyncMessage{
		ExpenseID: expenseID,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseSyncMessageFromJSON(data []byte) (*ExpenseSyncMessage, error) {
	var msg ExpenseSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
