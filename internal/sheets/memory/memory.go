// Package memory is an in-memory travel log for tests and local development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"viaggio/internal/core"
	ports "viaggio/internal/sheets"
)

// Row is one appended travel log entry.
type Row struct {
	Trip    core.Trip
	Expense core.Expense
}

// Store collects appended rows in memory. Safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	rows []Row

	// Err, when set, fails every append. Tests use it to exercise the
	// worker's error path.
	Err error
}

var _ ports.TravelLogWriter = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) AppendExpense(ctx context.Context, trip core.Trip, e core.Expense) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return "", s.Err
	}

	s.rows = append(s.rows, Row{Trip: trip, Expense: e})
	return fmt.Sprintf("memory:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}
