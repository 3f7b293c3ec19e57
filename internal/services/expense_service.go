// Package services orchestrates expense writes across SQLite and the sync
// queue. Reads go straight to storage; only mutations need orchestration.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"viaggio/internal/amqp"
	"viaggio/internal/core"
	"viaggio/internal/storage"
)

// ExpenseService persists expenses and enqueues their travel-log sync.
// The AMQP client is optional: without it expenses still land in SQLite and
// the worker's periodic rescan picks them up later.
type ExpenseService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateExpense validates and saves the expense, then publishes a sync
// message. Publish failures are logged and swallowed: the row is already
// durable and marked pending, so sync happens eventually either way.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	if err := s.publishSyncMessage(ctx, created.ID, created.UserID); err != nil {
		slog.ErrorContext(ctx, "failed to publish sync message",
			"expense_id", created.ID, "error", err)
	}

	return created, nil
}

// DeleteExpense removes an expense owned by the user.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id, userID int64) error {
	if err := s.storage.DeleteExpense(ctx, id, userID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

func (s *ExpenseService) publishSyncMessage(ctx context.Context, expenseID, userID int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishExpenseSync(ctx, expenseID, userID)
}

// Close releases the storage and broker connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
