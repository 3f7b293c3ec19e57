// Package worker mirrors recorded expenses into the Google Sheets travel
// log. It consumes AMQP sync messages and periodically rescans for pending
// rows, so a lost message delays a sync instead of losing it.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"viaggio/internal/amqp"
	"viaggio/internal/core"
	"viaggio/internal/sheets"
	"viaggio/internal/storage"
)

type SyncWorker struct {
	storage   *storage.SQLiteRepository
	log       sheets.TravelLogWriter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, log sheets.TravelLogWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		log:       log,
		batchSize: batchSize,
	}
}

// HandleSyncMessage syncs the expense named by one AMQP message. The row is
// re-read from storage so the travel log always gets current values.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	expense, err := w.storage.GetExpense(ctx, msg.ExpenseID)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	if err := w.syncExpense(ctx, expense); err != nil {
		return fmt.Errorf("sync expense: %w", err)
	}
	return nil
}

// ProcessPendingExpenses syncs rows still marked pending. This is the backup
// path for lost AMQP messages and broker downtime.
func (w *SyncWorker) ProcessPendingExpenses(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "processing pending expenses", "count", len(pending))

	for _, expense := range pending {
		if err := w.syncExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "failed to sync pending expense",
				"expense_id", expense.ID, "error", err)
		}
	}
	return nil
}

// StartupSyncCheck drains the pending backlog once at worker start, with a
// larger batch than the periodic rescan.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncExpenses(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending expenses for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "no pending expenses found on startup")
		return nil
	}

	slog.InfoContext(ctx, "found pending expenses on startup", "count", len(pending))

	synced, failed := 0, 0
	for _, expense := range pending {
		if err := w.syncExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "failed to sync expense during startup",
				"expense_id", expense.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

func (w *SyncWorker) syncExpense(ctx context.Context, expense core.Expense) error {
	trip, err := w.storage.GetTrip(ctx, expense.TripID, expense.UserID)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, expense.ID); markErr != nil {
			slog.ErrorContext(ctx, "failed to mark sync error", "expense_id", expense.ID, "error", markErr)
		}
		return fmt.Errorf("get trip for expense: %w", err)
	}

	ref, err := w.log.AppendExpense(ctx, trip, expense)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, expense.ID); markErr != nil {
			slog.ErrorContext(ctx, "failed to mark sync error", "expense_id", expense.ID, "error", markErr)
		}
		return fmt.Errorf("append to travel log: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, expense.ID); err != nil {
		// The append succeeded; a failed status update just means the row
		// gets retried and the log grows a duplicate, which is visible and
		// fixable. Do not fail the message.
		slog.ErrorContext(ctx, "failed to mark as synced", "expense_id", expense.ID, "error", err)
	}

	slog.InfoContext(ctx, "synced expense to travel log",
		"expense_id", expense.ID,
		"sheets_ref", ref)
	return nil
}
