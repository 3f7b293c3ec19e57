// Package storage persists trips and expenses in SQLite. It owns all SQL;
// no business logic lives here.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"viaggio/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states for the Google Sheets travel log.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Expense rows cascade on trip deletion; SQLite needs this per connection.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable, for readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateTrip inserts a trip and returns it with ID and CreatedAt populated.
func (r *SQLiteRepository) CreateTrip(ctx context.Context, t core.Trip) (core.Trip, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO trips (user_id, name, destination, start_date, end_date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		t.UserID, t.Name, nullString(t.Destination), nullDate(t.StartDate), nullDate(t.EndDate))
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return core.Trip{}, fmt.Errorf("create trip: %w", err)
	}
	return t, nil
}

// GetTrip returns a trip owned by the user, or core.ErrNotFound.
func (r *SQLiteRepository) GetTrip(ctx context.Context, id, userID int64) (core.Trip, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, destination, start_date, end_date, created_at
		FROM trips WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Trip{}, core.ErrNotFound
	}
	if err != nil {
		return core.Trip{}, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

// ListTrips returns the user's trips, newest first. The resolver relies on
// this ordering for its most-recent-trip fallback.
func (r *SQLiteRepository) ListTrips(ctx context.Context, userID int64) ([]core.Trip, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, destination, start_date, end_date, created_at
		FROM trips WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []core.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// DeleteTrip removes a trip and, via the foreign key, its expenses.
func (r *SQLiteRepository) DeleteTrip(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete trip rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// CreateExpense inserts an expense and returns it with ID and CreatedAt set.
// The row starts in sync state "pending" for the travel-log worker.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO expenses (trip_id, user_id, amount, currency, category, date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		e.TripID, e.UserID, e.Amount, e.Currency, string(e.Category), core.FormatDate(e.Date), nullString(e.Notes))
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"trip_id", e.TripID,
		"amount", e.Amount,
		"currency", e.Currency,
		"category", e.Category)

	return e, nil
}

// GetExpense returns a single expense by ID regardless of owner; used by the
// sync worker which acts across users.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, trip_id, user_id, amount, currency, category, date, notes, created_at
		FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// DeleteExpense removes a single expense owned by the user.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ExpenseFilter narrows FindExpenses. UserID is mandatory; the rest is
// optional and combines with AND.
type ExpenseFilter struct {
	UserID   int64
	TripID   int64 // 0 means all trips
	Category core.Category
	Date     time.Time // zero means any date
}

// FindExpenses returns the user's expenses matching the filter, ordered by
// date then insertion order.
func (r *SQLiteRepository) FindExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error) {
	query := `
		SELECT id, trip_id, user_id, amount, currency, category, date, notes, created_at
		FROM expenses WHERE user_id = ?`
	args := []any{f.UserID}

	if f.TripID != 0 {
		query += " AND trip_id = ?"
		args = append(args, f.TripID)
	}
	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, string(f.Category))
	}
	if !f.Date.IsZero() {
		query += " AND date = ?"
		args = append(args, core.FormatDate(f.Date))
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// GetPendingSyncExpenses returns expenses awaiting travel-log sync, oldest
// first, up to limit. Errored rows are included so they get retried.
func (r *SQLiteRepository) GetPendingSyncExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, trip_id, user_id, amount, currency, category, date, notes, created_at
		FROM expenses WHERE sync_status IN (?, ?)
		ORDER BY id ASC LIMIT ?`, SyncPending, SyncError, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// MarkSynced records a successful travel-log append.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET sync_status = ?, synced_at = CURRENT_TIMESTAMP WHERE id = ?`,
		SyncDone, id); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	slog.InfoContext(ctx, "Expense marked as synced", "expense_id", id)
	return nil
}

// MarkSyncError flags an expense whose travel-log append failed; the periodic
// rescan will retry it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET sync_status = ? WHERE id = ?`, SyncError, id); err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with sync error", "expense_id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (core.Trip, error) {
	var (
		t                  core.Trip
		destination        sql.NullString
		startDate, endDate sql.NullString
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &destination, &startDate, &endDate, &t.CreatedAt); err != nil {
		return core.Trip{}, err
	}
	t.Destination = destination.String
	if startDate.Valid {
		if d, err := core.ParseDate(startDate.String); err == nil {
			t.StartDate = d
		}
	}
	if endDate.Valid {
		if d, err := core.ParseDate(endDate.String); err == nil {
			t.EndDate = d
		}
	}
	return t, nil
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e        core.Expense
		category string
		date     string
		notes    sql.NullString
	)
	if err := row.Scan(&e.ID, &e.TripID, &e.UserID, &e.Amount, &e.Currency, &category, &date, &notes, &e.CreatedAt); err != nil {
		return core.Expense{}, err
	}
	e.Category = core.Category(category)
	e.Notes = notes.String
	if d, err := core.ParseDate(date); err == nil {
		e.Date = d
	}
	return e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: strings.TrimSpace(s) != ""}
}

func nullDate(t time.Time) sql.NullString {
	return sql.NullString{String: core.FormatDate(t), Valid: !t.IsZero()}
}
