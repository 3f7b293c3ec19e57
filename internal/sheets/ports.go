// Package sheets defines the outbound port for the travel log: a spreadsheet
// mirror of recorded expenses that travel companions can read without the app.
package sheets

import (
	"context"

	"viaggio/internal/core"
)

// TravelLogWriter appends one expense row to the travel log. rowRef
// identifies the written row for logging and troubleshooting.
type TravelLogWriter interface {
	AppendExpense(ctx context.Context, trip core.Trip, e core.Expense) (rowRef string, err error)
}
