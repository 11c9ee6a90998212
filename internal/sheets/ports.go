// Package sheets defines the activity ledger the worker writes transaction
// events to. Adapters live in the google and memory subpackages.
package sheets

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Entry is one ledger row.
type Entry struct {
	RecordedAt    time.Time
	EventID       string
	Action        string
	Type          core.TransactionType
	TransactionID string
	Date          core.Date
	Category      string
	Amount        core.Money
	Description   string
	UserID        string
}

// Header names the ledger columns in Row order.
func Header() []any {
	return []any{"Recorded At", "Event ID", "Action", "Type", "Transaction ID", "Date", "Category", "Amount", "Description", "User"}
}

// Columns is the number of ledger columns.
const Columns = 10

// Row renders the entry in column order. Amounts are plain decimals so the
// sheet can sum them; a deleted record without a cached amount leaves the
// cell empty.
func (e Entry) Row() []any {
	var amount any = ""
	if !e.Amount.IsZero() {
		amount = e.Amount.Fixed()
	}
	return []any{
		e.RecordedAt.UTC().Format(time.RFC3339),
		e.EventID,
		e.Action,
		string(e.Type),
		e.TransactionID,
		e.Date.String(),
		e.Category,
		amount,
		e.Description,
		e.UserID,
	}
}

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		AppendEntry(ctx context.Context, e Entry) (rowRef string, err error)
	}
)
