package memory

import (
	"context"
	"fmt"
	"sync"

	applog "fintrack/internal/log"
	ports "fintrack/internal/sheets"
)

// Ledger keeps entries in process and logs each one. It stands in for the
// spreadsheet when none is configured.
type Ledger struct {
	mu      sync.Mutex
	entries []ports.Entry
	logger  *applog.Logger
}

var _ ports.LedgerWriter = (*Ledger)(nil)

func New(logger *applog.Logger) *Ledger {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Ledger{logger: logger.WithComponent(applog.ComponentLedger)}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (l *Ledger) AppendEntry(ctx context.Context, e ports.Entry) (string, error) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	ref := fmt.Sprintf("mem:%d", len(l.entries))
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "Ledger entry recorded",
		applog.FieldLedgerRef, ref,
		applog.FieldEventID, e.EventID,
		"action", e.Action,
		applog.FieldTxID, e.TransactionID,
		applog.FieldTxType, string(e.Type),
		applog.FieldAmountCents, e.Amount.Cents)
	return ref, nil
}

// Entries returns a copy of everything recorded so far.
func (l *Ledger) Entries() []ports.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ports.Entry(nil), l.entries...)
}
