package worker

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	applog "fintrack/internal/log"
	"fintrack/internal/sheets"
)

// LedgerWorker writes one ledger row per transaction event.
type LedgerWorker struct {
	ledger sheets.LedgerWriter
	now    func() time.Time
	logger *applog.Logger
}

func NewLedgerWorker(ledger sheets.LedgerWriter, logger *applog.Logger) *LedgerWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &LedgerWorker{
		ledger: ledger,
		now:    time.Now,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// EntryFor maps an event onto a ledger row.
func EntryFor(ev *amqp.TransactionEvent, recordedAt time.Time) sheets.Entry {
	tx := ev.Transaction
	return sheets.Entry{
		RecordedAt:    recordedAt,
		EventID:       ev.ID.String(),
		Action:        string(ev.Action),
		Type:          tx.Type,
		TransactionID: tx.ID,
		Date:          tx.Date,
		Category:      tx.Category,
		Amount:        tx.Amount,
		Description:   tx.Description,
		UserID:        ev.UserID,
	}
}

// HandleEvent appends the event to the ledger. Events with an unknown
// action are logged and dropped; a ledger failure is returned so the
// message is requeued.
func (w *LedgerWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	if !ev.Action.Valid() {
		w.logger.WarnContext(ctx, "Dropping event with unknown action",
			applog.FieldEventID, ev.ID.String(), "action", ev.Action)
		return nil
	}

	recordedAt := ev.OccurredAt
	if recordedAt.IsZero() {
		recordedAt = w.now()
	}

	ref, err := w.ledger.AppendEntry(ctx, EntryFor(ev, recordedAt))
	if err != nil {
		return fmt.Errorf("append ledger entry for event %s: %w", ev.ID, err)
	}

	w.logger.InfoContext(ctx, "Transaction event recorded",
		applog.FieldOperation, applog.OpAppend,
		applog.FieldEventID, ev.ID.String(),
		"action", ev.Action,
		applog.FieldTxID, ev.Transaction.ID,
		applog.FieldLedgerRef, ref)
	return nil
}
