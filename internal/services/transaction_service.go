package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
)

// TransactionAPI is the backend's mutation surface, bound to one session's token.
type TransactionAPI interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, t core.TransactionType, id string) error
}

// EventPublisher publishes transaction events. *amqp.Client implements it.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *amqp.TransactionEvent) error
}

var ErrMissingID = errors.New("transaction id is required")

// TransactionService validates drafts, sends them to the backend, keeps the
// session caches in step with the backend's answer and announces the change.
type TransactionService struct {
	publisher EventPublisher
	now       func() time.Time
	logger    *applog.Logger
	slog      *applog.StructuredLogger
}

// NewTransactionService accepts a nil publisher; events are then skipped.
func NewTransactionService(publisher EventPublisher, logger *applog.Logger) *TransactionService {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentService)
	return &TransactionService{
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
		slog:      applog.NewStructuredLogger(logger),
	}
}

func (s *TransactionService) today() core.Date {
	return core.DateOf(s.now())
}

// Create validates d, creates the record and prepends the server's copy to
// the cache. Validation errors are returned before any network call.
func (s *TransactionService) Create(ctx context.Context, api TransactionAPI, st *session.State, d core.Draft) (core.Transaction, error) {
	d.ID = ""
	tx, err := d.Transaction(s.today())
	if err != nil {
		return core.Transaction{}, err
	}

	created, err := api.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", tx.Type, err)
	}
	st.Prepend(created)

	s.slog.LogTransaction(ctx, applog.OpCreate, st.ID(), created.ID, string(created.Type), created.Amount.Cents, created.Category)
	s.publish(ctx, amqp.ActionCreated, st, created)
	return created, nil
}

// Update saves an edited draft of type t. The record type cannot change on
// edit. On success the cached record is replaced by the server's copy; on
// failure, including not-found, the cache is left as it was.
func (s *TransactionService) Update(ctx context.Context, api TransactionAPI, st *session.State, t core.TransactionType, d core.Draft) (core.Transaction, error) {
	if d.ID == "" {
		return core.Transaction{}, ErrMissingID
	}
	d.Type = string(t)
	tx, err := d.Transaction(s.today())
	if err != nil {
		return core.Transaction{}, err
	}

	updated, err := api.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update %s %s: %w", t, d.ID, err)
	}
	if updated.ID == "" {
		updated.ID = tx.ID
	}
	if !st.Replace(updated) {
		s.logger.WarnContext(ctx, "Updated record was not cached, adding it",
			applog.FieldSessionID, st.ID(), applog.FieldTxID, updated.ID)
		st.Prepend(updated)
	}

	s.slog.LogTransaction(ctx, applog.OpUpdate, st.ID(), updated.ID, string(updated.Type), updated.Amount.Cents, updated.Category)
	s.publish(ctx, amqp.ActionUpdated, st, updated)
	return updated, nil
}

// Delete removes record id of type t from the backend and then the cache.
func (s *TransactionService) Delete(ctx context.Context, api TransactionAPI, st *session.State, t core.TransactionType, id string) error {
	if id == "" {
		return ErrMissingID
	}
	if !t.Valid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidType, t)
	}

	if err := api.DeleteTransaction(ctx, t, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", t, id, err)
	}

	gone, ok := st.Find(t, id)
	if !ok {
		gone = core.Transaction{ID: id, Type: t}
	}
	st.Remove(t, id)

	s.slog.LogTransaction(ctx, applog.OpDelete, st.ID(), id, string(t), gone.Amount.Cents, gone.Category)
	s.publish(ctx, amqp.ActionDeleted, st, gone)
	return nil
}

// publish never fails the caller: the backend already holds the change.
func (s *TransactionService) publish(ctx context.Context, action amqp.Action, st *session.State, tx core.Transaction) {
	if s.publisher == nil {
		return
	}
	ev := amqp.NewTransactionEvent(action, st.User().ID, st.ID(), tx)
	if err := s.publisher.PublishTransactionEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpPublish,
			applog.FieldEventID, ev.ID.String(),
			applog.FieldTxID, tx.ID)
	}
}
