package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/api"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
)

type fakeAPI struct {
	calls   int
	created core.Transaction
	err     error
}

func (f *fakeAPI) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	f.calls++
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	tx.ID = "srv-1"
	tx.Description = "from server"
	f.created = tx
	return tx, nil
}

func (f *fakeAPI) UpdateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	f.calls++
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	tx.Description = "server copy"
	return tx, nil
}

func (f *fakeAPI) DeleteTransaction(context.Context, core.TransactionType, string) error {
	f.calls++
	return f.err
}

type recordingPublisher struct {
	events []*amqp.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishTransactionEvent(_ context.Context, ev *amqp.TransactionEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func newService(pub EventPublisher) *TransactionService {
	s := NewTransactionService(pub, applog.Discard())
	s.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return s
}

func newState(records ...core.Transaction) *session.State {
	st := session.NewState(session.Session{ID: "sess", User: core.User{ID: "u1"}})
	for i := len(records) - 1; i >= 0; i-- {
		st.Prepend(records[i])
	}
	return st
}

func TestCreatePrependsServerCopy(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(pub)
	st := newState(core.Transaction{ID: "old", Type: core.Expense, Amount: core.Cents(100), Category: "Food", Date: core.NewDate(2024, 3, 1)})
	fa := &fakeAPI{}

	d := core.Draft{ID: "ignored", Type: "expense", Amount: "12.50", Category: "Food", Date: "2024-03-10"}
	got, err := svc.Create(context.Background(), fa, st, d)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.ID != "srv-1" || fa.created.ID != "srv-1" {
		t.Fatalf("unexpected created record %+v", got)
	}
	recs := st.Records(core.Expense)
	if len(recs) != 2 || recs[0].ID != "srv-1" || recs[0].Description != "from server" {
		t.Fatalf("cache should start with the server copy: %+v", recs)
	}
	if len(pub.events) != 1 || pub.events[0].Action != amqp.ActionCreated || pub.events[0].UserID != "u1" {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestCreateRejectsInvalidDraftBeforeNetwork(t *testing.T) {
	svc := newService(nil)
	st := newState()
	fa := &fakeAPI{}

	_, err := svc.Create(context.Background(), fa, st, core.Draft{Type: "expense", Amount: "0", Category: "Food", Date: "2024-03-11"})
	verrs, ok := core.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation errors, got %v", err)
	}
	if verrs.Field(core.FieldAmount) == "" || verrs.Field(core.FieldDate) != "Date cannot be in the future" {
		t.Fatalf("unexpected messages %v", verrs.Messages())
	}
	if fa.calls != 0 {
		t.Fatalf("no request may be sent for an invalid draft")
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	svc := newService(&recordingPublisher{err: errors.New("broker down")})
	st := newState()
	_, err := svc.Create(context.Background(), &fakeAPI{}, st, core.Draft{Type: "income", Amount: "5", Category: "Gift", Date: "2024-03-01"})
	if err != nil {
		t.Fatalf("publish failure must not surface: %v", err)
	}
	if len(st.Records(core.Income)) != 1 {
		t.Fatalf("record should be cached")
	}
}

func TestUpdateReplacesInPlace(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(pub)
	st := newState(
		core.Transaction{ID: "a", Type: core.Expense, Amount: core.Cents(100), Category: "Food", Date: core.NewDate(2024, 3, 1)},
		core.Transaction{ID: "b", Type: core.Expense, Amount: core.Cents(200), Category: "Bills", Date: core.NewDate(2024, 2, 1)},
	)
	d := core.DraftFrom(st.Records(core.Expense)[1])
	d.Amount = "3"
	d.Type = "income"

	got, err := svc.Update(context.Background(), &fakeAPI{}, st, core.Expense, d)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Type != core.Expense {
		t.Fatalf("type must not change on edit, got %s", got.Type)
	}
	recs := st.Records(core.Expense)
	if recs[1].ID != "b" || recs[1].Amount.Cents != 300 || recs[1].Description != "server copy" {
		t.Fatalf("record not replaced in place: %+v", recs)
	}
	if len(pub.events) != 1 || pub.events[0].Action != amqp.ActionUpdated {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestUpdateNotFoundLeavesCache(t *testing.T) {
	svc := newService(nil)
	orig := core.Transaction{ID: "a", Type: core.Expense, Amount: core.Cents(100), Category: "Food", Date: core.NewDate(2024, 3, 1)}
	st := newState(orig)
	d := core.DraftFrom(orig)
	d.Amount = "99"

	_, err := svc.Update(context.Background(), &fakeAPI{err: &api.Error{StatusCode: 404, Message: "Expense not found"}}, st, core.Expense, d)
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := st.Records(core.Expense)[0]; got.Amount.Cents != 100 {
		t.Fatalf("cache changed on failure: %+v", got)
	}

	if _, err := svc.Update(context.Background(), &fakeAPI{}, st, core.Expense, core.Draft{}); !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(pub)
	st := newState(
		core.Transaction{ID: "a", Type: core.Income, Amount: core.Cents(100), Category: "Gift", Date: core.NewDate(2024, 3, 1)},
		core.Transaction{ID: "b", Type: core.Income, Amount: core.Cents(200), Category: "Salary", Date: core.NewDate(2024, 2, 1)},
	)

	if err := svc.Delete(context.Background(), &fakeAPI{err: api.ErrNotFound}, st, core.Income, "a"); !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(st.Records(core.Income)) != 2 {
		t.Fatalf("failed delete must leave the cache")
	}

	if err := svc.Delete(context.Background(), &fakeAPI{}, st, core.Income, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	recs := st.Records(core.Income)
	if len(recs) != 1 || recs[0].ID != "b" {
		t.Fatalf("unexpected cache %+v", recs)
	}
	if len(pub.events) != 1 || pub.events[0].Transaction.Category != "Gift" {
		t.Fatalf("deleted event should carry the cached record: %+v", pub.events)
	}
	if st.Summary().TotalIncome.Cents != 200 {
		t.Fatalf("summary should follow the cache")
	}
}
