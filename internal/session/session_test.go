package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

type fakeLister struct {
	calls    atomic.Int32
	expenses []core.Transaction
	incomes  []core.Transaction
	err      error
}

func (f *fakeLister) ListTransactions(ctx context.Context, t core.TransactionType) ([]core.Transaction, error) {
	f.calls.Add(1)
	if f.err != nil && t == core.Income {
		return nil, f.err
	}
	if t == core.Income {
		return f.incomes, nil
	}
	return f.expenses, nil
}

func tx(id string, typ core.TransactionType, cents int64) core.Transaction {
	cat := "Food"
	if typ == core.Income {
		cat = "Salary"
	}
	return core.Transaction{ID: id, Type: typ, Amount: core.Cents(cents), Category: cat, Date: core.NewDate(2024, 1, 1)}
}

func TestStateLoadAndMutations(t *testing.T) {
	l := &fakeLister{
		expenses: []core.Transaction{tx("e1", core.Expense, 1000)},
		incomes:  []core.Transaction{tx("i1", core.Income, 5000)},
	}
	st := NewState(Session{ID: "s1"})
	if st.Loaded() {
		t.Fatalf("new state must not be loaded")
	}
	if err := st.EnsureLoaded(context.Background(), l); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}
	if err := st.EnsureLoaded(context.Background(), l); err != nil {
		t.Fatalf("EnsureLoaded: %v", err)
	}
	if n := l.calls.Load(); n != 2 {
		t.Fatalf("expected one fetch per type, got %d calls", n)
	}

	if s := st.Summary(); s.Balance.Cents != 4000 {
		t.Fatalf("unexpected summary %+v", s)
	}

	st.Prepend(tx("e2", core.Expense, 500))
	recs := st.Records(core.Expense)
	if len(recs) != 2 || recs[0].ID != "e2" {
		t.Fatalf("new record must be first, got %+v", recs)
	}
	if s := st.Summary(); s.TotalExpense.Cents != 1500 || s.Balance.Cents != 3500 {
		t.Fatalf("summary must follow the create, got %+v", s)
	}

	updated := tx("e1", core.Expense, 2500)
	if !st.Replace(updated) {
		t.Fatalf("Replace should find e1")
	}
	if got, _ := st.Find(core.Expense, "e1"); got.Amount.Cents != 2500 {
		t.Fatalf("Replace did not apply: %+v", got)
	}
	if st.Replace(tx("nope", core.Expense, 1)) {
		t.Fatalf("Replace of an unknown id must report false")
	}

	if !st.Remove(core.Expense, "e2") || st.Remove(core.Expense, "e2") {
		t.Fatalf("Remove should succeed once")
	}
	if s := st.Summary(); s.TotalExpense.Cents != 2500 {
		t.Fatalf("summary must follow the delete, got %+v", s)
	}

	recs[0].Amount = core.Cents(1)
	if got, _ := st.Find(core.Expense, "e1"); got.Amount.Cents != 2500 {
		t.Fatalf("Records must return a copy")
	}
}

func TestStateLoadFailureKeepsCaches(t *testing.T) {
	st := NewState(Session{ID: "s1"})
	st.Prepend(tx("keep", core.Expense, 100))

	l := &fakeLister{expenses: []core.Transaction{tx("new", core.Expense, 1)}, err: errors.New("backend down")}
	if err := st.Load(context.Background(), l); err == nil {
		t.Fatalf("expected load error")
	}
	if st.Loaded() {
		t.Fatalf("failed load must not mark the state loaded")
	}
	if recs := st.Records(core.Expense); len(recs) != 1 || recs[0].ID != "keep" {
		t.Fatalf("failed load must not replace caches, got %+v", recs)
	}
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	got, ok := TokenExpiry(signed(t, jwt.MapClaims{"exp": exp.Unix()}))
	if !ok || !got.Equal(exp) {
		t.Fatalf("got %v, %v", got, ok)
	}
	if _, ok := TokenExpiry(signed(t, jwt.MapClaims{"sub": "u1"})); ok {
		t.Fatalf("token without exp must report false")
	}
	if _, ok := TokenExpiry("opaque-token"); ok {
		t.Fatalf("non-JWT token must report false")
	}
}

func newTestManager(store Store, now time.Time) *Manager {
	m := NewManager(store, ManagerConfig{TTL: time.Hour, CacheSize: 1}, applog.Discard())
	m.now = func() time.Time { return now }
	return m
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m := newTestManager(store, now)

	user := core.User{ID: "u1", Name: "Asha"}
	st, err := m.Create(ctx, user, "opaque")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !st.Session().ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("opaque token should use the configured ttl, got %v", st.Session().ExpiresAt)
	}

	got, err := m.Get(ctx, st.ID())
	if err != nil || got != st {
		t.Fatalf("Get should return the live state, got %v (err=%v)", got, err)
	}

	// A second session pushes the first out of the one-slot live cache.
	other, err := m.Create(ctx, core.User{ID: "u2"}, "opaque")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rehydrated, err := m.Get(ctx, st.ID())
	if err != nil {
		t.Fatalf("Get after eviction: %v", err)
	}
	if rehydrated == st || rehydrated.User().Name != "Asha" || rehydrated.Loaded() {
		t.Fatalf("expected a fresh unloaded state for the persisted session")
	}

	if err := m.Destroy(ctx, other.ID()); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if _, err := m.Get(ctx, other.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after destroy, got %v", err)
	}
	if err := m.Destroy(ctx, "unknown"); err != nil {
		t.Fatalf("destroying an unknown id should not fail: %v", err)
	}
}

func TestManagerColdLoadSharesState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(store, ManagerConfig{TTL: time.Hour, CacheSize: 10}, applog.Discard())
	m.now = func() time.Time { return now }

	s := Session{ID: "cold", User: core.User{ID: "u1"}, Token: "opaque", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	if err := store.SaveSession(ctx, s); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	const workers = 16
	states := make([]*State, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st, err := m.Get(ctx, "cold")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			states[i] = st
		}()
	}
	wg.Wait()

	live, err := m.Get(ctx, "cold")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for i, st := range states {
		if st != live {
			t.Fatalf("request %d got an orphaned state", i)
		}
	}
}

func TestManagerExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m := newTestManager(store, now)

	token := signed(t, jwt.MapClaims{"exp": now.Add(10 * time.Minute).Unix()})
	st, err := m.Create(ctx, core.User{ID: "u1"}, token)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !st.Session().ExpiresAt.Equal(now.Add(10 * time.Minute)) {
		t.Fatalf("token expiry should win over ttl, got %v", st.Session().ExpiresAt)
	}

	m.now = func() time.Time { return now.Add(11 * time.Minute) }
	if _, err := m.Get(ctx, st.ID()); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if _, err := store.GetSession(ctx, st.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session should be removed from the store")
	}
}

func TestMemoryStoreDeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	_ = store.SaveSession(ctx, Session{ID: "old", ExpiresAt: now.Add(-time.Minute)})
	_ = store.SaveSession(ctx, Session{ID: "new", ExpiresAt: now.Add(time.Minute)})

	n, err := store.DeleteExpired(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpired = %d, %v", n, err)
	}
	if _, err := store.GetSession(ctx, "new"); err != nil {
		t.Fatalf("live session should remain: %v", err)
	}
}
