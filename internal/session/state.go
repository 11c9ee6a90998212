package session

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// Lister fetches the full record list of one type.
type Lister interface {
	ListTransactions(ctx context.Context, t core.TransactionType) ([]core.Transaction, error)
}

// State is the live, in-memory view of one session. Caches are ordered
// most-recent-first and only ever change through Load or the mutation
// methods, which callers invoke with the server's returned representation.
type State struct {
	mu       sync.RWMutex
	session  Session
	expenses []core.Transaction
	incomes  []core.Transaction
	loaded   bool
}

func NewState(s Session) *State {
	return &State{session: s}
}

func (s *State) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *State) ID() string {
	return s.Session().ID
}

func (s *State) Token() string {
	return s.Session().Token
}

func (s *State) User() core.User {
	return s.Session().User
}

// SetUser replaces the cached profile after an edit.
func (s *State) SetUser(u core.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.User = u
}

func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Load fetches both record lists in parallel and replaces the caches.
// If either fetch fails nothing is replaced.
func (s *State) Load(ctx context.Context, l Lister) error {
	var expenses, incomes []core.Transaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = l.ListTransactions(gctx, core.Expense)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = l.ListTransactions(gctx, core.Income)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = expenses
	s.incomes = incomes
	s.loaded = true
	return nil
}

// EnsureLoaded loads the caches the first time they are needed.
func (s *State) EnsureLoaded(ctx context.Context, l Lister) error {
	if s.Loaded() {
		return nil
	}
	return s.Load(ctx, l)
}

func (s *State) cache(t core.TransactionType) *[]core.Transaction {
	if t == core.Income {
		return &s.incomes
	}
	return &s.expenses
}

// Records returns a copy of the cache for t.
func (s *State) Records(t core.TransactionType) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(*s.cache(t))
}

// Find looks a record up by id.
func (s *State) Find(t core.TransactionType, id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range *s.cache(t) {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

// Prepend puts a newly created record at the head of its cache.
func (s *State) Prepend(tx core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cache(tx.Type)
	*c = append([]core.Transaction{tx}, *c...)
}

// Replace swaps the record with the same id in place. It reports false
// when the id is not cached.
func (s *State) Replace(tx core.Transaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cache(tx.Type)
	i := slices.IndexFunc(*c, func(x core.Transaction) bool { return x.ID == tx.ID })
	if i < 0 {
		return false
	}
	next := slices.Clone(*c)
	next[i] = tx
	*c = next
	return true
}

// Remove drops the record with id from the cache of t.
func (s *State) Remove(t core.TransactionType, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cache(t)
	i := slices.IndexFunc(*c, func(x core.Transaction) bool { return x.ID == id })
	if i < 0 {
		return false
	}
	*c = slices.Delete(slices.Clone(*c), i, i+1)
	return true
}

// Summary is recomputed from the caches on every call.
func (s *State) Summary() report.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return report.Summarize(s.expenses, s.incomes)
}
