package cache

import (
	"testing"
	"time"

	applog "fintrack/internal/log"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	var evicted []string
	c.OnEvict(func(key string, _ string) { evicted = append(evicted, key) })

	c.Set("a", "1")
	c.Set("b", "2")
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a to be cached")
	}
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted as least recently used")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("unexpected evictions %v", evicted)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUCacheGetOrSet(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)

	got, loaded := c.GetOrSet("a", "first")
	if loaded || got != "first" {
		t.Fatalf("empty cache should store the value, got %q loaded=%v", got, loaded)
	}
	got, loaded = c.GetOrSet("a", "second")
	if !loaded || got != "first" {
		t.Fatalf("existing value should win, got %q loaded=%v", got, loaded)
	}

	clock.t = clock.t.Add(2 * time.Minute)
	got, loaded = c.GetOrSet("a", "third")
	if loaded || got != "third" {
		t.Fatalf("expired value should be replaced, got %q loaded=%v", got, loaded)
	}
	if c.Size() != 1 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	clock.t = clock.t.Add(45 * time.Second)
	if !c.Touch("a") {
		t.Fatalf("Touch should find a")
	}

	clock.t = clock.t.Add(30 * time.Second)
	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have expired")
	}
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("touched entry should still be live")
	}

	clock.t = clock.t.Add(2 * time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUCacheDeleteSkipsEvictHook(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	called := false
	c.OnEvict(func(string, string) { called = true })
	c.Set("a", "1")
	c.Delete("a")
	if called {
		t.Fatalf("Delete must not run the evict hook")
	}
	if c.Touch("a") {
		t.Fatalf("Touch on a deleted key must report false")
	}
}

func TestManagerCleanNow(t *testing.T) {
	c1, clock1 := newTestCache(5, time.Second)
	c2, _ := newTestCache(5, time.Hour)
	c1.Set("x", "1")
	c2.Set("y", "2")
	clock1.t = clock1.t.Add(time.Minute)

	m := NewManager(applog.New(applog.DefaultConfig()))
	m.Register(c1)
	m.Register(c2)
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("CleanNow = %d, want 1", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
}
