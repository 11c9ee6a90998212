package memory

import (
	"context"
	"sync"
	"testing"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

func TestLedgerAppend(t *testing.T) {
	l := New(nil)
	ref, err := l.AppendEntry(context.Background(), ports.Entry{EventID: "e1", Type: core.Expense, Amount: core.Cents(100)})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	ref, _ = l.AppendEntry(context.Background(), ports.Entry{EventID: "e2"})
	if ref != "mem:2" {
		t.Fatalf("refs should count up, got %q", ref)
	}

	got := l.Entries()
	got[0].EventID = "mutated"
	if l.Entries()[0].EventID != "e1" {
		t.Fatal("Entries must return a copy")
	}
}

func TestLedgerConcurrentAppend(t *testing.T) {
	l := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.AppendEntry(context.Background(), ports.Entry{})
		}()
	}
	wg.Wait()
	if n := len(l.Entries()); n != 20 {
		t.Fatalf("expected 20 entries, got %d", n)
	}
}
