package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/session"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "sessions", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	s := session.Session{
		ID:        "s1",
		User:      core.User{ID: "u1", Name: "Asha", Email: "asha@example.com"},
		Token:     "tok",
		CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		ExpiresAt: time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
	}
	if err := repo.SaveSession(ctx, s); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, err := repo.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.User != s.User || got.Token != "tok" || !got.ExpiresAt.Equal(s.ExpiresAt) || !got.CreatedAt.Equal(s.CreatedAt) {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	s.User.Name = "Asha K"
	if err := repo.SaveSession(ctx, s); err != nil {
		t.Fatalf("SaveSession update: %v", err)
	}
	if got, _ := repo.GetSession(ctx, "s1"); got.User.Name != "Asha K" {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := repo.GetSession(ctx, "s1"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteSession(ctx, "s1"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("second delete should report ErrNotFound, got %v", err)
	}
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for id, exp := range map[string]time.Time{
		"old":  now.Add(-time.Hour),
		"edge": now,
		"live": now.Add(time.Hour),
	} {
		if err := repo.SaveSession(ctx, session.Session{ID: id, User: core.User{ID: "u"}, Token: "t", CreatedAt: now, ExpiresAt: exp}); err != nil {
			t.Fatalf("SaveSession %s: %v", id, err)
		}
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil || n != 2 {
		t.Fatalf("DeleteExpired = %d, %v", n, err)
	}
	if _, err := repo.GetSession(ctx, "live"); err != nil {
		t.Fatalf("live session should remain: %v", err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	for i := 0; i < 2; i++ {
		if err := RunMigrations(path); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
}
