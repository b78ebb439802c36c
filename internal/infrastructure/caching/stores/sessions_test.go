package stores

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
)

func newStore(t *testing.T, max int) *SessionsStore {
	t.Helper()
	return NewSessionsStore(max, logging.NewTestLogger())
}

func TestSessionsStorePutAndGet(t *testing.T) {
	store := newStore(t, 10)
	vs := session.NewVisitorSession("s1", "/home", time.Now())

	if err := store.Put(vs); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := store.Get("s1")
	if !ok {
		t.Fatal("expected session to exist")
	}
	if got.SessionID != "s1" {
		t.Errorf("SessionID = %q, want %q", got.SessionID, "s1")
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("expected missing session to not exist")
	}
}

func TestSessionsStoreCapacity(t *testing.T) {
	store := newStore(t, 2)
	now := time.Now()

	if err := store.Put(session.NewVisitorSession("s1", "/home", now)); err != nil {
		t.Fatalf("Put s1: %v", err)
	}
	if err := store.Put(session.NewVisitorSession("s2", "/home", now)); err != nil {
		t.Fatalf("Put s2: %v", err)
	}
	if err := store.Put(session.NewVisitorSession("s3", "/home", now)); !errors.Is(err, ErrStoreFull) {
		t.Fatalf("Put s3: err = %v, want ErrStoreFull", err)
	}

	// Replacing an existing session does not count against capacity.
	if err := store.Put(session.NewVisitorSession("s2", "/pricing", now)); err != nil {
		t.Fatalf("Put replacement s2: %v", err)
	}
}

func TestSessionsStoreWithSessionMissing(t *testing.T) {
	store := newStore(t, 10)
	err := store.WithSession("gone", func(*session.VisitorSession) error { return nil })
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionsStoreWithSessionSerializes(t *testing.T) {
	store := newStore(t, 10)
	vs := session.NewVisitorSession("s1", "/home", time.Now())
	if err := store.Put(vs); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Concurrent increments must not lose updates.
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithSession("s1", func(s *session.VisitorSession) error {
				s.AddQuestion()
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := store.Get("s1")
	if got.QuestionsAsked != 100 {
		t.Errorf("QuestionsAsked = %d, want 100", got.QuestionsAsked)
	}
}

func TestSessionsStoreEvictExpired(t *testing.T) {
	store := newStore(t, 10)
	now := time.Now()

	fresh := session.NewVisitorSession("fresh", "/home", now)
	fresh.LastActivity = now
	stale := session.NewVisitorSession("stale", "/home", now.Add(-time.Hour))
	stale.LastActivity = now.Add(-time.Hour)

	if err := store.Put(fresh); err != nil {
		t.Fatalf("Put fresh: %v", err)
	}
	if err := store.Put(stale); err != nil {
		t.Fatalf("Put stale: %v", err)
	}

	evicted := store.EvictExpired(30*time.Minute, now)
	if evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}
	if _, ok := store.Get("stale"); ok {
		t.Error("stale session should have been evicted")
	}
	if _, ok := store.Get("fresh"); !ok {
		t.Error("fresh session should remain")
	}
}

func TestSessionsStoreCountActive(t *testing.T) {
	store := newStore(t, 10)
	now := time.Now()

	active := session.NewVisitorSession("active", "/home", now)
	active.LastActivity = now.Add(-time.Minute)
	idle := session.NewVisitorSession("idle", "/home", now)
	idle.LastActivity = now.Add(-time.Hour)

	if err := store.Put(active); err != nil {
		t.Fatalf("Put active: %v", err)
	}
	if err := store.Put(idle); err != nil {
		t.Fatalf("Put idle: %v", err)
	}

	if got := store.CountActive(5*time.Minute, now); got != 1 {
		t.Errorf("CountActive = %d, want 1", got)
	}
	if got := store.Count(); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}
}
