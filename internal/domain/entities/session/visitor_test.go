package session

import (
	"testing"
	"time"
)

func newSession() *VisitorSession {
	return NewVisitorSession("01TEST", "/home", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestVisitPageSuppressesDuplicates(t *testing.T) {
	vs := newSession()

	if first := vs.VisitPage("/pricing"); !first {
		t.Error("first visit to /pricing should report true")
	}
	if first := vs.VisitPage("/pricing"); first {
		t.Error("navigating to the current page should be a no-op")
	}
	if first := vs.VisitPage("/home"); first {
		t.Error("returning to a previously visited page should not report a first visit")
	}
	if vs.CurrentPage != "/home" {
		t.Errorf("current page should track navigation, got %s", vs.CurrentPage)
	}

	want := []string{"/home", "/pricing"}
	if len(vs.PagesVisited) != len(want) {
		t.Fatalf("expected %v, got %v", want, vs.PagesVisited)
	}
	for i := range want {
		if vs.PagesVisited[i] != want[i] {
			t.Errorf("pages_visited[%d] = %s, want %s (first-visit order must be preserved)", i, vs.PagesVisited[i], want[i])
		}
	}
}

func TestRaiseScrollIsHighWaterMark(t *testing.T) {
	vs := newSession()

	if old := vs.RaiseScroll(60); old != 0 {
		t.Errorf("expected previous value 0, got %d", old)
	}
	if old := vs.RaiseScroll(40); old != 60 {
		t.Errorf("expected previous value 60, got %d", old)
	}
	if vs.ScrollPercentage != 60 {
		t.Errorf("scroll must never decrease, got %d", vs.ScrollPercentage)
	}

	vs.RaiseScroll(250)
	if vs.ScrollPercentage != 100 {
		t.Errorf("scroll should clamp to 100, got %d", vs.ScrollPercentage)
	}
}

func TestAddQuestionIncrements(t *testing.T) {
	vs := newSession()
	if n := vs.AddQuestion(); n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
	if n := vs.AddQuestion(); n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
}

func TestIntentSignalsAppendOnly(t *testing.T) {
	vs := newSession()
	vs.AddIntentSignal(IntentSignal{Label: "a", ScoreBoost: 10, Page: "/home"})
	vs.AddIntentSignal(IntentSignal{Label: "b", ScoreBoost: -5, Page: "/home"})

	if len(vs.IntentSignals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(vs.IntentSignals))
	}
	if vs.IntentSignals[0].Label != "a" || vs.IntentSignals[1].Label != "b" {
		t.Error("signal order must be preserved")
	}
}

func TestTriggerStateBlocked(t *testing.T) {
	tests := []struct {
		state   TriggerState
		blocked bool
	}{
		{TriggerNone, false},
		{TriggerPending, true},
		{TriggerShown, true},
		{TriggerDeclined, true},
		{TriggerAccepted, true},
	}
	for _, tt := range tests {
		if got := tt.state.Blocked(); got != tt.blocked {
			t.Errorf("%s.Blocked() = %v, want %v", tt.state, got, tt.blocked)
		}
	}
}

func TestSnapshotCopiesPages(t *testing.T) {
	vs := newSession()
	vs.VisitPage("/pricing")

	snap := vs.Snapshot()
	snap.PagesVisited[0] = "/mutated"

	if vs.PagesVisited[0] != "/home" {
		t.Error("snapshot must not share backing storage with the session")
	}
}
