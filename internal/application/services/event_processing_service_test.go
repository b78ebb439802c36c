package services

import (
	"strings"
	"testing"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	domainEvents "github.com/flipkraft/flipkraft-go/internal/domain/events"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/caching/stores"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/pkg/config"
)

type eventFixture struct {
	svc       *EventProcessingService
	store     *stores.SessionsStore
	actions   *fakeActionRepo
	broadcast *fakeBroadcaster
	start     time.Time
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()

	logger := logging.NewTestLogger()
	cfg := config.DefaultEngagement()
	store := stores.NewSessionsStore(100, logger)
	actions := &fakeActionRepo{}

	svc := NewEventProcessingService(
		store,
		NewEngagementService(cfg, logger),
		NewCaptureTriggerService(cfg, logger),
		actions,
		cfg,
		logger,
	)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if err := store.Put(session.NewVisitorSession("s1", "/home", start)); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	return &eventFixture{
		svc:       svc,
		store:     store,
		actions:   actions,
		broadcast: &fakeBroadcaster{},
		start:     start,
	}
}

func TestProcessPageViewFirstVisitEarnsSignal(t *testing.T) {
	f := newEventFixture(t)

	snap, err := f.svc.ProcessEventsWithSSE("s1", []domainEvents.Event{
		{Type: domainEvents.TypePageView, Page: "/pricing"},
	}, f.start, f.broadcast)
	if err != nil {
		t.Fatalf("ProcessEventsWithSSE: %v", err)
	}

	if len(snap.PagesVisited) != 2 {
		t.Errorf("PagesVisited = %v, want 2 pages", snap.PagesVisited)
	}
	if len(f.actions.actions) != 1 {
		t.Fatalf("actions logged = %d, want 1", len(f.actions.actions))
	}
	got := f.actions.actions[0]
	if got.Label != "Visited high-value page: /pricing" || got.Weight != 25 {
		t.Errorf("action = %+v, want pricing visit worth 25", got)
	}

	// Revisiting the same page earns nothing further.
	vs, _ := f.store.Get("s1")
	vs.CurrentPage = "/home"
	if _, err := f.svc.ProcessEventsWithSSE("s1", []domainEvents.Event{
		{Type: domainEvents.TypePageView, Page: "/pricing"},
	}, f.start, f.broadcast); err != nil {
		t.Fatalf("revisit: %v", err)
	}
	if len(f.actions.actions) != 1 {
		t.Errorf("actions after revisit = %d, want still 1", len(f.actions.actions))
	}
}

func TestProcessScrollMilestones(t *testing.T) {
	t.Run("single jump past both marks awards only deep scroll", func(t *testing.T) {
		f := newEventFixture(t)

		if _, err := f.svc.ProcessEventsWithSSE("s1", []domainEvents.Event{
			{Type: domainEvents.TypeScroll, Percentage: 95},
		}, f.start, f.broadcast); err != nil {
			t.Fatalf("scroll: %v", err)
		}

		if len(f.actions.actions) != 1 {
			t.Fatalf("actions = %d, want 1", len(f.actions.actions))
		}
		if f.actions.actions[0].Label != "Deep scroll engagement" {
			t.Errorf("label = %q, want deep scroll", f.actions.actions[0].Label)
		}
	})

	t.Run("separate crossings award both milestones", func(t *testing.T) {
		f := newEventFixture(t)

		if _, err := f.svc.ProcessEventsWithSSE("s1", []domainEvents.Event{
			{Type: domainEvents.TypeScroll, Percentage: 75},
			{Type: domainEvents.TypeScroll, Percentage: 95},
		}, f.start, f.broadcast); err != nil {
			t.Fatalf("scroll: %v", err)
		}

		if len(f.actions.actions) != 2 {
			t.Fatalf("actions = %d, want 2", len(f.actions.actions))
		}
		if f.actions.actions[0].Label != "Deep scroll engagement" {
			t.Errorf("first label = %q", f.actions.actions[0].Label)
		}
		if f.actions.actions[1].Label != "Complete page read" {
			t.Errorf("second label = %q", f.actions.actions[1].Label)
		}
	})

	t.Run("scroll regression never lowers the mark", func(t *testing.T) {
		f := newEventFixture(t)

		snap, err := f.svc.ProcessEventsWithSSE("s1", []domainEvents.Event{
			{Type: domainEvents.TypeScroll, Percentage: 80},
			{Type: domainEvents.TypeScroll, Percentage: 30},
		}, f.start, f.broadcast)
		if err != nil {
			t.Fatalf("scroll: %v", err)
		}
		if snap.ScrollPercentage != 80 {
			t.Errorf("ScrollPercentage = %d, want 80", snap.ScrollPercentage)
		}
	})
}

func TestProcessQuestionTruncatesLabel(t *testing.T) {
	f := newEventFixture(t)

	long := strings.Repeat("a", 80)
	snap, err := f.svc.ProcessQuestionWithSSE("s1", long, f.start, f.broadcast)
	if err != nil {
		t.Fatalf("ProcessQuestionWithSSE: %v", err)
	}

	if snap.QuestionsAsked != 1 {
		t.Errorf("QuestionsAsked = %d, want 1", snap.QuestionsAsked)
	}
	want := "Asked question: " + strings.Repeat("a", 50) + "..."
	if f.actions.actions[0].Label != want {
		t.Errorf("label = %q, want %q", f.actions.actions[0].Label, want)
	}
	if f.actions.actions[0].Weight != 10 {
		t.Errorf("weight = %d, want 10", f.actions.actions[0].Weight)
	}
}

func TestHighEngagementTriggersForm(t *testing.T) {
	f := newEventFixture(t)

	snap, err := f.svc.ProcessEventsWithSSE("s1", []domainEvents.Event{
		{Type: domainEvents.TypePageView, Page: "/pricing"},
		{Type: domainEvents.TypePageView, Page: "/security"},
	}, f.start, f.broadcast)
	if err != nil {
		t.Fatalf("ProcessEventsWithSSE: %v", err)
	}

	if snap.TriggerState != session.TriggerPending {
		t.Errorf("TriggerState = %q, want pending", snap.TriggerState)
	}
	if f.broadcast.formTriggers != 1 {
		t.Errorf("form triggers broadcast = %d, want 1", f.broadcast.formTriggers)
	}
	if len(f.broadcast.engagements) == 0 {
		t.Error("expected engagement broadcast")
	}
}

func TestModerateEngagementShowsNudge(t *testing.T) {
	f := newEventFixture(t)

	// /home + /pricing pages (30) plus the visit signal (25) lands at 55:
	// above the nudge floor, below every capture path.
	snap, err := f.svc.ProcessEventsWithSSE("s1", []domainEvents.Event{
		{Type: domainEvents.TypePageView, Page: "/pricing"},
	}, f.start, f.broadcast)
	if err != nil {
		t.Fatalf("ProcessEventsWithSSE: %v", err)
	}

	if !snap.NudgeShown {
		t.Error("expected NudgeShown latch to be set")
	}
	if snap.TriggerState != session.TriggerNone {
		t.Errorf("TriggerState = %q, want none", snap.TriggerState)
	}
	if len(f.broadcast.nudges) != 1 {
		t.Fatalf("nudges broadcast = %d, want 1", len(f.broadcast.nudges))
	}
	if !strings.Contains(f.broadcast.nudges[0], "pricing") {
		t.Errorf("nudge = %q, want the pricing nudge", f.broadcast.nudges[0])
	}
}

func TestNudgePrefixedWithQuestionContext(t *testing.T) {
	f := newEventFixture(t)

	// Two questions from /home land at 54: nudge territory, with the
	// question count earning the context sentence.
	if _, err := f.svc.ProcessQuestionWithSSE("s1", "Do you support SSO?", f.start, f.broadcast); err != nil {
		t.Fatalf("ProcessQuestionWithSSE: %v", err)
	}
	snap, err := f.svc.ProcessQuestionWithSSE("s1", "What about SCIM?", f.start, f.broadcast)
	if err != nil {
		t.Fatalf("ProcessQuestionWithSSE: %v", err)
	}

	if !snap.NudgeShown {
		t.Fatal("expected NudgeShown latch to be set")
	}
	if len(f.broadcast.nudges) != 1 {
		t.Fatalf("nudges broadcast = %d, want 1", len(f.broadcast.nudges))
	}
	if !strings.HasPrefix(f.broadcast.nudges[0], "I see you've been asking great questions! ") {
		t.Errorf("nudge = %q, want the question context prefix", f.broadcast.nudges[0])
	}
}

func TestUnknownEventTypeIgnored(t *testing.T) {
	f := newEventFixture(t)

	snap, err := f.svc.ProcessEventsWithSSE("s1", []domainEvents.Event{
		{Type: "Teleport", Page: "/mars"},
	}, f.start, f.broadcast)
	if err != nil {
		t.Fatalf("ProcessEventsWithSSE: %v", err)
	}
	if len(snap.PagesVisited) != 1 || snap.EngagementScore != 0 {
		t.Errorf("unknown event mutated state: %+v", snap)
	}
}

func TestProcessEventsMissingSession(t *testing.T) {
	f := newEventFixture(t)

	if _, err := f.svc.ProcessEventsWithSSE("ghost", []domainEvents.Event{
		{Type: domainEvents.TypeScroll, Percentage: 50},
	}, f.start, f.broadcast); err == nil {
		t.Fatal("expected error for unknown session")
	}
}
