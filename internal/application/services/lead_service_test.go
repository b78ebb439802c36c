package services

import (
	"errors"
	"testing"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/leads"
	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/caching/stores"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/pkg/config"
)

type leadFixture struct {
	svc       *LeadService
	store     *stores.SessionsStore
	leadRepo  *fakeLeadRepo
	actions   *fakeActionRepo
	email     *fakeEmail
	broadcast *fakeBroadcaster
	start     time.Time
}

func newLeadFixture(t *testing.T) *leadFixture {
	t.Helper()

	logger := logging.NewTestLogger()
	cfg := config.DefaultEngagement()
	store := stores.NewSessionsStore(100, logger)
	leadRepo := &fakeLeadRepo{}
	actions := &fakeActionRepo{}
	mail := &fakeEmail{}

	svc := NewLeadService(
		store,
		NewEngagementService(cfg, logger),
		leadRepo,
		actions,
		mail,
		logger,
	)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	vs := session.NewVisitorSession("s1", "/home", start)
	vs.TriggerState = session.TriggerShown
	if err := store.Put(vs); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	return &leadFixture{
		svc:       svc,
		store:     store,
		leadRepo:  leadRepo,
		actions:   actions,
		email:     mail,
		broadcast: &fakeBroadcaster{},
		start:     start,
	}
}

func validSubmission() leads.Submission {
	return leads.Submission{
		FullName:  "Jordan Blake",
		WorkEmail: "jordan@acme.com",
		Company:   "Acme Corp",
		JobTitle:  "VP Engineering",
	}
}

func TestSubmitCapturesLead(t *testing.T) {
	f := newLeadFixture(t)
	now := f.start.Add(90 * time.Second)

	record, snap, err := f.svc.Submit("s1", validSubmission(), now, f.broadcast)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if !snap.LeadCaptured {
		t.Error("expected LeadCaptured")
	}
	if snap.TriggerState != session.TriggerAccepted {
		t.Errorf("TriggerState = %q, want accepted", snap.TriggerState)
	}
	if record.TimeToCaptureSeconds != 90 {
		t.Errorf("TimeToCaptureSeconds = %d, want 90", record.TimeToCaptureSeconds)
	}
	if record.PagesVisited != "/home" {
		t.Errorf("PagesVisited = %q, want /home", record.PagesVisited)
	}
	if len(f.leadRepo.records) != 1 {
		t.Fatalf("persisted records = %d, want 1", len(f.leadRepo.records))
	}
	if len(f.broadcast.engagements) != 1 {
		t.Errorf("engagement broadcasts = %d, want 1", len(f.broadcast.engagements))
	}
}

func TestSubmitRejectsInvalidSubmission(t *testing.T) {
	f := newLeadFixture(t)

	sub := leads.Submission{FullName: "  ", WorkEmail: "not-an-email", Company: ""}
	_, _, err := f.svc.Submit("s1", sub, f.start, f.broadcast)

	var verr *ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(verr.Fields) != 3 {
		t.Errorf("field errors = %v, want 3 entries", verr.Fields)
	}
	if len(f.leadRepo.records) != 0 {
		t.Error("invalid submission must not persist")
	}
}

func TestSubmitIsTerminal(t *testing.T) {
	f := newLeadFixture(t)

	if _, _, err := f.svc.Submit("s1", validSubmission(), f.start, f.broadcast); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	_, _, err := f.svc.Submit("s1", validSubmission(), f.start, f.broadcast)
	if !errors.Is(err, ErrLeadAlreadyCaptured) {
		t.Fatalf("second Submit err = %v, want ErrLeadAlreadyCaptured", err)
	}
	if len(f.leadRepo.records) != 1 {
		t.Errorf("records = %d, want exactly 1", len(f.leadRepo.records))
	}
}

func TestSubmitSinkFailureKeepsSessionOpen(t *testing.T) {
	f := newLeadFixture(t)
	f.leadRepo.err = errors.New("disk full")

	_, _, err := f.svc.Submit("s1", validSubmission(), f.start, f.broadcast)

	var serr *ErrSinkUnavailable
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v, want ErrSinkUnavailable", err)
	}

	vs, _ := f.store.Get("s1")
	if vs.LeadCaptured {
		t.Error("sink failure must not mark the lead captured")
	}
	if vs.TriggerState != session.TriggerShown {
		t.Errorf("TriggerState = %q, want shown (retry possible)", vs.TriggerState)
	}

	// Retry succeeds once the sink recovers.
	f.leadRepo.err = nil
	if _, _, err := f.svc.Submit("s1", validSubmission(), f.start, f.broadcast); err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
}

func TestSubmitNotifiesSalesForHotLeads(t *testing.T) {
	f := newLeadFixture(t)
	config.SalesNotifyEmail = "sales@flipkraft.com"
	defer func() { config.SalesNotifyEmail = "" }()

	// Pump the score into hot territory before submitting.
	vs, _ := f.store.Get("s1")
	vs.IntentSignals = append(vs.IntentSignals, session.IntentSignal{Label: "Accepted lead capture nudge", ScoreBoost: 90})

	record, _, err := f.svc.Submit("s1", validSubmission(), f.start, f.broadcast)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if record.LeadQuality != string(session.TierHot) {
		t.Fatalf("LeadQuality = %q, want hot", record.LeadQuality)
	}
	if len(f.email.sent) != 1 {
		t.Errorf("notifications sent = %d, want 1", len(f.email.sent))
	}
}

func TestSubmitSkipsNotificationForColdLeads(t *testing.T) {
	f := newLeadFixture(t)
	config.SalesNotifyEmail = "sales@flipkraft.com"
	defer func() { config.SalesNotifyEmail = "" }()

	if _, _, err := f.svc.Submit("s1", validSubmission(), f.start, f.broadcast); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(f.email.sent) != 0 {
		t.Errorf("notifications sent = %d, want 0 for a cold lead", len(f.email.sent))
	}
}

func TestMarkShownTransitionsPendingOnly(t *testing.T) {
	f := newLeadFixture(t)

	vs, _ := f.store.Get("s1")
	vs.TriggerState = session.TriggerPending

	snap, err := f.svc.MarkShown("s1", f.start, f.broadcast)
	if err != nil {
		t.Fatalf("MarkShown: %v", err)
	}
	if snap.TriggerState != session.TriggerShown {
		t.Errorf("TriggerState = %q, want shown", snap.TriggerState)
	}

	// Acknowledging again is a no-op, not an error.
	snap, err = f.svc.MarkShown("s1", f.start, f.broadcast)
	if err != nil {
		t.Fatalf("second MarkShown: %v", err)
	}
	if snap.TriggerState != session.TriggerShown {
		t.Errorf("TriggerState after repeat = %q, want shown", snap.TriggerState)
	}
}

func TestDeclineBlocksAndLogsNegativeAction(t *testing.T) {
	f := newLeadFixture(t)

	snap, err := f.svc.Decline("s1", f.start, f.broadcast)
	if err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if snap.TriggerState != session.TriggerDeclined {
		t.Errorf("TriggerState = %q, want declined", snap.TriggerState)
	}
	if snap.EngagementScore != 0 {
		t.Errorf("decline must not change the score, got %d", snap.EngagementScore)
	}

	if len(f.actions.actions) != 1 {
		t.Fatalf("actions = %d, want 1", len(f.actions.actions))
	}
	if f.actions.actions[0].Weight != -5 {
		t.Errorf("decline action weight = %d, want -5", f.actions.actions[0].Weight)
	}
}

func TestAcceptNudgeBoostsScoreAndSurfacesForm(t *testing.T) {
	f := newLeadFixture(t)

	vs, _ := f.store.Get("s1")
	vs.TriggerState = session.TriggerNone
	vs.NudgeShown = true

	snap, err := f.svc.AcceptNudge("s1", f.start, f.broadcast)
	if err != nil {
		t.Fatalf("AcceptNudge: %v", err)
	}

	// /home (5) + the 25 point acceptance signal.
	if snap.EngagementScore != 30 {
		t.Errorf("EngagementScore = %d, want 30", snap.EngagementScore)
	}
	if snap.TriggerState != session.TriggerPending {
		t.Errorf("TriggerState = %q, want pending", snap.TriggerState)
	}
	if f.broadcast.formTriggers != 1 {
		t.Errorf("form triggers = %d, want 1", f.broadcast.formTriggers)
	}
}

func TestForceTriggerReopensDeclinedSession(t *testing.T) {
	f := newLeadFixture(t)

	vs, _ := f.store.Get("s1")
	vs.TriggerState = session.TriggerDeclined

	snap, err := f.svc.ForceTrigger("s1", f.start, f.broadcast)
	if err != nil {
		t.Fatalf("ForceTrigger: %v", err)
	}
	if snap.TriggerState != session.TriggerPending {
		t.Errorf("TriggerState = %q, want pending", snap.TriggerState)
	}
	if f.broadcast.formTriggers != 1 {
		t.Errorf("form triggers = %d, want 1", f.broadcast.formTriggers)
	}
}

func TestForceTriggerRefusesCapturedSession(t *testing.T) {
	f := newLeadFixture(t)

	if _, _, err := f.svc.Submit("s1", validSubmission(), f.start, f.broadcast); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	snap, err := f.svc.ForceTrigger("s1", f.start, f.broadcast)
	if err != nil {
		t.Fatalf("ForceTrigger: %v", err)
	}
	if snap.TriggerState != session.TriggerAccepted {
		t.Errorf("TriggerState = %q, want accepted untouched", snap.TriggerState)
	}
}
