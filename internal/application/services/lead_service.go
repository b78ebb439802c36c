package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/leads"
	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	"github.com/flipkraft/flipkraft-go/internal/domain/repositories"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/caching/stores"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/email"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/messaging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/security"
	"github.com/flipkraft/flipkraft-go/pkg/config"
)

// ErrLeadAlreadyCaptured is returned when a session tries to capture twice.
var ErrLeadAlreadyCaptured = errors.New("lead already captured for session")

// ErrValidation carries field-level validation errors from a submission.
type ErrValidation struct {
	Fields map[string]string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("submission invalid: %d field errors", len(e.Fields))
}

// ErrSinkUnavailable wraps a persistence failure so handlers can map it to a
// distinct status. The session stays pending and the visitor may retry.
type ErrSinkUnavailable struct {
	Err error
}

func (e *ErrSinkUnavailable) Error() string {
	return fmt.Sprintf("lead sink unavailable: %v", e.Err)
}

func (e *ErrSinkUnavailable) Unwrap() error {
	return e.Err
}

// LeadService owns the capture form lifecycle: nudge responses, form
// visibility transitions, and lead submission.
type LeadService struct {
	sessions   *stores.SessionsStore
	engagement *EngagementService
	leadRepo   repositories.LeadRepository
	actionRepo repositories.ActionRepository
	emailSvc   email.Service
	logger     *logging.ChanneledLogger
}

// NewLeadService creates a new lead capture service. emailSvc may be nil
// when no notification provider is configured.
func NewLeadService(
	sessions *stores.SessionsStore,
	engagement *EngagementService,
	leadRepo repositories.LeadRepository,
	actionRepo repositories.ActionRepository,
	emailSvc email.Service,
	logger *logging.ChanneledLogger,
) *LeadService {
	return &LeadService{
		sessions:   sessions,
		engagement: engagement,
		leadRepo:   leadRepo,
		actionRepo: actionRepo,
		emailSvc:   emailSvc,
		logger:     logger,
	}
}

// MarkShown acknowledges that the client rendered the capture form, moving
// the trigger state from pending to shown. Acknowledging a form that was
// never owed is a no-op.
func (s *LeadService) MarkShown(sessionID string, now time.Time, broadcaster messaging.Broadcaster) (session.Snapshot, error) {
	return s.transition(sessionID, now, broadcaster, func(vs *session.VisitorSession) {
		if vs.TriggerState == session.TriggerPending {
			vs.TriggerState = session.TriggerShown
		}
	})
}

// Decline records that the visitor dismissed the capture form. A decline
// permanently blocks automatic re-triggering for this session. The decline
// is mirrored into the actions table with negative weight for analytics but
// never feeds back into the score.
func (s *LeadService) Decline(sessionID string, now time.Time, broadcaster messaging.Broadcaster) (session.Snapshot, error) {
	snap, err := s.transition(sessionID, now, broadcaster, func(vs *session.VisitorSession) {
		vs.TriggerState = session.TriggerDeclined
	})
	if err != nil {
		return session.Snapshot{}, err
	}

	if logErr := s.actionRepo.LogAction(sessionID, "Declined lead capture nudge", -5, snap.CurrentPage, now); logErr != nil {
		s.logger.Database().Warn("Failed to log decline action", "error", logErr, "sessionId", sessionID)
	}

	s.logger.Leads().Info("Capture declined", "sessionId", sessionID)
	return snap, nil
}

// AcceptNudge records that the visitor accepted the contextual nudge. The
// acceptance earns a strong intent signal and surfaces the capture form.
func (s *LeadService) AcceptNudge(sessionID string, now time.Time, broadcaster messaging.Broadcaster) (session.Snapshot, error) {
	snap, err := s.transition(sessionID, now, broadcaster, func(vs *session.VisitorSession) {
		vs.AddIntentSignal(session.IntentSignal{
			Timestamp:  now,
			Label:      "Accepted lead capture nudge",
			ScoreBoost: 25,
			Page:       vs.CurrentPage,
		})
		s.engagement.Recalculate(vs, now)
		if !vs.LeadCaptured {
			vs.TriggerState = session.TriggerPending
		}
	})
	if err != nil {
		return session.Snapshot{}, err
	}

	if logErr := s.actionRepo.LogAction(sessionID, "Accepted lead capture nudge", 25, snap.CurrentPage, now); logErr != nil {
		s.logger.Database().Warn("Failed to log accept action", "error", logErr, "sessionId", sessionID)
	}

	if snap.TriggerState == session.TriggerPending {
		broadcaster.BroadcastFormTrigger(sessionID)
	}

	s.logger.Leads().Info("Nudge accepted", "sessionId", sessionID, "score", snap.EngagementScore)
	return snap, nil
}

// ForceTrigger surfaces the capture form regardless of prior declines. This
// is the admin override for demos and the behavior simulator.
func (s *LeadService) ForceTrigger(sessionID string, now time.Time, broadcaster messaging.Broadcaster) (session.Snapshot, error) {
	snap, err := s.transition(sessionID, now, broadcaster, func(vs *session.VisitorSession) {
		if !vs.LeadCaptured {
			vs.TriggerState = session.TriggerPending
		}
	})
	if err != nil {
		return session.Snapshot{}, err
	}

	if snap.TriggerState == session.TriggerPending {
		broadcaster.BroadcastFormTrigger(sessionID)
	}

	s.logger.Leads().Info("Capture form force-triggered", "sessionId", sessionID)
	return snap, nil
}

// Submit validates and persists a lead submission. The session flips to
// captured only after the sink write succeeds; on sink failure the trigger
// state stays where it was so the visitor can retry.
func (s *LeadService) Submit(
	sessionID string,
	sub leads.Submission,
	now time.Time,
	broadcaster messaging.Broadcaster,
) (*leads.Record, session.Snapshot, error) {
	sub.Trim()
	if fieldErrs := sub.Validate(); len(fieldErrs) > 0 {
		return nil, session.Snapshot{}, &ErrValidation{Fields: fieldErrs}
	}

	var record *leads.Record
	var snap session.Snapshot

	err := s.sessions.WithSession(sessionID, func(vs *session.VisitorSession) error {
		if vs.LeadCaptured {
			s.logger.Leads().Error("Duplicate capture attempt rejected", "sessionId", sessionID)
			return ErrLeadAlreadyCaptured
		}

		s.engagement.Recalculate(vs, now)

		rec := &leads.Record{
			ID:                   security.GenerateULID(),
			CaptureTimestamp:     now,
			SessionID:            vs.SessionID,
			FullName:             sub.FullName,
			WorkEmail:            sub.WorkEmail,
			Company:              sub.Company,
			JobTitle:             sub.JobTitle,
			CompanySize:          sub.CompanySize,
			Phone:                sub.Phone,
			UseCase:              sub.UseCase,
			QualificationScore:   vs.EngagementScore,
			LeadQuality:          string(vs.Tier),
			PagesVisited:         strings.Join(vs.PagesVisited, ", "),
			QuestionsAsked:       vs.QuestionsAsked,
			TimeToCaptureSeconds: vs.Elapsed(now),
			ScrollPercentage:     vs.ScrollPercentage,
		}

		if err := s.leadRepo.Append(rec); err != nil {
			s.logger.Leads().Error("Lead sink write failed, keeping session open",
				"error", err, "sessionId", sessionID)
			return &ErrSinkUnavailable{Err: err}
		}

		vs.LeadCaptured = true
		vs.TriggerState = session.TriggerAccepted
		vs.LeadData = map[string]string{
			"fullName":  sub.FullName,
			"workEmail": sub.WorkEmail,
			"company":   sub.Company,
		}
		vs.Touch(now)

		record = rec
		snap = vs.Snapshot()
		return nil
	})
	if err != nil {
		return nil, session.Snapshot{}, err
	}

	s.logger.Leads().Info("Lead captured",
		"sessionId", sessionID,
		"leadId", record.ID,
		"score", record.QualificationScore,
		"quality", record.LeadQuality,
	)

	s.notifySales(record)
	broadcaster.BroadcastEngagement(sessionID, snap)
	return record, snap, nil
}

// notifySales sends the sales notification email for hot leads. Failures are
// logged and never surface to the visitor.
func (s *LeadService) notifySales(record *leads.Record) {
	if s.emailSvc == nil || config.SalesNotifyEmail == "" {
		return
	}
	if record.LeadQuality != string(session.TierHot) && record.LeadQuality != string(session.TierVeryHot) {
		return
	}

	if err := s.emailSvc.SendLeadNotificationEmail(config.SalesNotifyEmail, *record); err != nil {
		s.logger.Leads().Warn("Failed to send lead notification email",
			"error", err, "leadId", record.ID)
	}
}

// transition applies fn under the session lock and broadcasts the resulting
// engagement state.
func (s *LeadService) transition(
	sessionID string,
	now time.Time,
	broadcaster messaging.Broadcaster,
	fn func(*session.VisitorSession),
) (session.Snapshot, error) {
	var snap session.Snapshot
	err := s.sessions.WithSession(sessionID, func(vs *session.VisitorSession) error {
		fn(vs)
		vs.Touch(now)
		snap = vs.Snapshot()
		return nil
	})
	if err != nil {
		return session.Snapshot{}, err
	}

	broadcaster.BroadcastEngagement(sessionID, snap)
	return snap, nil
}
