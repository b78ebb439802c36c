// Package services provides event processing orchestration
package services

import (
	"fmt"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	domainEvents "github.com/flipkraft/flipkraft-go/internal/domain/events"
	"github.com/flipkraft/flipkraft-go/internal/domain/repositories"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/caching/stores"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/messaging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/pkg/config"
)

// EventProcessingService applies behavioral events to a session, rescores it,
// and evaluates whether the capture form or nudge should surface.
type EventProcessingService struct {
	sessions   *stores.SessionsStore
	engagement *EngagementService
	trigger    *CaptureTriggerService
	actionRepo repositories.ActionRepository
	cfg        *config.Engagement
	logger     *logging.ChanneledLogger
}

// NewEventProcessingService creates a new event processing service with its dependencies.
func NewEventProcessingService(
	sessions *stores.SessionsStore,
	engagement *EngagementService,
	trigger *CaptureTriggerService,
	actionRepo repositories.ActionRepository,
	cfg *config.Engagement,
	logger *logging.ChanneledLogger,
) *EventProcessingService {
	return &EventProcessingService{
		sessions:   sessions,
		engagement: engagement,
		trigger:    trigger,
		actionRepo: actionRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

// ProcessEventsWithSSE is the main entry point for applying a batch of events
// to a session. Every event reruns scoring and trigger evaluation, and the
// updated state is pushed to the session's SSE clients.
func (s *EventProcessingService) ProcessEventsWithSSE(
	sessionID string,
	events []domainEvents.Event,
	now time.Time,
	broadcaster messaging.Broadcaster,
) (session.Snapshot, error) {
	var snap session.Snapshot
	var formTriggered bool
	var nudgeMessage string

	err := s.sessions.WithSession(sessionID, func(vs *session.VisitorSession) error {
		for _, event := range events {
			switch event.Type {
			case domainEvents.TypePageView:
				s.processPageView(vs, event, now)
			case domainEvents.TypeScroll:
				s.processScroll(vs, event, now)
			case domainEvents.TypeSignal:
				s.processSignal(vs, event, now)
			default:
				s.logger.Engagement().Warn("Unknown event type ignored",
					"type", event.Type, "sessionId", sessionID)
				continue
			}

			s.engagement.Recalculate(vs, now)

			if s.trigger.ShouldTriggerCapture(vs, now) {
				vs.TriggerState = session.TriggerPending
				formTriggered = true
			} else if s.trigger.ShouldShowNudge(vs) {
				vs.NudgeShown = true
				nudgeMessage = nudgeContext(vs) + s.cfg.NudgeMessage(vs.CurrentPage)
			}
		}

		vs.Touch(now)
		snap = vs.Snapshot()
		return nil
	})
	if err != nil {
		return session.Snapshot{}, err
	}

	if formTriggered {
		s.logger.Engagement().Info("Lead capture form triggered",
			"sessionId", sessionID, "score", snap.EngagementScore)
		broadcaster.BroadcastFormTrigger(sessionID)
	} else if nudgeMessage != "" {
		s.logger.Engagement().Info("Nudge shown",
			"sessionId", sessionID, "page", snap.CurrentPage)
		broadcaster.BroadcastNudge(sessionID, nudgeMessage)
	}

	broadcaster.BroadcastEngagement(sessionID, snap)
	return snap, nil
}

// ProcessQuestionWithSSE records a visitor question as engagement. The
// question counter increments and a fixed-weight signal labeled with the
// question's first 50 characters is appended, then scoring and trigger
// evaluation rerun exactly as for behavioral events.
func (s *EventProcessingService) ProcessQuestionWithSSE(
	sessionID, question string,
	now time.Time,
	broadcaster messaging.Broadcaster,
) (session.Snapshot, error) {
	label := question
	if runes := []rune(label); len(runes) > 50 {
		label = string(runes[:50])
	}

	var snap session.Snapshot
	var formTriggered bool
	var nudgeMessage string

	err := s.sessions.WithSession(sessionID, func(vs *session.VisitorSession) error {
		vs.AddQuestion()
		s.recordSignal(vs, fmt.Sprintf("Asked question: %s...", label), 10, now)

		s.engagement.Recalculate(vs, now)

		if s.trigger.ShouldTriggerCapture(vs, now) {
			vs.TriggerState = session.TriggerPending
			formTriggered = true
		} else if s.trigger.ShouldShowNudge(vs) {
			vs.NudgeShown = true
			nudgeMessage = nudgeContext(vs) + s.cfg.NudgeMessage(vs.CurrentPage)
		}

		vs.Touch(now)
		snap = vs.Snapshot()
		return nil
	})
	if err != nil {
		return session.Snapshot{}, err
	}

	if formTriggered {
		s.logger.Engagement().Info("Lead capture form triggered",
			"sessionId", sessionID, "score", snap.EngagementScore)
		broadcaster.BroadcastFormTrigger(sessionID)
	} else if nudgeMessage != "" {
		s.logger.Engagement().Info("Nudge shown",
			"sessionId", sessionID, "page", snap.CurrentPage)
		broadcaster.BroadcastNudge(sessionID, nudgeMessage)
	}

	broadcaster.BroadcastEngagement(sessionID, snap)
	return snap, nil
}

// processPageView records a navigation. A first-ever visit to a page earns a
// weighted intent signal; revisits and same-page navigations earn nothing.
func (s *EventProcessingService) processPageView(vs *session.VisitorSession, event domainEvents.Event, now time.Time) {
	if !vs.VisitPage(event.Page) {
		return
	}
	s.recordSignal(vs, fmt.Sprintf("Visited high-value page: %s", event.Page), s.cfg.PageValue(event.Page), now)
}

// processScroll raises the scroll high-water mark and awards the milestone
// crossed by this update, deep scroll taking precedence over complete read.
func (s *EventProcessingService) processScroll(vs *session.VisitorSession, event domainEvents.Event, now time.Time) {
	old := vs.RaiseScroll(event.Percentage)
	cur := vs.ScrollPercentage

	if old < 70 && cur >= 70 {
		s.recordSignal(vs, "Deep scroll engagement", 15, now)
	} else if old < 90 && cur >= 90 {
		s.recordSignal(vs, "Complete page read", 10, now)
	}
}

// processSignal records an explicit high-intent signal from the client.
func (s *EventProcessingService) processSignal(vs *session.VisitorSession, event domainEvents.Event, now time.Time) {
	if event.Label == "" {
		return
	}
	s.recordSignal(vs, event.Label, event.ScoreBoost, now)
}

// nudgeContext prefixes the nudge with a sentence acknowledging the behavior
// that earned it. Questions outrank deep scrolling, which outranks browsing
// breadth.
func nudgeContext(vs *session.VisitorSession) string {
	switch {
	case vs.QuestionsAsked >= 2:
		return "I see you've been asking great questions! "
	case vs.ScrollPercentage >= 70:
		return "I noticed you've been exploring the page thoroughly! "
	case len(vs.PagesVisited) >= 3:
		return "You've been checking out different sections - that's great! "
	}
	return ""
}

// recordSignal appends the signal to the session and mirrors it into the
// actions table. The database write is best-effort.
func (s *EventProcessingService) recordSignal(vs *session.VisitorSession, label string, boost int, now time.Time) {
	vs.AddIntentSignal(session.IntentSignal{
		Timestamp:  now,
		Label:      label,
		ScoreBoost: boost,
		Page:       vs.CurrentPage,
	})

	if err := s.actionRepo.LogAction(vs.SessionID, label, boost, vs.CurrentPage, now); err != nil {
		s.logger.Database().Warn("Failed to log action",
			"error", err, "sessionId", vs.SessionID, "label", label)
	}
}
