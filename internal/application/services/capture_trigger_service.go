package services

import (
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/pkg/config"
)

// CaptureTriggerService decides when the lead capture form and the contextual
// nudge should be surfaced for a session.
type CaptureTriggerService struct {
	cfg    *config.Engagement
	logger *logging.ChanneledLogger
}

// NewCaptureTriggerService creates a new capture trigger service.
func NewCaptureTriggerService(cfg *config.Engagement, logger *logging.ChanneledLogger) *CaptureTriggerService {
	return &CaptureTriggerService{cfg: cfg, logger: logger}
}

// ShouldTriggerCapture reports whether the lead form should auto-surface.
// The primary path is the capture score threshold. The secondary path needs
// at least two high-intent behaviors plus the high intent score floor. Any
// prior trigger, decline, or completed capture blocks re-triggering.
func (s *CaptureTriggerService) ShouldTriggerCapture(vs *session.VisitorSession, now time.Time) bool {
	if vs.LeadCaptured || vs.TriggerState.Blocked() {
		return false
	}

	t := s.cfg.Thresholds

	if vs.EngagementScore >= t.LeadCaptureScore {
		s.logger.Engagement().Debug("Capture trigger via score threshold",
			"sessionId", vs.SessionID, "score", vs.EngagementScore)
		return true
	}

	secondary := 0
	if vs.ScrollPercentage >= t.ScrollThreshold {
		secondary++
	}
	if vs.Elapsed(now) >= t.TimeThresholdSeconds {
		secondary++
	}
	if vs.QuestionsAsked >= t.QuestionThreshold {
		secondary++
	}
	if vs.UniquePageCount() >= t.PageVarietyThreshold {
		secondary++
	}

	if secondary >= 2 && vs.EngagementScore >= t.HighIntentScore {
		s.logger.Engagement().Debug("Capture trigger via secondary signals",
			"sessionId", vs.SessionID, "score", vs.EngagementScore, "signals", secondary)
		return true
	}
	return false
}

// ShouldShowNudge reports whether the contextual nudge should be shown.
// The nudge fires at most once per session and never competes with the
// capture form or follows a decline.
func (s *CaptureTriggerService) ShouldShowNudge(vs *session.VisitorSession) bool {
	if vs.LeadCaptured || vs.NudgeShown || vs.TriggerState.Blocked() {
		return false
	}
	return vs.EngagementScore >= s.cfg.Thresholds.HighIntentScore
}
