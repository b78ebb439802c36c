// Package services provides the application business logic
package services

import (
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/pkg/config"
)

// EngagementService recalculates the qualification score and tier from the
// full behavioral state of a visitor session.
type EngagementService struct {
	cfg    *config.Engagement
	logger *logging.ChanneledLogger
}

// NewEngagementService creates a new engagement scoring service.
func NewEngagementService(cfg *config.Engagement, logger *logging.ChanneledLogger) *EngagementService {
	return &EngagementService{cfg: cfg, logger: logger}
}

// Recalculate recomputes the engagement score and tier in place. The score
// is a pure function of session state and the supplied clock reading, so
// replaying the same state always yields the same score.
func (s *EngagementService) Recalculate(vs *session.VisitorSession, now time.Time) {
	score := 0.0

	for _, page := range vs.PagesVisited {
		score += float64(s.cfg.PageValue(page))
	}

	if vs.QuestionsAsked > 0 {
		score += float64(vs.QuestionsAsked*12 + (vs.QuestionsAsked-1)*5)
	}

	timeScore := float64(vs.Elapsed(now)) / 6.0
	if timeScore > 30 {
		timeScore = 30
	}
	score += timeScore

	score += float64(vs.ScrollPercentage) * 0.3

	for _, signal := range vs.IntentSignals {
		score += float64(signal.ScoreBoost)
	}

	if vs.UniquePageCount() >= s.cfg.Thresholds.PageVarietyThreshold {
		score += 15
	}

	vs.EngagementScore = int(score)
	vs.Tier = qualify(vs.EngagementScore)

	s.logger.Engagement().Debug("Recalculated engagement",
		"sessionId", vs.SessionID,
		"score", vs.EngagementScore,
		"tier", vs.Tier,
	)
}

// qualify maps a score to its qualification tier.
func qualify(score int) session.Tier {
	switch {
	case score >= 100:
		return session.TierVeryHot
	case score >= 75:
		return session.TierHot
	case score >= 50:
		return session.TierWarm
	default:
		return session.TierCold
	}
}
