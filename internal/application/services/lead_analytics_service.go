package services

import (
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/leads"
	"github.com/flipkraft/flipkraft-go/internal/domain/repositories"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/caching/stores"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/messaging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
)

// activeSessionWindow bounds how recently a session must have been touched
// to count as active in the dashboard.
const activeSessionWindow = 45 * time.Minute

// LeadAnalyticsService aggregates lead funnel metrics for the admin
// dashboard. It also feeds the websocket dashboard broadcaster.
type LeadAnalyticsService struct {
	leadRepo   repositories.LeadRepository
	actionRepo repositories.ActionRepository
	sessions   *stores.SessionsStore
	logger     *logging.ChanneledLogger
}

// NewLeadAnalyticsService creates a new lead analytics service.
func NewLeadAnalyticsService(
	leadRepo repositories.LeadRepository,
	actionRepo repositories.ActionRepository,
	sessions *stores.SessionsStore,
	logger *logging.ChanneledLogger,
) *LeadAnalyticsService {
	return &LeadAnalyticsService{
		leadRepo:   leadRepo,
		actionRepo: actionRepo,
		sessions:   sessions,
		logger:     logger,
	}
}

// RecentLeads returns the newest captured leads, newest first.
func (s *LeadAnalyticsService) RecentLeads(limit int) ([]*leads.Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.leadRepo.FindRecent(limit)
}

// Metrics assembles the dashboard metrics snapshot from the lead store and
// the live session cache. Implements messaging.MetricsSource.
func (s *LeadAnalyticsService) Metrics(now time.Time) (messaging.DashboardPayload, error) {
	total, err := s.leadRepo.CountAll()
	if err != nil {
		return messaging.DashboardPayload{}, err
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.leadRepo.CountSince(midnight)
	if err != nil {
		return messaging.DashboardPayload{}, err
	}

	hot, err := s.leadRepo.CountHot()
	if err != nil {
		return messaging.DashboardPayload{}, err
	}

	avgScore, err := s.leadRepo.AverageScore()
	if err != nil {
		return messaging.DashboardPayload{}, err
	}

	avgCapture, err := s.leadRepo.AverageTimeToCapture()
	if err != nil {
		return messaging.DashboardPayload{}, err
	}

	allTime, err := s.actionRepo.CountSessions()
	if err != nil {
		return messaging.DashboardPayload{}, err
	}

	return messaging.DashboardPayload{
		TotalLeads:      total,
		LeadsToday:      today,
		HotLeads:        hot,
		AverageScore:    avgScore,
		AverageCaptureS: avgCapture,
		LiveSessions:    s.sessions.Count(),
		ActiveSessions:  s.sessions.CountActive(activeSessionWindow, now),
		SessionsAllTime: allTime,
		GeneratedAt:     now.UTC().Format(time.RFC3339),
	}, nil
}
