package services

import (
	"testing"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/pkg/config"
)

func newEngagementService(t *testing.T) *EngagementService {
	t.Helper()
	return NewEngagementService(config.DefaultEngagement(), logging.NewTestLogger())
}

func TestRecalculateFullFormula(t *testing.T) {
	svc := newEngagementService(t)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now := start.Add(120 * time.Second)

	vs := session.NewVisitorSession("s1", "/home", start)
	vs.PagesVisited = []string{"/home", "/pricing", "/security"}
	vs.QuestionsAsked = 2
	vs.ScrollPercentage = 85
	vs.IntentSignals = []session.IntentSignal{
		{Label: "Visited high-value page: /pricing", ScoreBoost: 25},
		{Label: "Visited high-value page: /security", ScoreBoost: 20},
		{Label: "Deep scroll engagement", ScoreBoost: 15},
	}

	// pages 5+25+20=50, questions 2*12+1*5=29, time min(120/6,30)=20,
	// scroll 85*0.3=25.5, signals 60, variety bonus 15. Sum 199.5 -> 199.
	svc.Recalculate(vs, now)

	if vs.EngagementScore != 199 {
		t.Errorf("EngagementScore = %d, want 199", vs.EngagementScore)
	}
	if vs.Tier != session.TierVeryHot {
		t.Errorf("Tier = %q, want very_hot", vs.Tier)
	}
}

func TestRecalculateIsDeterministic(t *testing.T) {
	svc := newEngagementService(t)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now := start.Add(77 * time.Second)

	vs := session.NewVisitorSession("s1", "/pricing", start)
	vs.QuestionsAsked = 1
	vs.ScrollPercentage = 42

	svc.Recalculate(vs, now)
	first := vs.EngagementScore

	for i := 0; i < 5; i++ {
		svc.Recalculate(vs, now)
		if vs.EngagementScore != first {
			t.Fatalf("score drifted on recalculation %d: %d != %d", i, vs.EngagementScore, first)
		}
	}
}

func TestRecalculateTimeScoreCaps(t *testing.T) {
	svc := newEngagementService(t)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	vs := session.NewVisitorSession("s1", "/home", start)

	// 1 hour on site: time component capped at 30, /home worth 5.
	svc.Recalculate(vs, start.Add(time.Hour))
	if vs.EngagementScore != 35 {
		t.Errorf("EngagementScore = %d, want 35", vs.EngagementScore)
	}
}

func TestQualifyTierBounds(t *testing.T) {
	tests := []struct {
		score int
		want  session.Tier
	}{
		{100, session.TierVeryHot},
		{99, session.TierHot},
		{75, session.TierHot},
		{74, session.TierWarm},
		{50, session.TierWarm},
		{49, session.TierCold},
		{0, session.TierCold},
	}

	for _, tt := range tests {
		if got := qualify(tt.score); got != tt.want {
			t.Errorf("qualify(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestRecalculateVarietyBonusBoundary(t *testing.T) {
	svc := newEngagementService(t)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	two := session.NewVisitorSession("s1", "/home", start)
	two.PagesVisited = []string{"/home", "/support"}
	svc.Recalculate(two, start)

	three := session.NewVisitorSession("s2", "/home", start)
	three.PagesVisited = []string{"/home", "/support", "/features"}
	svc.Recalculate(three, start)

	// 5+5=10 without the bonus, 5+5+10+15=35 with it.
	if two.EngagementScore != 10 {
		t.Errorf("two pages: score = %d, want 10", two.EngagementScore)
	}
	if three.EngagementScore != 35 {
		t.Errorf("three pages: score = %d, want 35", three.EngagementScore)
	}
}
