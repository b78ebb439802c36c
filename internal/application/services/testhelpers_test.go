package services

import (
	"sync"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/leads"
	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
)

// fakeBroadcaster records broadcast calls for assertions.
type fakeBroadcaster struct {
	mu           sync.Mutex
	engagements  []session.Snapshot
	formTriggers int
	nudges       []string
}

func (f *fakeBroadcaster) AddClient(sessionID string) chan string         { return make(chan string, 1) }
func (f *fakeBroadcaster) RemoveClient(ch chan string, sessionID string)  {}
func (f *fakeBroadcaster) GetSessionConnectionCount(sessionID string) int { return 0 }

func (f *fakeBroadcaster) BroadcastEngagement(sessionID string, snap session.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.engagements = append(f.engagements, snap)
}

func (f *fakeBroadcaster) BroadcastFormTrigger(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formTriggers++
}

func (f *fakeBroadcaster) BroadcastNudge(sessionID, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nudges = append(f.nudges, message)
}

// loggedAction is one recorded LogAction call.
type loggedAction struct {
	SessionID string
	Label     string
	Weight    int
	Page      string
}

// fakeActionRepo records actions in memory.
type fakeActionRepo struct {
	mu      sync.Mutex
	actions []loggedAction
	err     error
}

func (f *fakeActionRepo) LogAction(sessionID, label string, weight int, page string, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, loggedAction{SessionID: sessionID, Label: label, Weight: weight, Page: page})
	return nil
}

func (f *fakeActionRepo) CountSessions() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	for _, a := range f.actions {
		seen[a.SessionID] = true
	}
	return len(seen), nil
}

// fakeLeadRepo is an in-memory lead sink with an injectable failure.
type fakeLeadRepo struct {
	mu      sync.Mutex
	records []*leads.Record
	err     error
}

func (f *fakeLeadRepo) Append(record *leads.Record) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeLeadRepo) FindRecent(limit int) ([]*leads.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.records) {
		limit = len(f.records)
	}
	out := make([]*leads.Record, 0, limit)
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.records[i])
	}
	return out, nil
}

func (f *fakeLeadRepo) CountAll() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records), nil
}

func (f *fakeLeadRepo) CountSince(since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.records {
		if !r.CaptureTimestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeLeadRepo) CountHot() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.records {
		if r.LeadQuality == "hot" || r.LeadQuality == "very_hot" {
			count++
		}
	}
	return count, nil
}

func (f *fakeLeadRepo) AverageScore() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) == 0 {
		return 0, nil
	}
	sum := 0
	for _, r := range f.records {
		sum += r.QualificationScore
	}
	return float64(sum) / float64(len(f.records)), nil
}

func (f *fakeLeadRepo) AverageTimeToCapture() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) == 0 {
		return 0, nil
	}
	sum := 0
	for _, r := range f.records {
		sum += r.TimeToCaptureSeconds
	}
	return float64(sum) / float64(len(f.records)), nil
}

// fakeEmail records sent notifications.
type fakeEmail struct {
	mu   sync.Mutex
	sent []leads.Record
}

func (f *fakeEmail) SendLeadNotificationEmail(toEmail string, record leads.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, record)
	return nil
}
