// Package session provides domain entities for visitor session state.
// It defines the per-visitor record that the engagement scorer, qualification
// classifier, and capture-trigger decider all operate on.
package session

import "time"

// Tier is the ordinal lead qualification bucket derived from the score.
type Tier string

const (
	TierCold    Tier = "cold"
	TierWarm    Tier = "warm"
	TierHot     Tier = "hot"
	TierVeryHot Tier = "very_hot"
)

// TriggerState is the single authoritative signal for whether the capture
// form is currently owed to the visitor.
type TriggerState string

const (
	TriggerNone     TriggerState = "none"
	TriggerPending  TriggerState = "pending"
	TriggerShown    TriggerState = "shown"
	TriggerDeclined TriggerState = "declined"
	TriggerAccepted TriggerState = "accepted"
)

// Blocked reports whether automatic trigger evaluation may no longer move the
// state to pending.
func (ts TriggerState) Blocked() bool {
	return ts != TriggerNone
}

// IntentSignal is a discrete, weighted event contributing to the score.
type IntentSignal struct {
	Timestamp  time.Time `json:"timestamp"`
	Label      string    `json:"label"`
	ScoreBoost int       `json:"scoreBoost"`
	Page       string    `json:"page"`
}

// VisitorSession is the per-visitor mutable record for one browsing session.
// All mutations happen through methods so the append-only and high-water
// invariants hold; the derived fields (EngagementScore, Tier) are recomputed
// by the engagement service after every mutation.
type VisitorSession struct {
	SessionID        string            `json:"sessionId"`
	StartTime        time.Time         `json:"startTime"`
	PagesVisited     []string          `json:"pagesVisited"`
	CurrentPage      string            `json:"currentPage"`
	ScrollPercentage int               `json:"scrollPercentage"`
	QuestionsAsked   int               `json:"questionsAsked"`
	IntentSignals    []IntentSignal    `json:"intentSignals"`
	EngagementScore  int               `json:"engagementScore"`
	Tier             Tier              `json:"qualificationTier"`
	LeadCaptured     bool              `json:"leadCaptured"`
	TriggerState     TriggerState      `json:"formTriggerState"`
	NudgeShown       bool              `json:"nudgeShown"`
	LeadData         map[string]string `json:"leadData,omitempty"`
	LastActivity     time.Time         `json:"lastActivity"`
}

// NewVisitorSession creates a fresh session landing on startPage.
func NewVisitorSession(sessionID, startPage string, now time.Time) *VisitorSession {
	return &VisitorSession{
		SessionID:    sessionID,
		StartTime:    now,
		PagesVisited: []string{startPage},
		CurrentPage:  startPage,
		Tier:         TierCold,
		TriggerState: TriggerNone,
		LastActivity: now,
	}
}

// VisitPage records a navigation. Navigating to the current page is a no-op.
// Returns true when this is the first visit to the page, which is the only
// case that earns a page-visit intent signal.
func (vs *VisitorSession) VisitPage(page string) bool {
	if page == vs.CurrentPage {
		return false
	}
	vs.CurrentPage = page
	for _, visited := range vs.PagesVisited {
		if visited == page {
			return false
		}
	}
	vs.PagesVisited = append(vs.PagesVisited, page)
	return true
}

// RaiseScroll updates the scroll high-water mark and returns the previous
// value. The mark never decreases within a session.
func (vs *VisitorSession) RaiseScroll(percentage int) int {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	old := vs.ScrollPercentage
	if percentage > old {
		vs.ScrollPercentage = percentage
	}
	return old
}

// AddQuestion increments the question counter and returns the new count.
func (vs *VisitorSession) AddQuestion() int {
	vs.QuestionsAsked++
	return vs.QuestionsAsked
}

// AddIntentSignal appends an immutable signal entry.
func (vs *VisitorSession) AddIntentSignal(sig IntentSignal) {
	vs.IntentSignals = append(vs.IntentSignals, sig)
}

// UniquePageCount returns the number of distinct pages visited. PagesVisited
// is duplicate-suppressed at the point of mutation, so this is its length.
func (vs *VisitorSession) UniquePageCount() int {
	return len(vs.PagesVisited)
}

// Touch updates the last activity timestamp.
func (vs *VisitorSession) Touch(now time.Time) {
	vs.LastActivity = now
}

// Elapsed returns whole seconds since the session started.
func (vs *VisitorSession) Elapsed(now time.Time) int {
	return int(now.Sub(vs.StartTime).Seconds())
}

// Snapshot is the read-only view handed to collaborators (answer generation,
// SSE payloads, the UI state endpoint).
type Snapshot struct {
	SessionID        string       `json:"sessionId"`
	CurrentPage      string       `json:"currentPage"`
	PagesVisited     []string     `json:"pagesVisited"`
	ScrollPercentage int          `json:"scrollPercentage"`
	QuestionsAsked   int          `json:"questionsAsked"`
	EngagementScore  int          `json:"engagementScore"`
	Tier             Tier         `json:"qualificationTier"`
	TriggerState     TriggerState `json:"formTriggerState"`
	NudgeShown       bool         `json:"nudgeShown"`
	LeadCaptured     bool         `json:"leadCaptured"`
}

// Snapshot captures the current externally visible state.
func (vs *VisitorSession) Snapshot() Snapshot {
	pages := make([]string, len(vs.PagesVisited))
	copy(pages, vs.PagesVisited)
	return Snapshot{
		SessionID:        vs.SessionID,
		CurrentPage:      vs.CurrentPage,
		PagesVisited:     pages,
		ScrollPercentage: vs.ScrollPercentage,
		QuestionsAsked:   vs.QuestionsAsked,
		EngagementScore:  vs.EngagementScore,
		Tier:             vs.Tier,
		TriggerState:     vs.TriggerState,
		NudgeShown:       vs.NudgeShown,
		LeadCaptured:     vs.LeadCaptured,
	}
}
