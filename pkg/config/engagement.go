package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// EngagementThresholds holds the trigger thresholds for lead capture decisions.
type EngagementThresholds struct {
	LeadCaptureScore      int `json:"leadCaptureScore"`      // Score threshold to trigger lead capture
	HighIntentScore       int `json:"highIntentScore"`       // Score for showing interest nudges
	ScrollThreshold       int `json:"scrollThreshold"`       // Percentage scrolled
	TimeThresholdSeconds  int `json:"timeThresholdSeconds"`  // Seconds on site
	QuestionThreshold     int `json:"questionThreshold"`     // Number of questions asked
	PageVarietyThreshold  int `json:"pageVarietyThreshold"`  // Different pages visited
}

// Engagement holds all externally configurable scoring and trigger settings.
type Engagement struct {
	Thresholds       EngagementThresholds `json:"thresholds"`
	PageValues       map[string]int       `json:"pageValues"`
	DefaultPageValue int                  `json:"defaultPageValue"`
	PageContexts     map[string]string    `json:"pageContexts"`
	NudgeMessages    map[string]string    `json:"nudgeMessages"`
	DefaultNudge     string               `json:"defaultNudge"`
}

// DefaultEngagement returns the built-in engagement configuration.
func DefaultEngagement() *Engagement {
	return &Engagement{
		Thresholds: EngagementThresholds{
			LeadCaptureScore:     80,
			HighIntentScore:      50,
			ScrollThreshold:      40,
			TimeThresholdSeconds: 45,
			QuestionThreshold:    4,
			PageVarietyThreshold: 3,
		},
		PageValues: map[string]int{
			"/pricing":      25,
			"/security":     20,
			"/integrations": 15,
			"/api-docs":     15,
			"/features":     10,
			"/home":         5,
			"/support":      5,
		},
		DefaultPageValue: 5,
		PageContexts: map[string]string{
			"/home":         "Homepage - General Information",
			"/pricing":      "Pricing Information",
			"/security":     "Security & Compliance",
			"/integrations": "Integrations & API",
			"/api-docs":     "API Documentation",
			"/features":     "Product Features",
			"/support":      "Support & Help",
		},
		NudgeMessages: map[string]string{
			"/pricing":      "I see you're interested in pricing! Want a personalized quote for your specific needs?",
			"/security":     "Security is crucial! Would you like to discuss how we meet your compliance requirements?",
			"/integrations": "Looking at integrations? Let me help you find the perfect fit for your tech stack!",
			"/api-docs":     "Exploring our API? Want to try it with a free developer account?",
		},
		DefaultNudge: "You seem interested! Ready to learn how this could work for your specific use case?",
	}
}

// LoadEngagement reads the engagement configuration from path, falling back to
// the built-in defaults when no file exists. A file that exists but cannot be
// parsed is an error, never a silent fallback.
func LoadEngagement(path string) (*Engagement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultEngagement(), nil
		}
		return nil, fmt.Errorf("failed to read engagement config %s: %w", path, err)
	}

	cfg := DefaultEngagement()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse engagement config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the engagement configuration for startup-fatal mistakes.
func (e *Engagement) Validate() error {
	t := e.Thresholds
	if t.LeadCaptureScore <= 0 || t.HighIntentScore <= 0 {
		return fmt.Errorf("invalid engagement thresholds: leadCaptureScore=%d highIntentScore=%d", t.LeadCaptureScore, t.HighIntentScore)
	}
	if t.HighIntentScore > t.LeadCaptureScore {
		return fmt.Errorf("highIntentScore %d exceeds leadCaptureScore %d", t.HighIntentScore, t.LeadCaptureScore)
	}
	if t.ScrollThreshold <= 0 || t.ScrollThreshold > 100 {
		return fmt.Errorf("scrollThreshold %d out of range (1-100)", t.ScrollThreshold)
	}
	if t.TimeThresholdSeconds <= 0 || t.QuestionThreshold <= 0 || t.PageVarietyThreshold <= 0 {
		return fmt.Errorf("secondary trigger thresholds must be positive")
	}
	if e.DefaultPageValue < 0 {
		return fmt.Errorf("defaultPageValue must not be negative")
	}
	if e.DefaultNudge == "" {
		return fmt.Errorf("defaultNudge must not be empty")
	}
	// A page with defined content must carry an explicit point value. Falling
	// back to the default here would silently skew every score.
	for page := range e.PageContexts {
		if _, ok := e.PageValues[page]; !ok {
			return fmt.Errorf("page %s has content but no configured page value", page)
		}
	}
	return nil
}

// PageValue returns the configured point value for a page, or the default for
// pages outside the configured map.
func (e *Engagement) PageValue(page string) int {
	if v, ok := e.PageValues[page]; ok {
		return v
	}
	return e.DefaultPageValue
}

// PageContext returns the descriptive label for a page, or "General" for
// pages outside the configured map.
func (e *Engagement) PageContext(page string) string {
	if ctx, ok := e.PageContexts[page]; ok {
		return ctx
	}
	return "General"
}

// NudgeMessage returns the nudge template for a page, or the default template.
func (e *Engagement) NudgeMessage(page string) string {
	if msg, ok := e.NudgeMessages[page]; ok {
		return msg
	}
	return e.DefaultNudge
}
