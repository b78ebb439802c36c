// Package events provides the visitor event vocabulary
package events

// Event types accepted by the event processing pipeline.
const (
	TypePageView = "PageView"
	TypeScroll   = "Scroll"
	TypeSignal   = "Signal"
)

// Event defines the structure for behavioral visitor events.
type Event struct {
	Type       string `json:"type"`
	Page       string `json:"page,omitempty"`
	Percentage int    `json:"percentage,omitempty"`
	Label      string `json:"label,omitempty"`
	ScoreBoost int    `json:"scoreBoost,omitempty"`
}
