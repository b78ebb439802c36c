// Package repositories defines the repository interfaces for persisted
// entities. These abstract the data persistence details, ensuring the core
// application is clean and decoupled from the database.
package repositories

import (
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/leads"
)

// LeadRepository is the append-only sink for captured leads plus the
// aggregate queries the dashboard needs.
type LeadRepository interface {
	Append(record *leads.Record) error
	FindRecent(limit int) ([]*leads.Record, error)
	CountAll() (int, error)
	CountSince(since time.Time) (int, error)
	CountHot() (int, error)
	AverageScore() (float64, error)
	AverageTimeToCapture() (float64, error)
}

// ActionRepository records intent signals and trigger decisions for offline
// analytics. Writes are best-effort; a failed insert must never fail the
// visitor-facing operation that produced it.
type ActionRepository interface {
	LogAction(sessionID, label string, weight int, page string, at time.Time) error
	CountSessions() (int, error)
}
