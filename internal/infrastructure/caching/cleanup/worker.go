// Package cleanup provides background session eviction
package cleanup

import (
	"context"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/infrastructure/caching/stores"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/pkg/config"
)

// Worker periodically evicts idle sessions from the store.
type Worker struct {
	sessions *stores.SessionsStore
	interval time.Duration
	ttl      time.Duration
	logger   *logging.ChanneledLogger
}

// NewWorker creates a cleanup worker using the configured interval and TTL.
func NewWorker(sessions *stores.SessionsStore, logger *logging.ChanneledLogger) *Worker {
	return &Worker{
		sessions: sessions,
		interval: config.CleanupInterval,
		ttl:      config.SessionTTL,
		logger:   logger,
	}
}

// Start runs the eviction loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Session().Info("Session cleanup worker started",
		"interval", w.interval.String(), "ttl", w.ttl.String())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Session().Info("Session cleanup worker stopped")
			return
		case now := <-ticker.C:
			w.sessions.EvictExpired(w.ttl, now)
		}
	}
}
