// Package stores provides concrete cache store implementations
package stores

import (
	"errors"
	"sync"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
)

// ErrSessionNotFound is returned when no session exists for the given id.
var ErrSessionNotFound = errors.New("session not found")

// ErrStoreFull is returned when the store has reached its session capacity.
var ErrStoreFull = errors.New("session store at capacity")

// sessionEntry pairs a visitor session with its own mutex so that concurrent
// requests for the same session (e.g. a double-submitted capture form) are
// serialized without blocking unrelated sessions.
type sessionEntry struct {
	mu      sync.Mutex
	session *session.VisitorSession
}

// SessionsStore holds all live visitor sessions for this process.
type SessionsStore struct {
	entries     map[string]*sessionEntry
	maxSessions int
	mu          sync.RWMutex
	logger      *logging.ChanneledLogger
}

// NewSessionsStore creates a new sessions cache store.
func NewSessionsStore(maxSessions int, logger *logging.ChanneledLogger) *SessionsStore {
	if logger != nil {
		logger.Session().Info("Initializing sessions cache store", "maxSessions", maxSessions)
	}
	return &SessionsStore{
		entries:     make(map[string]*sessionEntry),
		maxSessions: maxSessions,
		logger:      logger,
	}
}

// Put registers a session, replacing any existing record with the same id.
func (ss *SessionsStore) Put(vs *session.VisitorSession) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if _, exists := ss.entries[vs.SessionID]; !exists && len(ss.entries) >= ss.maxSessions {
		if ss.logger != nil {
			ss.logger.Session().Error("Session store at capacity", "maxSessions", ss.maxSessions)
		}
		return ErrStoreFull
	}

	ss.entries[vs.SessionID] = &sessionEntry{session: vs}
	if ss.logger != nil {
		ss.logger.Session().Debug("Session stored", "sessionId", vs.SessionID)
	}
	return nil
}

// Get returns the session for the given id.
func (ss *SessionsStore) Get(sessionID string) (*session.VisitorSession, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	entry, exists := ss.entries[sessionID]
	if !exists {
		return nil, false
	}
	return entry.session, true
}

// WithSession runs fn with the session's own mutex held, serializing all
// mutations for one visitor. This is what upholds the single-terminal
// transition on lead capture under concurrent requests.
func (ss *SessionsStore) WithSession(sessionID string, fn func(*session.VisitorSession) error) error {
	ss.mu.RLock()
	entry, exists := ss.entries[sessionID]
	ss.mu.RUnlock()

	if !exists {
		return ErrSessionNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// Delete removes a session from the store.
func (ss *SessionsStore) Delete(sessionID string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.entries, sessionID)
	if ss.logger != nil {
		ss.logger.Session().Debug("Session deleted", "sessionId", sessionID)
	}
}

// Count returns the number of live sessions.
func (ss *SessionsStore) Count() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.entries)
}

// CountActive returns the number of sessions with activity inside the window.
func (ss *SessionsStore) CountActive(window time.Duration, now time.Time) int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	active := 0
	for _, entry := range ss.entries {
		if now.Sub(entry.session.LastActivity) <= window {
			active++
		}
	}
	return active
}

// EvictExpired removes sessions idle longer than ttl and returns the count.
func (ss *SessionsStore) EvictExpired(ttl time.Duration, now time.Time) int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	evicted := 0
	for id, entry := range ss.entries {
		if now.Sub(entry.session.LastActivity) > ttl {
			delete(ss.entries, id)
			evicted++
		}
	}

	if evicted > 0 && ss.logger != nil {
		ss.logger.Session().Info("Evicted expired sessions", "count", evicted, "remaining", len(ss.entries))
	}
	return evicted
}
