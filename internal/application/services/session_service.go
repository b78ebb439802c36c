package services

import (
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/caching/stores"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/security"
)

// SessionService manages the lifecycle of visitor sessions.
type SessionService struct {
	sessions *stores.SessionsStore
	logger   *logging.ChanneledLogger
}

// NewSessionService creates a new session lifecycle service.
func NewSessionService(sessions *stores.SessionsStore, logger *logging.ChanneledLogger) *SessionService {
	return &SessionService{sessions: sessions, logger: logger}
}

// StartOrResume returns the session for sessionID when it is still live, or
// creates a fresh session otherwise. The returned bool reports whether an
// existing session was resumed.
func (s *SessionService) StartOrResume(sessionID, startPage string, now time.Time) (*session.VisitorSession, bool, error) {
	if sessionID != "" {
		if existing, ok := s.sessions.Get(sessionID); ok {
			existing.Touch(now)
			s.logger.Auth().Debug("Session resumed", "sessionId", sessionID)
			return existing, true, nil
		}
	}

	if startPage == "" {
		startPage = "/home"
	}

	vs := session.NewVisitorSession(security.GenerateULID(), startPage, now)
	if err := s.sessions.Put(vs); err != nil {
		s.logger.Auth().Error("Failed to store new session", "error", err)
		return nil, false, err
	}

	s.logger.Auth().Info("Session started", "sessionId", vs.SessionID, "startPage", startPage)
	return vs, false, nil
}

// Get returns the live session for sessionID.
func (s *SessionService) Get(sessionID string) (*session.VisitorSession, bool) {
	return s.sessions.Get(sessionID)
}

// Reset discards all engagement state for a session and starts it over on
// the given page, keeping the same session id. Used by the admin simulator.
func (s *SessionService) Reset(sessionID, startPage string, now time.Time) (*session.VisitorSession, error) {
	if startPage == "" {
		startPage = "/home"
	}

	err := s.sessions.WithSession(sessionID, func(vs *session.VisitorSession) error {
		*vs = *session.NewVisitorSession(sessionID, startPage, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	vs, _ := s.sessions.Get(sessionID)
	s.logger.Session().Info("Session reset", "sessionId", sessionID, "startPage", startPage)
	return vs, nil
}
