// Package messaging provides the concrete implementation of the SSE broadcaster.
package messaging

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
)

// SSEBroadcaster manages session-specific SSE connections.
type SSEBroadcaster struct {
	sessions map[string][]chan string // sessionId -> []channels
	mu       sync.Mutex
	logger   *logging.ChanneledLogger
}

var (
	globalBroadcaster *SSEBroadcaster
	once              sync.Once
)

// NewSSEBroadcaster creates the singleton SSEBroadcaster instance.
func NewSSEBroadcaster(logger *logging.ChanneledLogger) *SSEBroadcaster {
	once.Do(func() {
		globalBroadcaster = &SSEBroadcaster{
			sessions: make(map[string][]chan string),
			logger:   logger,
		}
	})
	return globalBroadcaster
}

// AddClient registers a new SSE client for a session.
func (b *SSEBroadcaster) AddClient(sessionID string) chan string {
	ch := make(chan string, 10)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.sessions[sessionID] = append(b.sessions[sessionID], ch)

	b.logger.SSE().Debug("SSE client registered", "sessionId", sessionID)
	return ch
}

// RemoveClient removes an SSE client for a session.
func (b *SSEBroadcaster) RemoveClient(ch chan string, sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sessionClients, exists := b.sessions[sessionID]; exists {
		newClients := make([]chan string, 0, len(sessionClients)-1)
		for _, client := range sessionClients {
			if client != ch {
				newClients = append(newClients, client)
			}
		}
		b.sessions[sessionID] = newClients

		if len(b.sessions[sessionID]) == 0 {
			delete(b.sessions, sessionID)
		}
	}
	b.logger.SSE().Debug("SSE client unregistered", "sessionId", sessionID)
}

// GetSessionConnectionCount returns the connection count for a specific session.
func (b *SSEBroadcaster) GetSessionConnectionCount(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.sessions[sessionID])
}

// BroadcastEngagement pushes the latest engagement snapshot to a session.
func (b *SSEBroadcaster) BroadcastEngagement(sessionID string, snap session.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		b.logger.SSE().Error("Failed to marshal engagement snapshot", "error", err, "sessionId", sessionID)
		return
	}
	b.sendToSession(sessionID, "engagement_updated", string(data))
}

// BroadcastFormTrigger tells a session's client to surface the lead capture form.
func (b *SSEBroadcaster) BroadcastFormTrigger(sessionID string) {
	b.sendToSession(sessionID, "form_trigger", "{}")
}

// BroadcastNudge pushes a contextual nudge message to a session's client.
func (b *SSEBroadcaster) BroadcastNudge(sessionID, message string) {
	data, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		b.logger.SSE().Error("Failed to marshal nudge payload", "error", err, "sessionId", sessionID)
		return
	}
	b.sendToSession(sessionID, "nudge", string(data))
}

func (b *SSEBroadcaster) sendToSession(sessionID, event, data string) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.SSE().Error("Panic recovered in sendToSession", "error", r, "sessionId", sessionID)
		}
	}()

	message := fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)

	b.logger.SSE().Debug("Broadcasting to session", "message", strings.ReplaceAll(message, "\n", "\\n"), "sessionId", sessionID)

	b.mu.Lock()
	defer b.mu.Unlock()

	if sessionClients, exists := b.sessions[sessionID]; exists {
		for _, ch := range sessionClients {
			select {
			case ch <- message:
			default:
				b.logger.SSE().Warn("SSE channel full, message dropped", "sessionId", sessionID)
			}
		}
	}
}
