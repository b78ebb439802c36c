// Package messaging defines interfaces for real-time communication.
package messaging

import "github.com/flipkraft/flipkraft-go/internal/domain/entities/session"

// Broadcaster defines the interface for managing SSE client connections and broadcasting messages.
type Broadcaster interface {
	AddClient(sessionID string) chan string
	RemoveClient(ch chan string, sessionID string)
	GetSessionConnectionCount(sessionID string) int
	BroadcastEngagement(sessionID string, snap session.Snapshot)
	BroadcastFormTrigger(sessionID string)
	BroadcastNudge(sessionID, message string)
}
