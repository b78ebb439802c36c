package messaging

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/flipkraft/flipkraft-go/pkg/config"
)

// DashboardClient represents a single connected analytics dashboard client.
type DashboardClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// DashboardPayload is the metrics snapshot sent to dashboard clients on each tick.
type DashboardPayload struct {
	TotalLeads      int     `json:"totalLeads"`
	LeadsToday      int     `json:"leadsToday"`
	HotLeads        int     `json:"hotLeads"`
	AverageScore    float64 `json:"averageScore"`
	AverageCaptureS float64 `json:"averageCaptureSeconds"`
	LiveSessions    int     `json:"liveSessions"`
	ActiveSessions  int     `json:"activeSessions"`
	SessionsAllTime int     `json:"sessionsAllTime"`
	GeneratedAt     string  `json:"generatedAt"`
}

// MetricsSource supplies the dashboard metrics snapshot on each tick.
type MetricsSource interface {
	Metrics(now time.Time) (DashboardPayload, error)
}

// DashboardBroadcaster manages all connected dashboard clients and pushes
// lead funnel metrics on a fixed interval.
type DashboardBroadcaster struct {
	clients    map[*DashboardClient]bool
	register   chan *DashboardClient
	unregister chan *DashboardClient
	metrics    MetricsSource
	mu         sync.RWMutex
}

// NewDashboardBroadcaster creates a new broadcaster instance.
func NewDashboardBroadcaster(metrics MetricsSource) *DashboardBroadcaster {
	return &DashboardBroadcaster{
		clients:    make(map[*DashboardClient]bool),
		register:   make(chan *DashboardClient),
		unregister: make(chan *DashboardClient),
		metrics:    metrics,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *DashboardBroadcaster) Run() {
	ticker := time.NewTicker(config.DashboardTickInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			log.Printf("Dashboard client registered (%d connected)", len(b.clients))
			b.mu.Unlock()

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			log.Printf("Dashboard client unregistered (%d connected)", len(b.clients))
			b.mu.Unlock()

		case <-ticker.C:
			b.broadcastMetrics()
		}
	}
}

// Register queues a client for registration.
func (b *DashboardBroadcaster) Register(client *DashboardClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *DashboardBroadcaster) Unregister(client *DashboardClient) {
	b.unregister <- client
}

// broadcastMetrics gathers current lead metrics and sends them to all clients.
func (b *DashboardBroadcaster) broadcastMetrics() {
	b.mu.RLock()
	hasClients := len(b.clients) > 0
	b.mu.RUnlock()
	if !hasClients {
		return
	}

	payload, err := b.metrics.Metrics(time.Now())
	if err != nil {
		log.Printf("Error building dashboard payload: %v", err)
		return
	}

	message, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling dashboard payload: %v", err)
		return
	}

	b.mu.RLock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
	b.mu.RUnlock()
}
