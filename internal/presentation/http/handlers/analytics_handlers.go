package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/application/services"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/messaging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

var dashboardUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced at the HTTP layer before the upgrade.
		return true
	},
}

// AnalyticsHandlers serves lead analytics queries and the live dashboard feed.
type AnalyticsHandlers struct {
	analyticsService     *services.LeadAnalyticsService
	dashboardBroadcaster *messaging.DashboardBroadcaster
	logger               *logging.ChanneledLogger
}

// NewAnalyticsHandlers creates analytics handlers with injected dependencies.
func NewAnalyticsHandlers(analyticsService *services.LeadAnalyticsService, dashboardBroadcaster *messaging.DashboardBroadcaster, logger *logging.ChanneledLogger) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		analyticsService:     analyticsService,
		dashboardBroadcaster: dashboardBroadcaster,
		logger:               logger,
	}
}

// GetLeads handles GET /api/v1/leads - returns recent captured leads.
func (h *AnalyticsHandlers) GetLeads(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}

	records, err := h.analyticsService.RecentLeads(limit)
	if err != nil {
		h.logger.Database().Error("Lead listing failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": records,
		"count": len(records),
	})
}

// GetLeadMetrics handles GET /api/v1/analytics/leads - returns the funnel
// metrics snapshot used by the dashboard.
func (h *AnalyticsHandlers) GetLeadMetrics(c *gin.Context) {
	payload, err := h.analyticsService.Metrics(time.Now().UTC())
	if err != nil {
		h.logger.Database().Error("Metrics computation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, payload)
}

// GetDashboardWS handles GET /api/v1/analytics/ws - upgrades to a WebSocket
// that streams funnel metrics on each broadcaster tick.
func (h *AnalyticsHandlers) GetDashboardWS(c *gin.Context) {
	conn, err := dashboardUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.System().Error("Dashboard WebSocket upgrade failed", "error", err.Error())
		return
	}

	client := &messaging.DashboardClient{
		Conn: conn,
		Send: make(chan []byte, 8),
	}
	h.dashboardBroadcaster.Register(client)

	go h.writePump(client)
	go h.readPump(client)
}

// writePump drains the client's send channel onto the wire and keeps the
// connection alive with pings.
func (h *AnalyticsHandlers) writePump(client *messaging.DashboardClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames. The dashboard feed is one-way, reading
// only to notice disconnects and answer pongs.
func (h *AnalyticsHandlers) readPump(client *messaging.DashboardClient) {
	defer func() {
		h.dashboardBroadcaster.Unregister(client)
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(512)
	client.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
