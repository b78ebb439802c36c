// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/application/services"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/messaging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/internal/presentation/http/middleware"
	"github.com/flipkraft/flipkraft-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// VisitHandlers contains session lifecycle and SSE connection handlers.
type VisitHandlers struct {
	sessionService *services.SessionService
	broadcaster    messaging.Broadcaster
	logger         *logging.ChanneledLogger
}

// VisitRequest is the body for POST /api/v1/auth/visit.
type VisitRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	StartPage string `json:"startPage,omitempty"`
}

// NewVisitHandlers creates visit handlers with injected dependencies.
func NewVisitHandlers(sessionService *services.SessionService, broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger) *VisitHandlers {
	return &VisitHandlers{
		sessionService: sessionService,
		broadcaster:    broadcaster,
		logger:         logger,
	}
}

// Global SSE connection tracking
var activeSSEConnections int64

// PostVisit handles POST /api/v1/auth/visit - creates or resumes a visitor session.
func (h *VisitHandlers) PostVisit(c *gin.Context) {
	var req VisitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Session().Error("Visit request JSON binding failed", "error", err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
			return
		}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID, _ = middleware.GetSessionID(c)
	}

	vs, resumed, err := h.sessionService.StartOrResume(sessionID, req.StartPage, time.Now().UTC())
	if err != nil {
		h.logger.Session().Error("Visit processing failed", "error", err.Error(), "sessionId", sessionID)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session capacity reached"})
		return
	}

	snap := vs.Snapshot()
	h.logger.Session().Info("Visit processed", "sessionId", snap.SessionID, "resumed", resumed)

	c.JSON(http.StatusOK, gin.H{
		"sessionId": snap.SessionID,
		"resumed":   resumed,
		"state":     snap,
	})
}

// GetState handles GET /api/v1/state - returns the current engagement snapshot.
func (h *VisitHandlers) GetState(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	vs, ok := h.sessionService.Get(sessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, vs.Snapshot())
}

// PostReset handles POST /api/v1/session/reset - discards accumulated
// engagement state and starts the session over. Admin only.
func (h *VisitHandlers) PostReset(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	var req VisitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
			return
		}
	}
	if req.SessionID != "" {
		sessionID = req.SessionID
	}

	vs, err := h.sessionService.Reset(sessionID, req.StartPage, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	snap := vs.Snapshot()
	h.broadcaster.BroadcastEngagement(sessionID, snap)
	h.logger.Session().Info("Session reset", "sessionId", sessionID)
	c.JSON(http.StatusOK, gin.H{"success": true, "state": snap})
}

// GetSSE handles GET /api/v1/auth/sse - establishes a Server-Sent Events
// connection scoped to one session.
func (h *VisitHandlers) GetSSE(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		h.logger.SSE().Error("SSE connection request missing session ID")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID required for SSE connection"})
		return
	}

	if h.broadcaster.GetSessionConnectionCount(sessionID) >= config.MaxSessionConnections {
		h.logger.SSE().Warn("SSE per-session connection limit reached",
			"sessionId", sessionID,
			"maxConnections", config.MaxSessionConnections)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "SSE connection limit reached. Please try again later.",
		})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Cache-Control")

	ch := h.broadcaster.AddClient(sessionID)
	atomic.AddInt64(&activeSSEConnections, 1)
	defer func() {
		atomic.AddInt64(&activeSSEConnections, -1)
		h.broadcaster.RemoveClient(ch, sessionID)
	}()

	// Initial connection confirmation goes straight to the writer so the
	// client sees traffic before the first engagement update.
	connectedMsg := fmt.Sprintf("data: {\"type\":\"connected\",\"sessionId\":\"%s\",\"timestamp\":\"%s\"}\n\n",
		sessionID, time.Now().UTC().Format(time.RFC3339))
	if _, err := c.Writer.WriteString(connectedMsg); err != nil {
		h.logger.SSE().Error("SSE initial write failed", "sessionId", sessionID, "error", err.Error())
		return
	}
	c.Writer.Flush()

	clientCtx := c.Request.Context()

	h.logger.SSE().Info("SSE connection established",
		"sessionId", sessionID,
		"totalConnections", atomic.LoadInt64(&activeSSEConnections))

	ticker := time.NewTicker(time.Duration(config.SSEHeartbeatIntervalSeconds) * time.Second)
	defer ticker.Stop()

	connectionStart := time.Now()
	for {
		select {
		case <-clientCtx.Done():
			h.logger.SSE().Info("SSE client disconnected",
				"sessionId", sessionID,
				"connectionDuration", time.Since(connectionStart))
			return

		case message, ok := <-ch:
			if !ok {
				h.logger.SSE().Info("SSE connection channel closed",
					"sessionId", sessionID,
					"connectionDuration", time.Since(connectionStart))
				return
			}

			if _, err := c.Writer.WriteString(message); err != nil {
				h.logger.SSE().Error("SSE write failed",
					"sessionId", sessionID,
					"error", err.Error())
				return
			}
			c.Writer.Flush()

		case <-ticker.C:
			heartbeat := fmt.Sprintf("data: {\"type\":\"heartbeat\",\"timestamp\":\"%s\"}\n\n",
				time.Now().UTC().Format(time.RFC3339))
			if _, err := c.Writer.WriteString(heartbeat); err != nil {
				h.logger.SSE().Error("SSE heartbeat failed",
					"sessionId", sessionID,
					"error", err.Error())
				return
			}
			c.Writer.Flush()
		}
	}
}
