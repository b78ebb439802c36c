package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/application/services"
	"github.com/flipkraft/flipkraft-go/internal/domain/events"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/caching/stores"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/messaging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// EventHandlers processes batched behavioral events.
type EventHandlers struct {
	eventService *services.EventProcessingService
	broadcaster  messaging.Broadcaster
	logger       *logging.ChanneledLogger
}

// EventBatchRequest is the body for POST /api/v1/events.
type EventBatchRequest struct {
	Events []events.Event `json:"events" binding:"required"`
}

// NewEventHandlers creates event handlers with injected dependencies.
func NewEventHandlers(eventService *services.EventProcessingService, broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger) *EventHandlers {
	return &EventHandlers{
		eventService: eventService,
		broadcaster:  broadcaster,
		logger:       logger,
	}
}

// PostEvents handles POST /api/v1/events - applies a batch of visitor events
// to the session and returns the resulting engagement state.
func (h *EventHandlers) PostEvents(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	var req EventBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Engagement().Error("Event batch JSON binding failed", "error", err.Error(), "sessionId", sessionID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	snap, err := h.eventService.ProcessEventsWithSSE(sessionID, req.Events, time.Now().UTC(), h.broadcaster)
	if err != nil {
		if errors.Is(err, stores.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.logger.Engagement().Error("Event processing failed", "error", err.Error(), "sessionId", sessionID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
		return
	}

	c.JSON(http.StatusOK, snap)
}
