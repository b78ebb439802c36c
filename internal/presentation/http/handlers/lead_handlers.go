package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/application/services"
	"github.com/flipkraft/flipkraft-go/internal/domain/entities/leads"
	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/caching/stores"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/messaging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// LeadHandlers covers the capture form lifecycle and lead submission.
type LeadHandlers struct {
	leadService *services.LeadService
	broadcaster messaging.Broadcaster
	logger      *logging.ChanneledLogger
}

// NewLeadHandlers creates lead handlers with injected dependencies.
func NewLeadHandlers(leadService *services.LeadService, broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger) *LeadHandlers {
	return &LeadHandlers{
		leadService: leadService,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// PostCaptureShown handles POST /api/v1/capture/shown - the client
// acknowledges that the capture form rendered.
func (h *LeadHandlers) PostCaptureShown(c *gin.Context) {
	h.runTransition(c, h.leadService.MarkShown)
}

// PostCaptureDecline handles POST /api/v1/capture/decline - the visitor
// dismissed the capture form.
func (h *LeadHandlers) PostCaptureDecline(c *gin.Context) {
	h.runTransition(c, h.leadService.Decline)
}

// PostNudgeAccept handles POST /api/v1/nudge/accept.
func (h *LeadHandlers) PostNudgeAccept(c *gin.Context) {
	h.runTransition(c, h.leadService.AcceptNudge)
}

// PostNudgeDecline handles POST /api/v1/nudge/decline. Declining the nudge
// blocks automatic re-triggering the same way declining the form does.
func (h *LeadHandlers) PostNudgeDecline(c *gin.Context) {
	h.runTransition(c, h.leadService.Decline)
}

// PostCaptureForce handles POST /api/v1/capture/force - admin override that
// surfaces the form even after a decline.
func (h *LeadHandlers) PostCaptureForce(c *gin.Context) {
	h.runTransition(c, h.leadService.ForceTrigger)
}

// PostLead handles POST /api/v1/lead - validates and persists a submission.
func (h *LeadHandlers) PostLead(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	var sub leads.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	record, snap, err := h.leadService.Submit(sessionID, sub, time.Now().UTC(), h.broadcaster)
	if err != nil {
		var validationErr *services.ErrValidation
		var sinkErr *services.ErrSinkUnavailable
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
		case errors.Is(err, services.ErrLeadAlreadyCaptured):
			c.JSON(http.StatusConflict, gin.H{"error": "lead already captured for this session"})
		case errors.As(err, &sinkErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": "lead could not be saved, please retry"})
		case errors.Is(err, stores.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		default:
			h.logger.Leads().Error("Lead submission failed", "error", err.Error(), "sessionId", sessionID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lead submission failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"leadId":  record.ID,
		"state":   snap,
	})
}

type transitionFunc func(sessionID string, now time.Time, broadcaster messaging.Broadcaster) (session.Snapshot, error)

// runTransition maps a form lifecycle transition onto the shared
// request/response shape.
func (h *LeadHandlers) runTransition(c *gin.Context, fn transitionFunc) {
	sessionID, _ := middleware.GetSessionID(c)

	snap, err := fn(sessionID, time.Now().UTC(), h.broadcaster)
	if err != nil {
		if errors.Is(err, stores.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.logger.Leads().Error("Capture transition failed", "error", err.Error(), "sessionId", sessionID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "capture transition failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "state": snap})
}
