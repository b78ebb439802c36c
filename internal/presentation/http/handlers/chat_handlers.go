package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/application/services"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/caching/stores"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/messaging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/internal/presentation/http/middleware"
	"github.com/flipkraft/flipkraft-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// ChatHandlers answers visitor questions through the assistant.
type ChatHandlers struct {
	chatService *services.ChatService
	broadcaster messaging.Broadcaster
	logger      *logging.ChanneledLogger
}

// AskRequest is the body for POST /api/v1/ask.
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// NewChatHandlers creates chat handlers with injected dependencies.
func NewChatHandlers(chatService *services.ChatService, broadcaster messaging.Broadcaster, logger *logging.ChanneledLogger) *ChatHandlers {
	return &ChatHandlers{
		chatService: chatService,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// PostAsk handles POST /api/v1/ask - answers a visitor question and folds it
// into the session's engagement state.
func (h *ChatHandlers) PostAsk(c *gin.Context) {
	sessionID, _ := middleware.GetSessionID(c)

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question must not be empty"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.AnswerTimeout)
	defer cancel()

	reply, source, snap, err := h.chatService.Ask(ctx, sessionID, question, time.Now().UTC(), h.broadcaster)
	if err != nil {
		if errors.Is(err, stores.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.logger.Chat().Error("Ask request failed", "error", err.Error(), "sessionId", sessionID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"answer": reply,
		"source": source,
		"state":  snap,
	})
}
