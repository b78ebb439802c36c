package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/session"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/answer"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/knowledge"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/messaging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/pkg/config"
)

// kbTopK is how many FAQ entries are retrieved as grounding context.
const kbTopK = 2

// FallbackSource labels answers produced when generation failed.
const FallbackSource = "System Fallback"

// ChatService answers visitor questions and folds each question into the
// session's engagement state.
type ChatService struct {
	retriever *knowledge.Retriever
	answerer  answer.Service
	events    *EventProcessingService
	cfg       *config.Engagement
	logger    *logging.ChanneledLogger
}

// NewChatService creates a new chat service.
func NewChatService(
	retriever *knowledge.Retriever,
	answerer answer.Service,
	events *EventProcessingService,
	cfg *config.Engagement,
	logger *logging.ChanneledLogger,
) *ChatService {
	return &ChatService{
		retriever: retriever,
		answerer:  answerer,
		events:    events,
		cfg:       cfg,
		logger:    logger,
	}
}

// Ask answers a visitor question and returns the reply, its source
// attribution, and the updated session state. The question always counts
// toward engagement, even when answer generation fails.
func (s *ChatService) Ask(
	ctx context.Context,
	sessionID, question string,
	now time.Time,
	broadcaster messaging.Broadcaster,
) (string, string, session.Snapshot, error) {
	snap, err := s.events.ProcessQuestionWithSSE(sessionID, question, now, broadcaster)
	if err != nil {
		return "", "", session.Snapshot{}, err
	}

	matches := s.retriever.Retrieve(question, kbTopK)
	kbContext := make([]string, 0, len(matches))
	for _, m := range matches {
		kbContext = append(kbContext, m.Entry.Answer)
	}

	reply, err := s.answerer.Answer(ctx, question, visitorContext(snap), kbContext)
	if err != nil {
		s.logger.Chat().Error("Answer generation failed",
			"error", err, "sessionId", sessionID)
		// The engagement update already happened, apologize rather than
		// failing the request.
		return answer.FallbackReply, FallbackSource, snap, nil
	}

	source := fmt.Sprintf("Knowledge Base • %s Context", s.cfg.PageContext(snap.CurrentPage))
	s.logger.Chat().Debug("Question answered",
		"sessionId", sessionID, "kbMatches", len(matches))
	return reply, source, snap, nil
}

// visitorContext summarizes the session's engagement for the answerer prompt.
func visitorContext(snap session.Snapshot) string {
	return fmt.Sprintf(
		"- Page: %s\n- Pages visited: %s\n- Questions asked: %d\n- Engagement level: %s\n- Scroll depth: %d%%",
		snap.CurrentPage,
		strings.Join(snap.PagesVisited, ", "),
		snap.QuestionsAsked,
		snap.Tier,
		snap.ScrollPercentage,
	)
}
