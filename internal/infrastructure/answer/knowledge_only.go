package answer

import (
	"context"

	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
)

// KnowledgeOnly answers directly from retrieved knowledge base context
// without a language model. Used when no Gemini API key is configured.
type KnowledgeOnly struct {
	logger *logging.ChanneledLogger
}

// NewKnowledgeOnly creates the fallback answer service.
func NewKnowledgeOnly(logger *logging.ChanneledLogger) *KnowledgeOnly {
	logger.Chat().Warn("No Gemini API key configured, answering from knowledge base only")
	return &KnowledgeOnly{logger: logger}
}

// Answer returns the top retrieved knowledge base entry verbatim, or the
// out-of-scope reply when retrieval found nothing.
func (k *KnowledgeOnly) Answer(_ context.Context, _, _ string, kbContext []string) (string, error) {
	if len(kbContext) == 0 {
		return OutOfScopeReply, nil
	}
	return kbContext[0], nil
}
