// Package answer generates replies to visitor questions
package answer

import "context"

// Service produces an answer to a visitor question, given knowledge base
// context retrieved for that question and a summary of the visitor's
// engagement so far.
type Service interface {
	Answer(ctx context.Context, question, visitorContext string, kbContext []string) (string, error)
}

// OutOfScopeReply is returned when a question cannot be answered from the
// product knowledge base.
const OutOfScopeReply = "I'm sorry, I can only provide information about our platform and related services."

// FallbackReply is returned when answer generation fails entirely.
const FallbackReply = "I apologize, but I'm having trouble accessing that information right now. Could you please try rephrasing your question?"
