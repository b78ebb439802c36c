package answer

import "strings"

const systemPrompt = `You are a professional virtual assistant for a B2B SaaS platform.
Your goal is to answer visitor questions accurately using the provided knowledge base,
which includes pricing, security & compliance, features, integrations, API limits, and support details.

Rules:
1. Only provide information that exists in the knowledge base or retrieved context.
2. If a question is outside the context of our SaaS platform, respond politely:
   "I'm sorry, I can only provide information about our platform and related services."
3. Always provide clear, concise, and well-structured answers.
4. Where applicable, cite the relevant feature, policy, or integration details from the knowledge base.
5. If the visitor shows high intent (e.g., asks about pricing, security, or integrations),
   gently encourage them to request a quote or share their contact details.
6. Maintain a professional yet approachable tone, like a knowledgeable SaaS pre-sales engineer.`

// buildUserPrompt combines the visitor's engagement summary and retrieved
// knowledge base context with their question into a single grounded prompt.
func buildUserPrompt(question, visitorContext string, kbContext []string) string {
	var sb strings.Builder
	if visitorContext != "" {
		sb.WriteString("CONTEXT:\n")
		sb.WriteString(visitorContext)
		sb.WriteString("\n\n")
	}
	if len(kbContext) > 0 {
		sb.WriteString("Knowledge base context:\n")
		for _, c := range kbContext {
			sb.WriteString("- ")
			sb.WriteString(c)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("QUESTION: ")
	sb.WriteString(question)
	sb.WriteString("\n\nPlease provide a helpful answer with source attribution.")
	return sb.String()
}
