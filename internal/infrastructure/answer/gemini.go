package answer

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
)

// GeminiClient answers questions through the Gemini API, grounded on
// retrieved knowledge base context.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	logger    *logging.ChanneledLogger
}

// NewGeminiClient creates an answer service backed by the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, logger *logging.ChanneledLogger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	logger.Chat().Info("Gemini answer service initialized", "model", modelName)
	return &GeminiClient{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// Answer implements Service using Gemini.
func (g *GeminiClient) Answer(ctx context.Context, question, visitorContext string, kbContext []string) (string, error) {
	temp := float32(0)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buildUserPrompt(question, visitorContext, kbContext), genai.RoleUser),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}
