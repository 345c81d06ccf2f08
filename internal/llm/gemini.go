package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultChatModel      = "gemini-2.0-flash-exp"
	defaultEmbeddingModel = "text-embedding-004"
)

// GeminiClient implements Client against the Gemini API.
type GeminiClient struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
}

// NewGeminiClient constructs the Gemini-backed gateway. The API key is
// required; construction fails fast so a misconfigured process never serves
// requests.
func NewGeminiClient(ctx context.Context, apiKey, chatModel, embeddingModel string) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if chatModel = strings.TrimSpace(chatModel); chatModel == "" {
		chatModel = defaultChatModel
	}
	if embeddingModel = strings.TrimSpace(embeddingModel); embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}

	return &GeminiClient{
		client:         client,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
	}, nil
}

// GenerateText sends the prompt to the chat model and returns the trimmed
// concatenation of the textual candidate parts.
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.chatModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// GetEmbedding returns the embedding vector for the given text.
func (c *GeminiClient) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text must not be empty")
	}

	resp, err := c.client.Models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("gemini api returned no embedding")
	}

	return resp.Embeddings[0].Values, nil
}

// ChatModel exposes the configured chat model name, mostly for logging.
func (c *GeminiClient) ChatModel() string {
	return c.chatModel
}
