// Package llm wraps the generative-text and text-embedding calls the
// interview flow depends on.
package llm

import "context"

// Client is the AI gateway consumed by the rest of the application.
// GetEmbedding is part of the surface even though the scripted chat flow
// never queries embeddings.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
}
