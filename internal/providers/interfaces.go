package providers

import "context"

// EmbeddingProvider converts text into fixed-dimension float vectors via an
// external service. Implementations do not retry; callers decide.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch is order-preserving and returns exactly one vector per input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider takes a fully assembled prompt and returns generated text.
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
