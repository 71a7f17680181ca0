package providers

import (
	"fmt"
	"strings"

	"docchat/internal/config"
)

// BuildEmbedding constructs the configured embedding provider. Provider
// instances are created once at startup and shared; the Gemini client inside
// additionally defers its network setup to first use.
func BuildEmbedding(cfg config.Config) (EmbeddingProvider, error) {
	switch strings.ToLower(cfg.EmbedProvider) {
	case "gemini":
		return NewGeminiProvider(cfg.GeminiAPIKey, cfg.EmbedModel, cfg.ChatModel, cfg.Temperature), nil
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbedModel, cfg.ChatModel, cfg.Temperature), nil
	case "mock":
		return NewMockProvider(768), nil
	default:
		return nil, fmt.Errorf("unsupported embed provider: %s", cfg.EmbedProvider)
	}
}

func BuildLLM(cfg config.Config) (LLMProvider, error) {
	switch strings.ToLower(cfg.LLMProvider) {
	case "gemini":
		return NewGeminiProvider(cfg.GeminiAPIKey, cfg.EmbedModel, cfg.ChatModel, cfg.Temperature), nil
	case "openai":
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbedModel, cfg.ChatModel, cfg.Temperature), nil
	case "mock":
		return NewMockProvider(768), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLMProvider)
	}
}
