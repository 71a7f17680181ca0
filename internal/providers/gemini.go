package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"docchat/internal/util"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider serves both embeddings and chat completions through the
// Gemini SDK. The underlying client is constructed once on first use and
// shared for the process lifetime; genai clients are stateless after
// construction and need no teardown.
type GeminiProvider struct {
	apiKey      string
	embedModel  string
	chatModel   string
	temperature float64

	once    sync.Once
	client  *genai.Client
	initErr error
}

func NewGeminiProvider(apiKey, embedModel, chatModel string, temperature float64) *GeminiProvider {
	return &GeminiProvider{
		apiKey:      apiKey,
		embedModel:  embedModel,
		chatModel:   chatModel,
		temperature: temperature,
	}
}

func (g *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	if g.apiKey == "" {
		return nil, &util.ConfigurationError{Missing: "GEMINI_API_KEY"}
	}
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	})
	if g.initErr != nil {
		return nil, &util.ProviderError{Provider: "gemini", Op: "client init", Err: g.initErr}
	}
	return g.client, nil
}

func (g *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (g *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}
	em := client.EmbeddingModel(g.embedModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, &util.ProviderError{Provider: "gemini", Op: "embed", Err: err}
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, &util.ProviderError{
			Provider: "gemini",
			Op:       "embed",
			Err:      fmt.Errorf("got %d embeddings for %d inputs", len(resp.Embeddings), len(texts)),
		}
	}
	out := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, &util.ProviderError{Provider: "gemini", Op: "embed", Err: fmt.Errorf("empty embedding in response")}
		}
		out = append(out, e.Values)
	}
	return out, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}
	gm := client.GenerativeModel(g.chatModel)
	gm.SetTemperature(float32(g.temperature))
	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &util.ProviderError{Provider: "gemini", Op: "generate", Err: err}
	}
	text := flattenResponse(resp)
	if text == "" {
		return "", &util.ProviderError{Provider: "gemini", Op: "generate", Err: fmt.Errorf("empty response")}
	}
	return text, nil
}

func flattenResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
