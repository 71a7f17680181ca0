package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docchat/internal/util"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider uses the standard OpenAI REST APIs for embeddings and chat.
type OpenAIProvider struct {
	apiKey      string
	baseURL     string
	embedModel  string
	chatModel   string
	temperature float64
	client      *http.Client
}

func NewOpenAIProvider(apiKey, embedModel, chatModel string, temperature float64) *OpenAIProvider {
	return &OpenAIProvider{
		apiKey:      apiKey,
		baseURL:     defaultOpenAIBaseURL,
		embedModel:  embedModel,
		chatModel:   chatModel,
		temperature: temperature,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
}

// WithBaseURL points the provider at a different host. Tests use this with
// httptest servers.
func (o *OpenAIProvider) WithBaseURL(u string) *OpenAIProvider {
	o.baseURL = strings.TrimRight(u, "/")
	return o
}

func (o *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (o *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if o.apiKey == "" {
		return nil, &util.ConfigurationError{Missing: "OPENAI_API_KEY"}
	}
	payload, _ := json.Marshal(map[string]any{"model": o.embedModel, "input": texts})
	body, err := o.post(ctx, "/embeddings", payload)
	if err != nil {
		return nil, &util.ProviderError{Provider: "openai", Op: "embed", Err: err}
	}
	var parsed struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &util.ProviderError{Provider: "openai", Op: "embed", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Data) != len(texts) {
		return nil, &util.ProviderError{
			Provider: "openai",
			Op:       "embed",
			Err:      fmt.Errorf("got %d embeddings for %d inputs", len(parsed.Data), len(texts)),
		}
	}
	out := make([][]float32, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		out = append(out, d.Embedding)
	}
	return out, nil
}

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if o.apiKey == "" {
		return "", &util.ConfigurationError{Missing: "OPENAI_API_KEY"}
	}
	payload, _ := json.Marshal(map[string]any{
		"model":       o.chatModel,
		"temperature": o.temperature,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	body, err := o.post(ctx, "/chat/completions", payload)
	if err != nil {
		return "", &util.ProviderError{Provider: "openai", Op: "generate", Err: err}
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &util.ProviderError{Provider: "openai", Op: "generate", Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &util.ProviderError{Provider: "openai", Op: "generate", Err: fmt.Errorf("empty choices")}
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (o *OpenAIProvider) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
