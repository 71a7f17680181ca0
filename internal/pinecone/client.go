package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"docchat/internal/models"
	"docchat/internal/util"
)

// UpsertBatchSize bounds a single upsert request. Batches are written
// sequentially; a failed batch aborts the rest, and earlier batches stay
// committed.
const UpsertBatchSize = 100

// Client is a minimal REST client for a Pinecone serverless index. One vector
// record exists per (document, chunk index); the record id is deterministic,
// so re-ingesting a document overwrites its previous chunks.
type Client struct {
	apiKey    string
	indexHost string
	client    *http.Client
}

func NewClient(apiKey, indexHost string) *Client {
	return &Client{
		apiKey:    apiKey,
		indexHost: strings.TrimRight(indexHost, "/"),
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// RecordID builds the deterministic vector id for a chunk.
func RecordID(documentID string, chunkIndex int) string {
	return fmt.Sprintf("%s:%d", documentID, chunkIndex)
}

type vectorRecord struct {
	ID       string               `json:"id"`
	Values   []float32            `json:"values"`
	Metadata models.ChunkMetadata `json:"metadata"`
}

func (c *Client) checkConfig() error {
	if c.apiKey == "" {
		return &util.ConfigurationError{Missing: "PINECONE_API_KEY"}
	}
	if c.indexHost == "" {
		return &util.ConfigurationError{Missing: "PINECONE_INDEX_HOST"}
	}
	return nil
}

func (c *Client) Upsert(ctx context.Context, documentID string, chunks []models.Chunk, vectors [][]float32, fileName string) error {
	if err := c.checkConfig(); err != nil {
		return err
	}
	if len(chunks) == 0 || len(chunks) != len(vectors) {
		return &util.ValidationError{
			Field:  "vectors",
			Reason: fmt.Sprintf("need matching non-empty chunks and vectors, got %d and %d", len(chunks), len(vectors)),
		}
	}

	records := make([]vectorRecord, 0, len(chunks))
	for i, ch := range chunks {
		records = append(records, vectorRecord{
			ID:     RecordID(documentID, ch.Index),
			Values: vectors[i],
			Metadata: models.ChunkMetadata{
				DocumentID: documentID,
				FileName:   fileName,
				Text:       ch.Text,
				ChunkIndex: ch.Index,
				PageNumber: ch.Page,
			},
		})
	}

	for start := 0; start < len(records); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		payload := map[string]any{"vectors": records[start:end]}
		if err := c.post(ctx, "/vectors/upsert", payload, nil); err != nil {
			return &util.ProviderError{Provider: "pinecone", Op: "upsert", Err: err}
		}
	}
	return nil
}

func (c *Client) Query(ctx context.Context, documentID string, vector []float32, topK int) ([]models.VectorMatch, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	if len(vector) == 0 {
		return nil, &util.ValidationError{Field: "vector", Reason: "query vector is empty"}
	}
	if topK <= 0 {
		topK = 10
	}

	payload := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
		// Hard isolation boundary: only this document's records may match.
		"filter": map[string]any{
			"document_id": map[string]any{"$eq": documentID},
		},
	}
	var resp struct {
		Matches []struct {
			ID       string               `json:"id"`
			Score    float64              `json:"score"`
			Metadata models.ChunkMetadata `json:"metadata"`
		} `json:"matches"`
	}
	if err := c.post(ctx, "/query", payload, &resp); err != nil {
		return nil, &util.ProviderError{Provider: "pinecone", Op: "query", Err: err}
	}

	matches := make([]models.VectorMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, models.VectorMatch{Score: m.Score, Metadata: m.Metadata})
	}
	// Providers return matches best-first already; keep that ordering stable
	// even if one does not.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.indexHost+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
