package rag

import (
	"context"
	"fmt"
	"strings"

	"docchat/internal/models"
	"docchat/internal/providers"
)

// VectorIndex is the similarity-search boundary the retriever depends on.
// *pinecone.Client satisfies it.
type VectorIndex interface {
	Query(ctx context.Context, documentID string, vector []float32, topK int) ([]models.VectorMatch, error)
}

const DefaultTopK = 10

// Retriever embeds a standalone question and fetches the top-K chunks scoped
// to one document, formatted as labeled blocks best-first. An empty string is
// the valid "no relevant content" outcome, not an error.
type Retriever struct {
	embedder providers.EmbeddingProvider
	index    VectorIndex
	topK     int
}

func NewRetriever(embedder providers.EmbeddingProvider, index VectorIndex, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, index: index, topK: topK}
}

func (r *Retriever) Retrieve(ctx context.Context, documentID, query string) (string, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("retrieval failed: embed query: %w", err)
	}
	matches, err := r.index.Query(ctx, documentID, vector, r.topK)
	if err != nil {
		return "", fmt.Errorf("retrieval failed: search index: %w", err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, formatMatch(m))
	}
	return strings.Join(blocks, chunkSeparator), nil
}

// IsRetrievalError reports whether the error came from the retrieval stage.
// The orchestrator never retries these: a broken index or embed call will not
// heal within a request, unlike a transient generation hiccup.
func IsRetrievalError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "retrieval failed") || strings.Contains(msg, "search index")
}
