package pinecone

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"docchat/internal/models"
	"docchat/internal/util"

	"github.com/stretchr/testify/require"
)

func makeChunks(n int) ([]models.Chunk, [][]float32) {
	chunks := make([]models.Chunk, 0, n)
	vectors := make([][]float32, 0, n)
	for i := 0; i < n; i++ {
		chunks = append(chunks, models.Chunk{Index: i, Text: fmt.Sprintf("chunk %d", i), Page: 1})
		vectors = append(vectors, []float32{float32(i)})
	}
	return chunks, vectors
}

func TestUpsertBatchesOfAtMost100(t *testing.T) {
	var batches []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/vectors/upsert", r.URL.Path)
		require.Equal(t, "k", r.Header.Get("Api-Key"))
		var req struct {
			Vectors []vectorRecord `json:"vectors"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		batches = append(batches, len(req.Vectors))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	chunks, vectors := makeChunks(250)
	require.NoError(t, c.Upsert(context.Background(), "doc-1", chunks, vectors, "a.pdf"))
	require.Equal(t, []int{100, 100, 50}, batches)
}

func TestUpsertIdempotentRecordIDs(t *testing.T) {
	seen := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Vectors []vectorRecord `json:"vectors"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		for _, v := range req.Vectors {
			seen[v.ID]++
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	chunks, vectors := makeChunks(3)
	require.NoError(t, c.Upsert(context.Background(), "doc-1", chunks, vectors, "a.pdf"))
	require.NoError(t, c.Upsert(context.Background(), "doc-1", chunks, vectors, "a.pdf"))

	// Re-ingesting yields the same ids, so the index overwrites by id instead
	// of accumulating duplicates.
	require.Len(t, seen, 3)
	require.Equal(t, 2, seen["doc-1:0"])
}

func TestUpsertAbortsRemainingBatchesOnFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			http.Error(w, "index full", http.StatusInsufficientStorage)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	chunks, vectors := makeChunks(250)
	err := c.Upsert(context.Background(), "doc-1", chunks, vectors, "a.pdf")
	var provErr *util.ProviderError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, 2, calls)
}

func TestUpsertLengthMismatch(t *testing.T) {
	c := NewClient("k", "http://unused")
	chunks, vectors := makeChunks(2)
	err := c.Upsert(context.Background(), "doc-1", chunks, vectors[:1], "a.pdf")
	var valErr *util.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestQueryFiltersByDocumentAndOrdersByScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		filter := req["filter"].(map[string]any)["document_id"].(map[string]any)
		require.Equal(t, "doc-7", filter["$eq"])
		require.Equal(t, float64(10), req["topK"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{"id": "doc-7:0", "score": 0.91, "metadata": map[string]any{"document_id": "doc-7", "text": "first", "chunk_index": 0}},
				{"id": "doc-7:4", "score": 0.52, "metadata": map[string]any{"document_id": "doc-7", "text": "second", "chunk_index": 4}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	matches, err := c.Query(context.Background(), "doc-7", []float32{0.1, 0.2}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Greater(t, matches[0].Score, matches[1].Score)
	require.Equal(t, "first", matches[0].Metadata.Text)
}

func TestQueryNoMatchesIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"matches": []any{}})
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL)
	matches, err := c.Query(context.Background(), "doc-1", []float32{0.1}, 5)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestQueryEmptyVectorRejected(t *testing.T) {
	c := NewClient("k", "http://unused")
	_, err := c.Query(context.Background(), "doc-1", nil, 5)
	var valErr *util.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestMissingConfig(t *testing.T) {
	var cfgErr *util.ConfigurationError

	_, err := NewClient("", "http://host").Query(context.Background(), "d", []float32{1}, 5)
	require.ErrorAs(t, err, &cfgErr)

	err = NewClient("k", "").Upsert(context.Background(), "d", []models.Chunk{{Index: 0, Text: "x"}}, [][]float32{{1}}, "f.pdf")
	require.ErrorAs(t, err, &cfgErr)
}
