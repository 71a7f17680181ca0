package activities

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/models"
	"docchat/internal/providers"
	"docchat/internal/storage"
	"docchat/internal/util"

	"github.com/ledongthuc/pdf"
)

// VectorUpserter is the slice of the index gateway the pipeline writes
// through. *pinecone.Client satisfies it.
type VectorUpserter interface {
	Upsert(ctx context.Context, documentID string, chunks []models.Chunk, vectors [][]float32, fileName string) error
}

type Activities struct {
	cfg      config.Config
	store    storage.DocumentStore
	embedder providers.EmbeddingProvider
	index    VectorUpserter
}

func New(cfg config.Config, store storage.DocumentStore, embedder providers.EmbeddingProvider, index VectorUpserter) *Activities {
	return &Activities{cfg: cfg, store: store, embedder: embedder, index: index}
}

// ExtractTextActivity verifies the source file is readable and extracts
// sanitized per-page plain text.
func (a *Activities) ExtractTextActivity(ctx context.Context, in ExtractTextInput) (ExtractTextOutput, error) {
	_ = ctx
	info, err := os.Stat(in.FilePath)
	if err != nil {
		return ExtractTextOutput{}, fmt.Errorf("stat source file: %w", err)
	}

	f, r, err := pdf.Open(in.FilePath)
	if err != nil {
		return ExtractTextOutput{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	pages := make([]string, 0, pageCount)
	usable := false
	for i := 1; i <= pageCount; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single unreadable page is tolerated; the document fails only
			// when nothing at all is extractable.
			pages = append(pages, "")
			continue
		}
		text = util.SanitizeText(text)
		pages = append(pages, text)
		if text != "" {
			usable = true
		}
	}
	if !usable {
		return ExtractTextOutput{}, util.ErrNoExtractableText
	}
	return ExtractTextOutput{Pages: pages, PageCount: pageCount, ByteSize: info.Size()}, nil
}

func (a *Activities) ChunkTextActivity(ctx context.Context, in ChunkTextInput) (ChunkTextOutput, error) {
	_ = ctx
	size := in.ChunkSize
	if size <= 0 {
		size = a.cfg.ChunkSize
	}
	overlap := in.ChunkOverlap
	if overlap < 0 || overlap >= size {
		overlap = a.cfg.ChunkOverlap
	}
	chunks, err := chunker.Split(in.Pages, size, overlap)
	if err != nil {
		return ChunkTextOutput{}, err
	}
	if len(chunks) == 0 {
		return ChunkTextOutput{}, util.ErrEmptyDocument
	}
	return ChunkTextOutput{Chunks: chunks}, nil
}

// EmbedChunksActivity embeds every chunk in one provider call.
func (a *Activities) EmbedChunksActivity(ctx context.Context, in EmbedChunksInput) (EmbedChunksOutput, error) {
	texts := make([]string, 0, len(in.Chunks))
	for _, c := range in.Chunks {
		texts = append(texts, c.Text)
	}
	vectors, err := a.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return EmbedChunksOutput{}, err
	}
	if len(vectors) != len(in.Chunks) {
		return EmbedChunksOutput{}, fmt.Errorf("embedding count mismatch: %d vectors for %d chunks", len(vectors), len(in.Chunks))
	}
	return EmbedChunksOutput{Vectors: vectors}, nil
}

func (a *Activities) UpsertVectorsActivity(ctx context.Context, in UpsertVectorsInput) error {
	return a.index.Upsert(ctx, in.DocumentID, in.Chunks, in.Vectors, in.FileName)
}

func (a *Activities) MarkDocumentReadyActivity(ctx context.Context, in MarkDocumentReadyInput) error {
	return a.store.MarkReady(ctx, in.DocumentID, in.PageCount, in.ChunkCount)
}

func (a *Activities) MarkDocumentFailedActivity(ctx context.Context, in MarkDocumentFailedInput) error {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "ingestion failed"
	}
	return a.store.MarkFailed(ctx, in.DocumentID, reason)
}

// RemoveSourceFileActivity deletes the uploaded file after ingestion ends,
// success or failure. Best-effort: a leftover file is logged, never escalated.
func (a *Activities) RemoveSourceFileActivity(ctx context.Context, in RemoveSourceFileInput) error {
	_ = ctx
	if err := os.Remove(in.FilePath); err != nil && !os.IsNotExist(err) {
		log.Printf("could not remove source file %s: %v", in.FilePath, err)
	}
	return nil
}
