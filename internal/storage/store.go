package storage

import (
	"context"

	"docchat/internal/models"
)

// DocumentStore is the document status registry. The ingest workflow is the
// only writer after Create; writes are last-write-wins, which is safe because
// each document has exactly one in-flight workflow.
//
// The default implementation is in-memory with process lifetime. Deployments
// that need durability swap in the Postgres store without touching pipeline
// logic.
type DocumentStore interface {
	Create(ctx context.Context, doc models.Document) error
	// Get returns *util.NotFoundError for unknown ids.
	Get(ctx context.Context, documentID string) (models.Document, error)
	MarkReady(ctx context.Context, documentID string, pageCount, chunkCount int) error
	MarkFailed(ctx context.Context, documentID, reason string) error
}
