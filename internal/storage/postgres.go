package storage

import (
	"context"
	"errors"
	"fmt"

	"docchat/internal/models"
	"docchat/internal/util"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the durable registry substitute. Schema:
//
//	CREATE TABLE documents (
//	    document_id TEXT PRIMARY KEY,
//	    file_name   TEXT NOT NULL,
//	    status      TEXT NOT NULL,
//	    page_count  INT,
//	    chunk_count INT,
//	    error       TEXT,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) Create(ctx context.Context, doc models.Document) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO documents (document_id, file_name, status, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (document_id)
DO UPDATE SET
  file_name = EXCLUDED.file_name,
  status = EXCLUDED.status,
  page_count = NULL,
  chunk_count = NULL,
  error = NULL,
  updated_at = NOW()`,
		doc.DocumentID, doc.FileName, doc.Status, doc.UploadDate,
	)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, documentID string) (models.Document, error) {
	var doc models.Document
	err := s.pool.QueryRow(ctx, `
SELECT document_id, file_name, created_at, status,
       COALESCE(page_count, 0), COALESCE(chunk_count, 0), COALESCE(error, '')
FROM documents
WHERE document_id=$1`, documentID).
		Scan(&doc.DocumentID, &doc.FileName, &doc.UploadDate, &doc.Status, &doc.PageCount, &doc.ChunkCount, &doc.Error)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Document{}, &util.NotFoundError{DocumentID: documentID}
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) MarkReady(ctx context.Context, documentID string, pageCount, chunkCount int) error {
	tag, err := s.pool.Exec(ctx, `
UPDATE documents
SET status=$2, page_count=$3, chunk_count=$4, error=NULL, updated_at=NOW()
WHERE document_id=$1`, documentID, models.StatusReady, pageCount, chunkCount)
	if err != nil {
		return fmt.Errorf("mark document ready: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &util.NotFoundError{DocumentID: documentID}
	}
	return nil
}

func (s *PostgresStore) MarkFailed(ctx context.Context, documentID, reason string) error {
	tag, err := s.pool.Exec(ctx, `
UPDATE documents
SET status=$2, error=NULLIF($3,''), updated_at=NOW()
WHERE document_id=$1`, documentID, models.StatusFailed, reason)
	if err != nil {
		return fmt.Errorf("mark document failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &util.NotFoundError{DocumentID: documentID}
	}
	return nil
}
