package storage

import (
	"context"
	"sync"

	"docchat/internal/models"
	"docchat/internal/util"
)

// MemoryStore keeps document records for the lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]models.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]models.Document)}
}

func (s *MemoryStore) Create(ctx context.Context, doc models.Document) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.DocumentID] = doc
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, documentID string) (models.Document, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return models.Document{}, &util.NotFoundError{DocumentID: documentID}
	}
	return doc, nil
}

func (s *MemoryStore) MarkReady(ctx context.Context, documentID string, pageCount, chunkCount int) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return &util.NotFoundError{DocumentID: documentID}
	}
	doc.Status = models.StatusReady
	doc.PageCount = pageCount
	doc.ChunkCount = chunkCount
	doc.Error = ""
	s.docs[documentID] = doc
	return nil
}

func (s *MemoryStore) MarkFailed(ctx context.Context, documentID, reason string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return &util.NotFoundError{DocumentID: documentID}
	}
	doc.Status = models.StatusFailed
	doc.Error = reason
	s.docs[documentID] = doc
	return nil
}
