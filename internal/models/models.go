package models

import "time"

// Document lifecycle states. A document is created as processing and moves
// exactly once to ready or failed; it never moves back.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// Conversation roles accepted at the query boundary.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Document struct {
	DocumentID string    `json:"document_id"`
	FileName   string    `json:"file_name"`
	UploadDate time.Time `json:"upload_date"`
	Status     string    `json:"status"`
	PageCount  int       `json:"page_count,omitempty"`
	ChunkCount int       `json:"chunk_count,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Chunk is a contiguous slice of document text. Index is stable within the
// document; Page is the 1-based page holding the chunk's first character,
// or 0 when provenance could not be derived.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Page  int    `json:"page,omitempty"`
}

type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChunkMetadata travels with every vector record and comes back verbatim on
// query matches.
type ChunkMetadata struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	Text       string `json:"text"`
	ChunkIndex int    `json:"chunk_index"`
	PageNumber int    `json:"page_number,omitempty"`
}

// VectorMatch is one similarity-search hit, ordered by descending score as
// returned by the index provider.
type VectorMatch struct {
	Score    float64       `json:"score"`
	Metadata ChunkMetadata `json:"metadata"`
}

type QueryResult struct {
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}
