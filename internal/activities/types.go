package activities

import "docchat/internal/models"

type ExtractTextInput struct {
	DocumentID string `json:"document_id"`
	FilePath   string `json:"file_path"`
}

type ExtractTextOutput struct {
	Pages     []string `json:"pages"`
	PageCount int      `json:"page_count"`
	ByteSize  int64    `json:"byte_size"`
}

type ChunkTextInput struct {
	DocumentID   string   `json:"document_id"`
	Pages        []string `json:"pages"`
	ChunkSize    int      `json:"chunk_size"`
	ChunkOverlap int      `json:"chunk_overlap"`
}

type ChunkTextOutput struct {
	Chunks []models.Chunk `json:"chunks"`
}

type EmbedChunksInput struct {
	DocumentID string         `json:"document_id"`
	Chunks     []models.Chunk `json:"chunks"`
}

type EmbedChunksOutput struct {
	Vectors [][]float32 `json:"vectors"`
}

type UpsertVectorsInput struct {
	DocumentID string         `json:"document_id"`
	FileName   string         `json:"file_name"`
	Chunks     []models.Chunk `json:"chunks"`
	Vectors    [][]float32    `json:"vectors"`
}

type MarkDocumentReadyInput struct {
	DocumentID string `json:"document_id"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
}

type MarkDocumentFailedInput struct {
	DocumentID string `json:"document_id"`
	Reason     string `json:"reason"`
}

type RemoveSourceFileInput struct {
	FilePath string `json:"file_path"`
}
