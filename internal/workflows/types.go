package workflows

type DocumentIngestInput struct {
	DocumentID   string `json:"document_id"`
	FilePath     string `json:"file_path"`
	FileName     string `json:"file_name"`
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
}

// IngestStatus is exposed through a workflow query for debugging an
// in-flight ingestion.
type IngestStatus struct {
	DocumentID  string `json:"document_id"`
	CurrentStep string `json:"current_step"`
	Status      string `json:"status"`
	PageCount   int    `json:"page_count,omitempty"`
	ChunkCount  int    `json:"chunk_count,omitempty"`
	FailReason  string `json:"fail_reason,omitempty"`
}
