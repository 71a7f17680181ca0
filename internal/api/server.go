package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docchat/internal/config"
	"docchat/internal/models"
	"docchat/internal/storage"
	"docchat/internal/util"
	"docchat/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

const (
	maxQuestionChars = 5000
	maxHistoryTurns  = 100
)

// WorkflowStarter is the slice of the Temporal client the upload handler
// needs. tclient.Client satisfies it.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options tclient.StartWorkflowOptions, workflow interface{}, args ...interface{}) (tclient.WorkflowRun, error)
}

// QueryPipeline answers one validated question. *rag.Orchestrator satisfies it.
type QueryPipeline interface {
	Process(ctx context.Context, documentID, question string, history []models.ConversationTurn) (models.QueryResult, error)
}

type Server struct {
	cfg      config.Config
	store    storage.DocumentStore
	temporal WorkflowStarter
	pipeline QueryPipeline
}

func NewServer(cfg config.Config, store storage.DocumentStore, temporal WorkflowStarter, pipeline QueryPipeline) *Server {
	return &Server{cfg: cfg, store: store, temporal: temporal, pipeline: pipeline}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/documents", s.handleDocuments)
	mux.HandleFunc("/documents/", s.handleDocumentScoped)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "This endpoint does not support the requested method.")
		return
	}
	s.handleUpload(w, r)
}

func (s *Server) handleDocumentScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/documents/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "Requested resource was not found.")
		return
	}
	documentID := parts[0]

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "This endpoint does not support the requested method.")
			return
		}
		s.handleStatus(w, r, documentID)
	case len(parts) == 2 && parts[1] == "query":
		if r.Method != http.MethodPost {
			writeErr(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "This endpoint does not support the requested method.")
			return
		}
		s.handleQuery(w, r, documentID)
	default:
		writeErr(w, http.StatusNotFound, "NOT_FOUND", "Requested resource was not found.")
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "Upload must be multipart form data under the size limit.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "A PDF file is required in the 'file' field.")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "Only PDF files are accepted.")
		return
	}

	documentID := uuid.NewString()
	savedPath, err := s.saveUpload(documentID, file)
	if err != nil {
		log.Printf("save upload: %v", err)
		writeErr(w, http.StatusInternalServerError, "UPLOAD_FAILED", "Could not store the uploaded file. Please retry.")
		return
	}

	fileName := filepath.Base(header.Filename)
	doc := models.Document{
		DocumentID: documentID,
		FileName:   fileName,
		UploadDate: time.Now().UTC(),
		Status:     models.StatusProcessing,
	}
	if err := s.store.Create(r.Context(), doc); err != nil {
		log.Printf("create document record: %v", err)
		_ = os.Remove(savedPath)
		writeErr(w, http.StatusInternalServerError, "UPLOAD_FAILED", "Could not register the document. Please retry.")
		return
	}

	// The response does not wait for ingestion; the workflow owns the status
	// record from here on.
	_, err = s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    "ingest-" + documentID,
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}, workflows.DocumentIngestWorkflow, workflows.DocumentIngestInput{
		DocumentID:   documentID,
		FilePath:     savedPath,
		FileName:     fileName,
		ChunkSize:    s.cfg.ChunkSize,
		ChunkOverlap: s.cfg.ChunkOverlap,
	})
	if err != nil {
		log.Printf("start ingest workflow for %s: %v", documentID, err)
		_ = s.store.MarkFailed(r.Context(), documentID, "ingestion could not be scheduled")
		_ = os.Remove(savedPath)
		writeErr(w, http.StatusServiceUnavailable, "INGEST_UNAVAILABLE", "Ingestion is unavailable right now. Please retry.")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"document_id": documentID,
		"file_name":   fileName,
		"status":      models.StatusProcessing,
	})
}

func (s *Server) saveUpload(documentID string, src multipart.File) (string, error) {
	if err := util.EnsureDir(s.cfg.UploadDir); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(s.cfg.UploadDir, "upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	finalPath := util.SafeJoin(s.cfg.UploadDir, documentID+".pdf")
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("atomic move upload: %w", err)
	}
	return finalPath, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, documentID string) {
	doc, err := s.store.Get(r.Context(), documentID)
	if err != nil {
		var nf *util.NotFoundError
		if errors.As(err, &nf) {
			writeErr(w, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "No document exists with that id.")
			return
		}
		log.Printf("get document %s: %v", documentID, err)
		writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error. Please retry.")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type queryRequest struct {
	Question string                    `json:"question"`
	History  []models.ConversationTurn `json:"history"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request, documentID string) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", "Malformed JSON request body.")
		return
	}
	if err := validateQuery(documentID, req); err != nil {
		writeErr(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	doc, err := s.store.Get(r.Context(), documentID)
	if err != nil {
		var nf *util.NotFoundError
		if errors.As(err, &nf) {
			writeErr(w, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "No document exists with that id.")
			return
		}
		log.Printf("get document %s: %v", documentID, err)
		writeErr(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error. Please retry.")
		return
	}
	switch doc.Status {
	case models.StatusProcessing:
		writeErr(w, http.StatusConflict, "DOCUMENT_PROCESSING", "The document is still being processed. Try again shortly.")
		return
	case models.StatusFailed:
		writeErr(w, http.StatusConflict, "DOCUMENT_FAILED", "The document failed processing and cannot be queried.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(s.cfg.QueryTimeoutSecs)*time.Second)
	defer cancel()

	result, err := s.pipeline.Process(ctx, documentID, strings.TrimSpace(req.Question), req.History)
	if err != nil {
		log.Printf("query document %s: %v", documentID, err)
		writeErr(w, http.StatusBadGateway, "QUERY_FAILED", "The question could not be answered right now. Please retry.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"answer":    result.Answer,
		"timestamp": result.Timestamp.UTC().Format(time.RFC3339),
	})
}

func validateQuery(documentID string, req queryRequest) error {
	if _, err := uuid.Parse(documentID); err != nil {
		return fmt.Errorf("document id must be a UUID")
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return fmt.Errorf("question is required")
	}
	if len([]rune(req.Question)) > maxQuestionChars {
		return fmt.Errorf("question exceeds %d characters", maxQuestionChars)
	}
	if len(req.History) > maxHistoryTurns {
		return fmt.Errorf("history exceeds %d turns", maxHistoryTurns)
	}
	for i, turn := range req.History {
		if turn.Role != models.RoleUser && turn.Role != models.RoleModel {
			return fmt.Errorf("history turn %d has invalid role %q", i, turn.Role)
		}
		if strings.TrimSpace(turn.Content) == "" {
			return fmt.Errorf("history turn %d has empty content", i)
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
