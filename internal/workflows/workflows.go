package workflows

import (
	"errors"
	"time"

	"docchat/internal/activities"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetIngestStatus = "GetIngestStatus"

// DocumentIngestWorkflow runs the parse -> chunk -> embed -> index pipeline
// for one uploaded document. It is the sole writer of the document's status
// after upload acceptance: any stage error moves the record to failed with
// the originating message, success moves it to ready, and either way the
// source file is removed afterwards. The workflow itself completes normally
// in both cases; "failed" is a terminal document state, not a workflow crash.
func DocumentIngestWorkflow(ctx workflow.Context, input DocumentIngestInput) (string, error) {
	status := IngestStatus{
		DocumentID:  input.DocumentID,
		CurrentStep: "init",
		Status:      "processing",
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetIngestStatus, func() (IngestStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	// Pipeline stages run exactly once: the status record transitions a
	// single time after creation, and query-path retries are handled by the
	// orchestrator, not here.
	pipelineCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	// Status writes and file cleanup may retry; they are idempotent.
	bookkeepCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	})

	fail := func(reason string) (string, error) {
		status.Status = "failed"
		status.FailReason = reason
		_ = workflow.ExecuteActivity(bookkeepCtx, "MarkDocumentFailedActivity", activities.MarkDocumentFailedInput{
			DocumentID: input.DocumentID,
			Reason:     reason,
		}).Get(ctx, nil)
		_ = workflow.ExecuteActivity(bookkeepCtx, "RemoveSourceFileActivity", activities.RemoveSourceFileInput{
			FilePath: input.FilePath,
		}).Get(ctx, nil)
		return "failed", nil
	}

	status.CurrentStep = "extract_text"
	var textOut activities.ExtractTextOutput
	if err := workflow.ExecuteActivity(pipelineCtx, "ExtractTextActivity", activities.ExtractTextInput{
		DocumentID: input.DocumentID,
		FilePath:   input.FilePath,
	}).Get(ctx, &textOut); err != nil {
		return fail(failReason(err))
	}
	status.PageCount = textOut.PageCount

	status.CurrentStep = "chunk_text"
	var chunkOut activities.ChunkTextOutput
	if err := workflow.ExecuteActivity(pipelineCtx, "ChunkTextActivity", activities.ChunkTextInput{
		DocumentID:   input.DocumentID,
		Pages:        textOut.Pages,
		ChunkSize:    input.ChunkSize,
		ChunkOverlap: input.ChunkOverlap,
	}).Get(ctx, &chunkOut); err != nil {
		return fail(failReason(err))
	}
	status.ChunkCount = len(chunkOut.Chunks)

	status.CurrentStep = "embed_chunks"
	var embedOut activities.EmbedChunksOutput
	if err := workflow.ExecuteActivity(pipelineCtx, "EmbedChunksActivity", activities.EmbedChunksInput{
		DocumentID: input.DocumentID,
		Chunks:     chunkOut.Chunks,
	}).Get(ctx, &embedOut); err != nil {
		return fail(failReason(err))
	}

	status.CurrentStep = "upsert_vectors"
	if err := workflow.ExecuteActivity(pipelineCtx, "UpsertVectorsActivity", activities.UpsertVectorsInput{
		DocumentID: input.DocumentID,
		FileName:   input.FileName,
		Chunks:     chunkOut.Chunks,
		Vectors:    embedOut.Vectors,
	}).Get(ctx, nil); err != nil {
		return fail(failReason(err))
	}

	status.CurrentStep = "mark_ready"
	if err := workflow.ExecuteActivity(bookkeepCtx, "MarkDocumentReadyActivity", activities.MarkDocumentReadyInput{
		DocumentID: input.DocumentID,
		PageCount:  textOut.PageCount,
		ChunkCount: len(chunkOut.Chunks),
	}).Get(ctx, nil); err != nil {
		return fail(failReason(err))
	}

	_ = workflow.ExecuteActivity(bookkeepCtx, "RemoveSourceFileActivity", activities.RemoveSourceFileInput{
		FilePath: input.FilePath,
	}).Get(ctx, nil)

	status.CurrentStep = "done"
	status.Status = "ready"
	return status.Status, nil
}

// failReason strips Temporal's activity-error wrapping down to the message
// recorded on the document.
func failReason(err error) string {
	if err == nil {
		return ""
	}
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Message()
	}
	return err.Error()
}
