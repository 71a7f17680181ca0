package workflows

import (
	"context"
	"errors"
	"testing"

	"docchat/internal/activities"
	"docchat/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerAll(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "ExtractTextActivity", func(context.Context, activities.ExtractTextInput) (activities.ExtractTextOutput, error) {
		return activities.ExtractTextOutput{}, nil
	})
	registerActivityName(env, "ChunkTextActivity", func(context.Context, activities.ChunkTextInput) (activities.ChunkTextOutput, error) {
		return activities.ChunkTextOutput{}, nil
	})
	registerActivityName(env, "EmbedChunksActivity", func(context.Context, activities.EmbedChunksInput) (activities.EmbedChunksOutput, error) {
		return activities.EmbedChunksOutput{}, nil
	})
	registerActivityName(env, "UpsertVectorsActivity", func(context.Context, activities.UpsertVectorsInput) error { return nil })
	registerActivityName(env, "MarkDocumentReadyActivity", func(context.Context, activities.MarkDocumentReadyInput) error { return nil })
	registerActivityName(env, "MarkDocumentFailedActivity", func(context.Context, activities.MarkDocumentFailedInput) error { return nil })
	registerActivityName(env, "RemoveSourceFileActivity", func(context.Context, activities.RemoveSourceFileInput) error { return nil })
}

func someChunks() []models.Chunk {
	return []models.Chunk{
		{Index: 0, Text: "chunk zero", Page: 1},
		{Index: 1, Text: "chunk one", Page: 2},
		{Index: 2, Text: "chunk two", Page: 3},
	}
}

func TestDocumentIngestWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentIngestWorkflow)
	registerAll(env)

	env.OnActivity("ExtractTextActivity", mock.Anything, activities.ExtractTextInput{DocumentID: "d1", FilePath: "/tmp/d1.pdf"}).
		Return(activities.ExtractTextOutput{Pages: []string{"p1", "p2", "p3"}, PageCount: 3, ByteSize: 4096}, nil)
	env.OnActivity("ChunkTextActivity", mock.Anything, mock.Anything).
		Return(activities.ChunkTextOutput{Chunks: someChunks()}, nil)
	env.OnActivity("EmbedChunksActivity", mock.Anything, mock.Anything).
		Return(activities.EmbedChunksOutput{Vectors: [][]float32{{0.1}, {0.2}, {0.3}}}, nil)
	env.OnActivity("UpsertVectorsActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("MarkDocumentReadyActivity", mock.Anything, activities.MarkDocumentReadyInput{DocumentID: "d1", PageCount: 3, ChunkCount: 3}).
		Return(nil)
	env.OnActivity("RemoveSourceFileActivity", mock.Anything, activities.RemoveSourceFileInput{FilePath: "/tmp/d1.pdf"}).
		Return(nil)

	env.ExecuteWorkflow(DocumentIngestWorkflow, DocumentIngestInput{
		DocumentID: "d1",
		FilePath:   "/tmp/d1.pdf",
		FileName:   "report.pdf",
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "ready", out)
	env.AssertExpectations(t)
}

func TestDocumentIngestWorkflowNoTextMarksFailed(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentIngestWorkflow)
	registerAll(env)

	var failedWith string
	env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).
		Return(activities.ExtractTextOutput{}, errors.New("no extractable text found in PDF"))
	env.OnActivity("MarkDocumentFailedActivity", mock.Anything, mock.Anything).
		Return(func(_ context.Context, in activities.MarkDocumentFailedInput) error {
			failedWith = in.Reason
			return nil
		})
	env.OnActivity("RemoveSourceFileActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(DocumentIngestWorkflow, DocumentIngestInput{DocumentID: "d2", FilePath: "/tmp/d2.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
	require.Contains(t, failedWith, "no extractable text")
}

func TestDocumentIngestWorkflowEmbedFailureShortCircuits(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentIngestWorkflow)
	registerAll(env)

	env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).
		Return(activities.ExtractTextOutput{Pages: []string{"p1"}, PageCount: 1}, nil)
	env.OnActivity("ChunkTextActivity", mock.Anything, mock.Anything).
		Return(activities.ChunkTextOutput{Chunks: someChunks()}, nil)
	env.OnActivity("EmbedChunksActivity", mock.Anything, mock.Anything).
		Return(activities.EmbedChunksOutput{}, errors.New("gemini embed failed: quota exhausted"))
	env.OnActivity("MarkDocumentFailedActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("RemoveSourceFileActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(DocumentIngestWorkflow, DocumentIngestInput{DocumentID: "d3", FilePath: "/tmp/d3.pdf"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, "failed", out)
	// Upsert and ready-marking never run after an embed failure.
	env.AssertNotCalled(t, "UpsertVectorsActivity", mock.Anything, mock.Anything)
	env.AssertNotCalled(t, "MarkDocumentReadyActivity", mock.Anything, mock.Anything)
}

func TestDocumentIngestWorkflowRemovesFileOnSuccessAndFailure(t *testing.T) {
	for _, fail := range []bool{false, true} {
		var ts testsuite.WorkflowTestSuite
		env := ts.NewTestWorkflowEnvironment()
		env.RegisterWorkflow(DocumentIngestWorkflow)
		registerAll(env)

		removed := 0
		if fail {
			env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).
				Return(activities.ExtractTextOutput{}, errors.New("open pdf: truncated file"))
			env.OnActivity("MarkDocumentFailedActivity", mock.Anything, mock.Anything).Return(nil)
		} else {
			env.OnActivity("ExtractTextActivity", mock.Anything, mock.Anything).
				Return(activities.ExtractTextOutput{Pages: []string{"p"}, PageCount: 1}, nil)
			env.OnActivity("ChunkTextActivity", mock.Anything, mock.Anything).
				Return(activities.ChunkTextOutput{Chunks: someChunks()}, nil)
			env.OnActivity("EmbedChunksActivity", mock.Anything, mock.Anything).
				Return(activities.EmbedChunksOutput{Vectors: [][]float32{{1}, {2}, {3}}}, nil)
			env.OnActivity("UpsertVectorsActivity", mock.Anything, mock.Anything).Return(nil)
			env.OnActivity("MarkDocumentReadyActivity", mock.Anything, mock.Anything).Return(nil)
		}
		env.OnActivity("RemoveSourceFileActivity", mock.Anything, mock.Anything).
			Return(func(_ context.Context, in activities.RemoveSourceFileInput) error {
				removed++
				return nil
			})

		env.ExecuteWorkflow(DocumentIngestWorkflow, DocumentIngestInput{DocumentID: "d4", FilePath: "/tmp/d4.pdf"})
		require.True(t, env.IsWorkflowCompleted())
		require.Equal(t, 1, removed, "fail=%v", fail)
	}
}
