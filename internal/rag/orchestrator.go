package rag

import (
	"context"
	"log"
	"time"

	"docchat/internal/models"
)

const (
	maxAttempts    = 2
	initialBackoff = time.Second
)

// Orchestrator sequences rewrite, retrieve, and generate for one question.
type Orchestrator struct {
	rewriter  *Rewriter
	retriever *Retriever
	generator *Generator
	sleep     func(time.Duration)
	now       func() time.Time
}

func NewOrchestrator(rewriter *Rewriter, retriever *Retriever, generator *Generator) *Orchestrator {
	return &Orchestrator{
		rewriter:  rewriter,
		retriever: retriever,
		generator: generator,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Process answers one question against one document. Everything after the
// rewrite is retried once with exponential backoff, except retrieval-tagged
// failures, which surface immediately.
func (o *Orchestrator) Process(ctx context.Context, documentID, question string, history []models.ConversationTurn) (models.QueryResult, error) {
	standalone := o.rewriter.Rewrite(ctx, question, history)

	backoff := initialBackoff
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := o.attempt(ctx, documentID, standalone, history)
		if err == nil {
			return result, nil
		}
		if IsRetrievalError(err) {
			return models.QueryResult{}, err
		}
		lastErr = err
		if attempt < maxAttempts {
			log.Printf("query attempt %d for document %s failed, retrying in %s: %v", attempt, documentID, backoff, err)
			o.sleep(backoff)
			backoff *= 2
		}
	}
	return models.QueryResult{}, lastErr
}

func (o *Orchestrator) attempt(ctx context.Context, documentID, question string, history []models.ConversationTurn) (models.QueryResult, error) {
	contextText, err := o.retriever.Retrieve(ctx, documentID, question)
	if err != nil {
		return models.QueryResult{}, err
	}
	if contextText == "" {
		return models.QueryResult{Answer: NoContextAnswer, Timestamp: o.now()}, nil
	}
	return o.generator.Generate(ctx, question, contextText, history)
}
