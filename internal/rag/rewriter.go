package rag

import (
	"context"
	"log"
	"strings"

	"docchat/internal/models"
	"docchat/internal/providers"
)

// Rewriter folds conversation history into a standalone question. Rewriting
// is a best-effort optimization: provider failures are swallowed and the
// original question is used, unlike retrieval failures which always surface.
type Rewriter struct {
	llm providers.LLMProvider
}

func NewRewriter(llm providers.LLMProvider) *Rewriter {
	return &Rewriter{llm: llm}
}

func (r *Rewriter) Rewrite(ctx context.Context, question string, history []models.ConversationTurn) string {
	if len(history) == 0 {
		return question
	}
	rewritten, err := r.llm.Generate(ctx, buildRewritePrompt(question, history))
	if err != nil {
		log.Printf("query rewrite failed, using original question: %v", err)
		return question
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return question
	}
	return rewritten
}
