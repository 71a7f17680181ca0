package rag

import (
	"context"
	"strings"
	"time"

	"docchat/internal/models"
	"docchat/internal/providers"
	"docchat/internal/util"
)

// Generator composes the grounded prompt and invokes the language model once.
type Generator struct {
	llm providers.LLMProvider
	now func() time.Time
}

func NewGenerator(llm providers.LLMProvider) *Generator {
	return &Generator{llm: llm, now: time.Now}
}

func (g *Generator) Generate(ctx context.Context, question, contextText string, history []models.ConversationTurn) (models.QueryResult, error) {
	text, err := g.llm.Generate(ctx, buildAnswerPrompt(question, contextText, history))
	if err != nil {
		return models.QueryResult{}, &util.GenerationError{Err: err}
	}
	return models.QueryResult{
		Answer:    strings.TrimSpace(text),
		Timestamp: g.now(),
	}, nil
}
