package rag

import (
	"fmt"
	"strings"

	"docchat/internal/models"
)

// NoContextAnswer is returned without calling the language model when
// retrieval finds nothing relevant.
const NoContextAnswer = "I couldn't find relevant information in the document to answer your question."

const answerPersona = `You are a helpful assistant that answers questions about a PDF document.
Answer using ONLY the provided document context. If the context does not
contain the answer, say so plainly instead of guessing. Be concise and
specific, and quote figures or definitions from the context when available.`

const rewriteInstruction = `Given the conversation below, rewrite the final user question so it is a
fully self-contained, standalone question. Resolve pronouns and references
using the conversation. Return only the rewritten question, nothing else.`

// chunkSeparator joins retrieved context blocks.
const chunkSeparator = "\n\n---\n\n"

func formatTranscript(history []models.ConversationTurn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		label := "User"
		if turn.Role == models.RoleModel {
			label = "Assistant"
		}
		lines = append(lines, label+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

func buildRewritePrompt(question string, history []models.ConversationTurn) string {
	return rewriteInstruction + "\n\nConversation:\n" + formatTranscript(history) +
		"\n\nFinal question: " + question
}

func buildAnswerPrompt(question, context string, history []models.ConversationTurn) string {
	var b strings.Builder
	b.WriteString(answerPersona)
	b.WriteString("\n\nDocument context:\n")
	b.WriteString(context)
	if len(history) > 0 {
		b.WriteString("\n\nConversation so far:\n")
		b.WriteString(formatTranscript(history))
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

func formatMatch(m models.VectorMatch) string {
	header := fmt.Sprintf("[Chunk %d | score %.3f]", m.Metadata.ChunkIndex, m.Score)
	if m.Metadata.PageNumber > 0 {
		header = fmt.Sprintf("[Chunk %d | page %d | score %.3f]", m.Metadata.ChunkIndex, m.Metadata.PageNumber, m.Score)
	}
	return header + "\n" + m.Metadata.Text
}
