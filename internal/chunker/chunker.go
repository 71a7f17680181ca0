package chunker

import (
	"strings"

	"docchat/internal/models"
	"docchat/internal/util"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Split cuts the page texts into overlapping fixed-size windows. Pages are
// joined with newlines before slicing so a chunk may span a page break; the
// page recorded for a chunk is the one holding its first rune. Slicing is
// rune-based, the step is size-overlap, and the final chunk keeps whatever
// trailing text is left, so identical inputs always yield identical chunks.
func Split(pages []string, size, overlap int) ([]models.Chunk, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = 0
		}
	}

	text, pageStarts := joinPages(pages)
	if strings.TrimSpace(text) == "" {
		return nil, util.ErrEmptyDocument
	}

	runes := []rune(text)
	step := size - overlap
	chunks := make([]models.Chunk, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			Index: len(chunks),
			Text:  string(runes[start:end]),
			Page:  pageAt(pageStarts, start),
		})
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}

// joinPages concatenates page texts with a newline between pages and records
// the rune offset at which each page begins.
func joinPages(pages []string) (string, []int) {
	var b strings.Builder
	starts := make([]int, 0, len(pages))
	offset := 0
	for i, p := range pages {
		if i > 0 {
			b.WriteByte('\n')
			offset++
		}
		starts = append(starts, offset)
		b.WriteString(p)
		offset += len([]rune(p))
	}
	return b.String(), starts
}

// pageAt returns the 1-based page containing the given rune offset, or 0 when
// no page boundaries are known.
func pageAt(pageStarts []int, offset int) int {
	page := 0
	for i, s := range pageStarts {
		if offset >= s {
			page = i + 1
		}
	}
	return page
}
