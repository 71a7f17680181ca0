package chunker

import (
	"strings"
	"testing"

	"docchat/internal/util"

	"github.com/stretchr/testify/require"
)

func TestSplitBoundsAndOverlap(t *testing.T) {
	text := strings.Repeat("a", 2500)
	chunks, err := Split([]string{text}, 1000, 200)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		require.LessOrEqual(t, len([]rune(c.Text)), 1000, "chunk %d too long", i)
		require.Equal(t, i, c.Index)
	}
	// Consecutive chunks repeat the previous chunk's 200-char tail.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		require.Equal(t, string(prev[len(prev)-200:]), chunks[i].Text[:200])
	}
}

func TestSplitDeterministic(t *testing.T) {
	pages := []string{"first page text here", "second page text here", "third"}
	a, err := Split(pages, 10, 3)
	require.NoError(t, err)
	b, err := Split(pages, 10, 3)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestSplitReconstructsOriginalText(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. " + strings.Repeat("0123456789", 30)
	chunks, err := Split([]string{text}, 100, 20)
	require.NoError(t, err)

	// De-overlapped concatenation: first chunk whole, then each chunk minus
	// its 20-char overlap prefix.
	var b strings.Builder
	b.WriteString(chunks[0].Text)
	for _, c := range chunks[1:] {
		b.WriteString(c.Text[20:])
	}
	require.Equal(t, text, b.String())
}

func TestSplitNeverDropsTrailingText(t *testing.T) {
	text := strings.Repeat("x", 1050)
	chunks, err := Split([]string{text}, 1000, 200)
	require.NoError(t, err)
	last := chunks[len(chunks)-1]
	require.True(t, strings.HasSuffix(last.Text, "x"))
	require.Equal(t, text[1050-len(last.Text):], last.Text)
}

func TestSplitThreePageScenario(t *testing.T) {
	// 2400 extractable characters across 3 pages with default settings yields
	// exactly 3 chunks.
	pages := []string{
		strings.Repeat("a", 800),
		strings.Repeat("b", 798),
		strings.Repeat("c", 800),
	}
	chunks, err := Split(pages, DefaultChunkSize, DefaultChunkOverlap)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	require.Equal(t, 1, chunks[0].Page)
	require.Equal(t, 1000, len(chunks[0].Text))
}

func TestSplitPageProvenance(t *testing.T) {
	pages := []string{strings.Repeat("a", 30), strings.Repeat("b", 30)}
	chunks, err := Split(pages, 20, 5)
	require.NoError(t, err)
	require.Equal(t, 1, chunks[0].Page)
	last := chunks[len(chunks)-1]
	require.Equal(t, 2, last.Page)
}

func TestSplitEmptyDocument(t *testing.T) {
	_, err := Split([]string{"   ", "\n\t"}, 1000, 200)
	require.ErrorIs(t, err, util.ErrEmptyDocument)

	_, err = Split(nil, 1000, 200)
	require.ErrorIs(t, err, util.ErrEmptyDocument)
}
