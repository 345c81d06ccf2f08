package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkExample(t *testing.T) {
	got := Chunk("a b c d e", 2)
	assert.Equal(t, []string{"a b", "c d", "e"}, got)
}

func TestChunkReconstructsNormalizedText(t *testing.T) {
	texts := []string{
		"one two three four five six seven",
		"  leading   and trailing\twhitespace\n\nnewlines too  ",
		"single",
		"",
	}

	for _, text := range texts {
		for _, n := range []int{1, 2, 3, 500} {
			chunks := Chunk(text, n)
			joined := strings.Join(chunks, " ")
			normalized := strings.Join(strings.Fields(text), " ")
			assert.Equal(t, normalized, joined, "text %q with size %d", text, n)
		}
	}
}

func TestChunkSizes(t *testing.T) {
	words := make([]string, 17)
	for i := range words {
		words[i] = "word"
	}
	chunks := Chunk(strings.Join(words, " "), 5)

	require.Len(t, chunks, 4)
	for i, c := range chunks {
		count := len(strings.Fields(c))
		if i < len(chunks)-1 {
			assert.Equal(t, 5, count)
		} else {
			assert.Equal(t, 2, count)
		}
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestChunkEmptyInput(t *testing.T) {
	assert.Empty(t, Chunk("", 10))
	assert.Empty(t, Chunk("   \n\t  ", 10))
}

func TestChunkNonPositiveSizeFallsBackToDefault(t *testing.T) {
	chunks := Chunk("a b c", 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a b c", chunks[0])
}
