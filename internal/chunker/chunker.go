// Package chunker splits extracted document text into fixed-size word chunks,
// the unit handed to the AI for grounding.
package chunker

import "strings"

// DefaultWordsPerChunk bounds a chunk when the caller does not configure one.
const DefaultWordsPerChunk = 500

// Chunk splits text on whitespace runs and groups consecutive words into
// chunks of exactly wordsPerChunk words. The last chunk may be shorter.
// Chunks that are empty after trimming are dropped. Pure, no I/O.
func Chunk(text string, wordsPerChunk int) []string {
	if wordsPerChunk <= 0 {
		wordsPerChunk = DefaultWordsPerChunk
	}

	words := strings.Fields(text)
	chunks := make([]string, 0, (len(words)+wordsPerChunk-1)/wordsPerChunk)

	for i := 0; i < len(words); i += wordsPerChunk {
		end := i + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		chunk := strings.Join(words[i:end], " ")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}
