package llm

import "strings"

// CleanResponse strips markdown code-fence markers from a model response so
// the caller can parse the remaining JSON. Models regularly wrap JSON in
// ```json ... ``` despite being told not to.
func CleanResponse(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}
