package interview

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/prepmate/prepmate/internal/llm"
	"github.com/prepmate/prepmate/internal/prompts"
)

// InvalidResponseFeedback is the sentinel returned when the AI evaluation
// cannot be parsed. The session keeps going; the answer just scores zero.
const InvalidResponseFeedback = "invalid AI response"

// Citation is an AI-claimed reference back to a specific resume chunk.
type Citation struct {
	ChunkID int    `json:"chunkId"`
	Text    string `json:"text"`
}

// Evaluation is the structured verdict on a single answer.
type Evaluation struct {
	Score        int        `json:"score"`
	Feedback     string     `json:"feedback"`
	Strengths    []string   `json:"strengths,omitempty"`
	Improvements []string   `json:"improvements,omitempty"`
	Citations    []Citation `json:"citations,omitempty"`
}

// parseEvaluation turns a raw model response into an Evaluation. It never
// fails: anything that does not decode collapses into the sentinel. Field
// values are coerced leniently since models drift on types (7 vs 7.0 vs "7").
func parseEvaluation(raw string) *Evaluation {
	cleaned := llm.CleanResponse(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return &Evaluation{Score: 0, Feedback: InvalidResponseFeedback}
	}

	return &Evaluation{
		Score:        coerceScore(data["score"]),
		Feedback:     coerceString(data["feedback"]),
		Strengths:    coerceStrings(data["strengths"]),
		Improvements: coerceStrings(data["improvements"]),
		Citations:    coerceCitations(data["citations"]),
	}
}

// filterCitations drops citations whose chunk id was never supplied to the
// prompt. The prompt forbids invented ids but the gateway cannot enforce it.
func filterCitations(citations []Citation, supplied []prompts.ResumeChunk) []Citation {
	if len(citations) == 0 {
		return nil
	}

	known := make(map[int]bool, len(supplied))
	for _, c := range supplied {
		known[c.ID] = true
	}

	var kept []Citation
	for _, c := range citations {
		if known[c.ChunkID] {
			kept = append(kept, c)
		}
	}
	return kept
}

func coerceScore(v any) int {
	switch val := v.(type) {
	case float64:
		return int(math.Round(val))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return int(math.Round(f))
	default:
		return 0
	}
}

func coerceString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func coerceStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	var out []string
	for _, item := range items {
		if s := coerceString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func coerceCitations(v any) []Citation {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	var out []Citation
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id := coerceScore(entry["chunkId"])
		if id == 0 {
			continue
		}
		out = append(out, Citation{ChunkID: id, Text: coerceString(entry["text"])})
	}
	return out
}
