// Package prompts renders the three deterministic templates the interview
// flow sends to the AI gateway. Every template demands JSON-only output so
// responses stay mechanically parseable. Chunk counts are capped to bound
// prompt size.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed templates/initial_questions.md
var initialQuestionsTemplate string

//go:embed templates/evaluate_answer.md
var evaluateAnswerTemplate string

//go:embed templates/follow_up.md
var followUpTemplate string

const (
	// QuestionCount is the number of scripted questions per interview.
	QuestionCount = 3

	evaluateChunkLimit = 6
	followUpChunkLimit = 4
)

// ResumeChunk is a resume excerpt the AI may cite by id.
type ResumeChunk struct {
	ID   int
	Text string
}

// InitialQuestions builds the prompt that asks for exactly three interview
// questions tailored to the job description.
func InitialQuestions(jdText string) string {
	return strings.ReplaceAll(initialQuestionsTemplate, "{{JD_TEXT}}", jdText)
}

// EvaluateAnswer builds the prompt that scores a user answer against up to
// six resume chunks.
func EvaluateAnswer(question, userAnswer string, resumeChunks []ResumeChunk) string {
	prompt := strings.ReplaceAll(evaluateAnswerTemplate, "{{QUESTION}}", question)
	prompt = strings.ReplaceAll(prompt, "{{USER_ANSWER}}", userAnswer)
	return strings.ReplaceAll(prompt, "{{RESUME_CHUNKS}}",
		renderChunks(resumeChunks, evaluateChunkLimit, "No resume chunks provided."))
}

// FollowUp builds the prompt that asks for exactly one probing follow-up
// question, consulting up to four resume chunks.
func FollowUp(question, userAnswer string, resumeChunks []ResumeChunk) string {
	prompt := strings.ReplaceAll(followUpTemplate, "{{QUESTION}}", question)
	prompt = strings.ReplaceAll(prompt, "{{USER_ANSWER}}", userAnswer)
	return strings.ReplaceAll(prompt, "{{RESUME_CHUNKS}}",
		renderChunks(resumeChunks, followUpChunkLimit, "None"))
}

func renderChunks(chunks []ResumeChunk, limit int, placeholder string) string {
	if len(chunks) == 0 {
		return placeholder
	}
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}

	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[#%d] %s", c.ID, c.Text)
	}
	return strings.Join(parts, "\n\n")
}
