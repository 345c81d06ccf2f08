package prompts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialQuestions(t *testing.T) {
	prompt := InitialQuestions("Senior Go engineer, distributed systems.")

	assert.Contains(t, prompt, "Senior Go engineer, distributed systems.")
	assert.Contains(t, prompt, "EXACTLY 3 distinct interview questions")
	assert.Contains(t, prompt, `{"questions":[`)
	assert.NotContains(t, prompt, "{{JD_TEXT}}")
}

func TestEvaluateAnswerRendersChunks(t *testing.T) {
	chunks := []ResumeChunk{
		{ID: 1, Text: "Built payment systems in Go."},
		{ID: 2, Text: "Led a team of four."},
	}
	prompt := EvaluateAnswer("Tell me about X", "I did Y", chunks)

	assert.Contains(t, prompt, "Tell me about X")
	assert.Contains(t, prompt, "I did Y")
	assert.Contains(t, prompt, "[#1] Built payment systems in Go.")
	assert.Contains(t, prompt, "[#2] Led a team of four.")
	assert.Contains(t, prompt, "score, feedback, strengths, improvements, citations")
}

func TestEvaluateAnswerNoChunks(t *testing.T) {
	prompt := EvaluateAnswer("Tell me about X", "I did Y", nil)
	assert.Contains(t, prompt, "No resume chunks provided.")
	assert.NotContains(t, prompt, "{{RESUME_CHUNKS}}")
}

func TestEvaluateAnswerCapsChunksAtSix(t *testing.T) {
	var chunks []ResumeChunk
	for i := 1; i <= 9; i++ {
		chunks = append(chunks, ResumeChunk{ID: i, Text: fmt.Sprintf("chunk %d", i)})
	}
	prompt := EvaluateAnswer("q", "a", chunks)

	assert.Contains(t, prompt, "[#6] chunk 6")
	assert.NotContains(t, prompt, "[#7]")
}

func TestFollowUp(t *testing.T) {
	prompt := FollowUp("original question", "previous answer", nil)

	assert.Contains(t, prompt, "original question")
	assert.Contains(t, prompt, "previous answer")
	assert.Contains(t, prompt, "None")
	assert.Contains(t, prompt, `{ "followUp": "your question" }`)
}

func TestFollowUpCapsChunksAtFour(t *testing.T) {
	var chunks []ResumeChunk
	for i := 1; i <= 6; i++ {
		chunks = append(chunks, ResumeChunk{ID: i, Text: fmt.Sprintf("chunk %d", i)})
	}
	prompt := FollowUp("q", "a", chunks)

	assert.Contains(t, prompt, "[#4] chunk 4")
	assert.NotContains(t, prompt, "[#5]")
	assert.Equal(t, 1, strings.Count(prompt, "[#4]"))
}
