package chat

import "github.com/prepmate/prepmate/internal/interview"

type StartChatResponse struct {
	ChatID    string   `json:"chatId"`
	Questions []string `json:"questions"`
}

type QueryRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

// QueryResponse mirrors the evaluation verbatim; NextQuestion is null once
// the scripted questions are exhausted.
type QueryResponse struct {
	Reply        *interview.Evaluation `json:"reply"`
	NextQuestion *string               `json:"nextQuestion"`
}
