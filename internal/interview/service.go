// Package interview owns the chat session state machine: the scripted
// questions generated at session start, the transcript, and the decision of
// what the AI says next.
package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prepmate/prepmate/internal/db"
	"github.com/prepmate/prepmate/internal/llm"
	"github.com/prepmate/prepmate/internal/logger"
	"github.com/prepmate/prepmate/internal/models"
	"github.com/prepmate/prepmate/internal/prompts"
)

var (
	// ErrMissingDocuments is the prerequisite-not-met condition: an
	// interview needs both a resume and a job description on file.
	ErrMissingDocuments = errors.New("resume and job description must be uploaded first")

	// ErrChatNotFound covers both unknown chat ids and chats owned by a
	// different user.
	ErrChatNotFound = errors.New("chat not found")
)

// DefaultResumeChunkLimit bounds how many resume chunks back an evaluation.
// Chunks are taken in storage order; there is no relevance ranking.
const DefaultResumeChunkLimit = 5

const logPreviewLen = 200

// Service drives interview sessions. It holds no mutable state of its own;
// everything lives in the store, so completion is re-derived from the
// transcript on every call.
type Service struct {
	store            db.Store
	ai               llm.Client
	log              *zap.Logger
	resumeChunkLimit int
}

func NewService(store db.Store, ai llm.Client, log *zap.Logger, resumeChunkLimit int) *Service {
	if resumeChunkLimit <= 0 {
		resumeChunkLimit = DefaultResumeChunkLimit
	}
	return &Service{
		store:            store,
		ai:               ai,
		log:              log,
		resumeChunkLimit: resumeChunkLimit,
	}
}

// StartResult is what a freshly started interview hands back to the caller.
type StartResult struct {
	ChatID    string
	Questions []string
}

// StartChat generates the three scripted questions from the caller's job
// description and persists a new session whose transcript opens with the AI
// asking question one.
//
// A response that does not parse into exactly three questions is a hard
// failure: there is no session to salvage yet, so it surfaces to the caller.
func (s *Service) StartChat(ctx context.Context, userID string) (*StartResult, error) {
	jdDoc, err := s.store.GetDocumentByType(ctx, userID, models.DocumentTypeJD)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrMissingDocuments
		}
		return nil, fmt.Errorf("load job description: %w", err)
	}

	if _, err := s.store.GetDocumentByType(ctx, userID, models.DocumentTypeResume); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrMissingDocuments
		}
		return nil, fmt.Errorf("load resume: %w", err)
	}

	jdParts := make([]string, len(jdDoc.Chunks))
	for i, chunk := range jdDoc.Chunks {
		jdParts[i] = chunk.Text
	}
	prompt := prompts.InitialQuestions(strings.Join(jdParts, "\n"))

	s.log.Debug("generating initial questions",
		zap.String("user_id", userID),
		zap.String("prompt_preview", logger.Truncate(prompt, logPreviewLen)),
	)

	raw, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate initial questions: %w", err)
	}

	questions, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}

	chat := &models.Chat{
		ID:               uuid.NewString(),
		UserID:           userID,
		InitialQuestions: questions,
		Messages: []models.Message{
			{Role: models.RoleAI, Kind: models.KindQuestion, Content: questions[0]},
		},
	}

	if err := s.store.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("persist chat: %w", err)
	}

	s.log.Info("interview started",
		zap.String("user_id", userID),
		zap.String("chat_id", chat.ID),
	)

	return &StartResult{ChatID: chat.ID, Questions: questions}, nil
}

// Reply is the outcome of one answered question. NextQuestion is nil once
// all scripted questions have been asked, which is the completion signal.
type Reply struct {
	Evaluation   *Evaluation
	NextQuestion *string
}

// SendMessage evaluates the user's answer to the pending question, appends
// the exchange to the transcript, and either asks the next scripted question
// or signals completion.
func (s *Service) SendMessage(ctx context.Context, userID, chatID, message string) (*Reply, error) {
	chat, err := s.store.GetChat(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("load chat: %w", err)
	}

	resumeChunks, err := s.resumeChunks(ctx, userID)
	if err != nil {
		return nil, err
	}

	question, ok := chat.PendingQuestion()
	if !ok {
		// Unreachable for sessions created by StartChat, which always
		// opens with a question.
		return nil, fmt.Errorf("chat %s has no question on record", chatID)
	}

	evaluation := s.evaluate(ctx, question, message, resumeChunks)

	msgs := []models.Message{
		{Role: models.RoleUser, Kind: models.KindAnswer, Content: message},
		{
			Role: models.RoleAI,
			Kind: models.KindFeedback,
			Content: fmt.Sprintf("**Feedback:** %s\n\n**Score:** %d/10",
				evaluation.Feedback, evaluation.Score),
		},
	}

	var nextQuestion *string
	if asked := chat.QuestionsAsked(); asked < len(chat.InitialQuestions) {
		next := chat.InitialQuestions[asked]
		msgs = append(msgs, models.Message{
			Role: models.RoleAI, Kind: models.KindQuestion, Content: next,
		})
		nextQuestion = &next
	}

	if err := s.store.AppendMessages(ctx, chatID, msgs); err != nil {
		return nil, fmt.Errorf("persist messages: %w", err)
	}

	s.log.Info("answer evaluated",
		zap.String("chat_id", chatID),
		zap.Int("score", evaluation.Score),
		zap.Bool("completed", nextQuestion == nil),
	)

	return &Reply{Evaluation: evaluation, NextQuestion: nextQuestion}, nil
}

// evaluate runs the answer through the AI gateway. Gateway failures and
// unparseable responses both degrade to the sentinel evaluation so a flaky
// model never aborts a session.
func (s *Service) evaluate(ctx context.Context, question, answer string, chunks []prompts.ResumeChunk) *Evaluation {
	prompt := prompts.EvaluateAnswer(question, answer, chunks)

	s.log.Debug("evaluating answer",
		zap.Int("resume_chunks", len(chunks)),
		zap.String("prompt_preview", logger.Truncate(prompt, logPreviewLen)),
	)

	raw, err := s.ai.GenerateText(ctx, prompt)
	if err != nil {
		s.log.Warn("evaluation call failed, using sentinel", zap.Error(err))
		return &Evaluation{Score: 0, Feedback: InvalidResponseFeedback}
	}

	evaluation := parseEvaluation(raw)
	evaluation.Citations = filterCitations(evaluation.Citations, chunks)
	return evaluation
}

// resumeChunks loads the first N resume chunks in storage order. A missing
// resume is tolerated here: evaluation proceeds without grounding context.
func (s *Service) resumeChunks(ctx context.Context, userID string) ([]prompts.ResumeChunk, error) {
	doc, err := s.store.GetDocumentByType(ctx, userID, models.DocumentTypeResume)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load resume: %w", err)
	}

	chunks := doc.Chunks
	if len(chunks) > s.resumeChunkLimit {
		chunks = chunks[:s.resumeChunkLimit]
	}

	out := make([]prompts.ResumeChunk, len(chunks))
	for i, chunk := range chunks {
		out[i] = prompts.ResumeChunk{ID: i + 1, Text: chunk.Text}
	}
	return out, nil
}

func parseQuestions(raw string) ([]string, error) {
	cleaned := llm.CleanResponse(raw)

	var parsed struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("parse initial questions: %w", err)
	}
	if len(parsed.Questions) != prompts.QuestionCount {
		return nil, fmt.Errorf("expected %d initial questions, got %d",
			prompts.QuestionCount, len(parsed.Questions))
	}

	return parsed.Questions, nil
}
