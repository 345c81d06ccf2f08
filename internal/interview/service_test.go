package interview

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prepmate/prepmate/internal/db"
	"github.com/prepmate/prepmate/internal/models"
)

type stubAI struct {
	responses  []string
	err        error
	prompts    []string
	embeddings []float32
}

func (s *stubAI) GenerateText(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("stub exhausted")
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

func (s *stubAI) GetEmbedding(context.Context, string) ([]float32, error) {
	return s.embeddings, nil
}

const questionsJSON = `{"questions":["Q one?","Q two?","Q three?"]}`

func seedDocuments(t *testing.T, store db.Store, userID string) {
	t.Helper()

	for _, docType := range []models.DocumentType{models.DocumentTypeResume, models.DocumentTypeJD} {
		doc := &models.Document{
			ID:       uuid.NewString(),
			UserID:   userID,
			Type:     docType,
			FileName: string(docType) + ".pdf",
			FileSize: 1000,
			Chunks: []models.Chunk{
				{Position: 0, Text: "first " + string(docType) + " chunk"},
				{Position: 1, Text: "second " + string(docType) + " chunk"},
			},
		}
		require.NoError(t, store.CreateDocument(context.Background(), doc))
	}
}

func TestStartChatRequiresBothDocuments(t *testing.T) {
	store := db.NewMemoryStore()
	svc := NewService(store, &stubAI{responses: []string{questionsJSON}}, zap.NewNop(), 0)

	_, err := svc.StartChat(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrMissingDocuments)

	// Only a resume still is not enough.
	require.NoError(t, store.CreateDocument(context.Background(), &models.Document{
		ID: uuid.NewString(), UserID: "user-1", Type: models.DocumentTypeResume,
		Chunks: []models.Chunk{{Text: "x"}},
	}))
	_, err = svc.StartChat(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrMissingDocuments)
}

func TestStartChatYieldsThreeQuestions(t *testing.T) {
	store := db.NewMemoryStore()
	ai := &stubAI{responses: []string{"```json\n" + questionsJSON + "\n```"}}
	svc := NewService(store, ai, zap.NewNop(), 0)
	seedDocuments(t, store, "user-1")

	result, err := svc.StartChat(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"Q one?", "Q two?", "Q three?"}, result.Questions)
	require.NotEmpty(t, result.ChatID)

	chat, err := store.GetChat(context.Background(), result.ChatID, "user-1")
	require.NoError(t, err)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, models.RoleAI, chat.Messages[0].Role)
	assert.Equal(t, models.KindQuestion, chat.Messages[0].Kind)
	assert.Equal(t, "Q one?", chat.Messages[0].Content)

	// JD chunks end up newline-joined in the prompt.
	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], "first jd chunk\nsecond jd chunk")
}

func TestStartChatWrongQuestionCountIsHardFailure(t *testing.T) {
	store := db.NewMemoryStore()
	svc := NewService(store, &stubAI{responses: []string{`{"questions":["only one"]}`}}, zap.NewNop(), 0)
	seedDocuments(t, store, "user-1")

	_, err := svc.StartChat(context.Background(), "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3 initial questions")
}

func TestStartChatUnparseableResponseIsHardFailure(t *testing.T) {
	store := db.NewMemoryStore()
	svc := NewService(store, &stubAI{responses: []string{"I refuse to answer in JSON"}}, zap.NewNop(), 0)
	seedDocuments(t, store, "user-1")

	_, err := svc.StartChat(context.Background(), "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse initial questions")
}

func startedChat(t *testing.T, store db.Store, ai *stubAI) *StartResult {
	t.Helper()
	svc := NewService(store, ai, zap.NewNop(), 0)
	seedDocuments(t, store, "user-1")
	result, err := svc.StartChat(context.Background(), "user-1")
	require.NoError(t, err)
	return result
}

func TestSendMessageThreeTimesCompletesSession(t *testing.T) {
	store := db.NewMemoryStore()
	evalJSON := `{"score": 7, "feedback": "Decent answer.", "strengths": ["clear"], "improvements": ["metrics"]}`
	ai := &stubAI{responses: []string{questionsJSON, evalJSON}}
	svc := NewService(store, ai, zap.NewNop(), 0)
	result := startedChat(t, store, ai)

	for i := 1; i <= 3; i++ {
		reply, err := svc.SendMessage(context.Background(), "user-1", result.ChatID, fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
		assert.Equal(t, 7, reply.Evaluation.Score)

		if i < 3 {
			require.NotNil(t, reply.NextQuestion, "call %d should yield a next question", i)
			assert.Equal(t, result.Questions[i], *reply.NextQuestion)
		} else {
			assert.Nil(t, reply.NextQuestion, "call 3 should signal completion")
		}
	}

	chat, err := store.GetChat(context.Background(), result.ChatID, "user-1")
	require.NoError(t, err)
	// 3 questions + 3 answers + 3 feedback messages.
	assert.Len(t, chat.Messages, 9)
	assert.Equal(t, 3, chat.QuestionsAsked())
}

func TestSendMessageUnparseableEvaluationUsesSentinel(t *testing.T) {
	store := db.NewMemoryStore()
	ai := &stubAI{responses: []string{questionsJSON, "not json at all"}}
	svc := NewService(store, ai, zap.NewNop(), 0)
	result := startedChat(t, store, ai)

	reply, err := svc.SendMessage(context.Background(), "user-1", result.ChatID, "my answer")
	require.NoError(t, err)

	assert.Equal(t, 0, reply.Evaluation.Score)
	assert.Equal(t, InvalidResponseFeedback, reply.Evaluation.Feedback)
	require.NotNil(t, reply.NextQuestion)
}

func TestSendMessageGatewayFailureUsesSentinel(t *testing.T) {
	store := db.NewMemoryStore()
	ai := &stubAI{responses: []string{questionsJSON}}
	svc := NewService(store, ai, zap.NewNop(), 0)
	result := startedChat(t, store, ai)

	ai.err = errors.New("model unavailable")
	reply, err := svc.SendMessage(context.Background(), "user-1", result.ChatID, "my answer")
	require.NoError(t, err)

	assert.Equal(t, 0, reply.Evaluation.Score)
	assert.Equal(t, InvalidResponseFeedback, reply.Evaluation.Feedback)
}

func TestSendMessageFiltersInventedCitations(t *testing.T) {
	store := db.NewMemoryStore()
	evalJSON := `{"score": 8, "feedback": "ok", "citations": [
		{"chunkId": 1, "text": "first resume chunk"},
		{"chunkId": 99, "text": "made up"}
	]}`
	ai := &stubAI{responses: []string{questionsJSON, evalJSON}}
	svc := NewService(store, ai, zap.NewNop(), 0)
	result := startedChat(t, store, ai)

	reply, err := svc.SendMessage(context.Background(), "user-1", result.ChatID, "answer")
	require.NoError(t, err)

	require.Len(t, reply.Evaluation.Citations, 1)
	assert.Equal(t, 1, reply.Evaluation.Citations[0].ChunkID)
}

func TestSendMessageAppendsFeedbackTranscript(t *testing.T) {
	store := db.NewMemoryStore()
	evalJSON := `{"score": 9, "feedback": "Great depth."}`
	ai := &stubAI{responses: []string{questionsJSON, evalJSON}}
	svc := NewService(store, ai, zap.NewNop(), 0)
	result := startedChat(t, store, ai)

	_, err := svc.SendMessage(context.Background(), "user-1", result.ChatID, "answer one")
	require.NoError(t, err)

	chat, err := store.GetChat(context.Background(), result.ChatID, "user-1")
	require.NoError(t, err)
	require.Len(t, chat.Messages, 4)

	assert.Equal(t, models.KindAnswer, chat.Messages[1].Kind)
	assert.Equal(t, "answer one", chat.Messages[1].Content)
	assert.Equal(t, models.KindFeedback, chat.Messages[2].Kind)
	assert.Equal(t, "**Feedback:** Great depth.\n\n**Score:** 9/10", chat.Messages[2].Content)
	assert.Equal(t, models.KindQuestion, chat.Messages[3].Kind)
	assert.Equal(t, "Q two?", chat.Messages[3].Content)
}

func TestSendMessageAnswerContainingFeedbackWordIsNotMisclassified(t *testing.T) {
	store := db.NewMemoryStore()
	evalJSON := `{"score": 5, "feedback": "ok"}`
	ai := &stubAI{responses: []string{questionsJSON, evalJSON}}
	svc := NewService(store, ai, zap.NewNop(), 0)
	result := startedChat(t, store, ai)

	// The answer text mentions "Feedback"; kind tagging must keep the
	// question count untouched.
	reply, err := svc.SendMessage(context.Background(), "user-1", result.ChatID,
		"I value Feedback from my peers")
	require.NoError(t, err)
	require.NotNil(t, reply.NextQuestion)
	assert.Equal(t, "Q two?", *reply.NextQuestion)
}

func TestSendMessageUnknownChat(t *testing.T) {
	store := db.NewMemoryStore()
	svc := NewService(store, &stubAI{}, zap.NewNop(), 0)

	_, err := svc.SendMessage(context.Background(), "user-1", uuid.NewString(), "answer")
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestSendMessageForeignChat(t *testing.T) {
	store := db.NewMemoryStore()
	ai := &stubAI{responses: []string{questionsJSON, `{"score":5,"feedback":"ok"}`}}
	svc := NewService(store, ai, zap.NewNop(), 0)
	result := startedChat(t, store, ai)

	_, err := svc.SendMessage(context.Background(), "intruder", result.ChatID, "answer")
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestSendMessageLimitsResumeChunks(t *testing.T) {
	store := db.NewMemoryStore()
	ai := &stubAI{responses: []string{questionsJSON, `{"score":5,"feedback":"ok"}`}}
	svc := NewService(store, ai, zap.NewNop(), 2)
	seedDocuments(t, store, "user-1")

	result, err := svc.StartChat(context.Background(), "user-1")
	require.NoError(t, err)

	// Replace the resume with one holding more chunks than the limit.
	doc, err := store.GetDocumentByType(context.Background(), "user-1", models.DocumentTypeResume)
	require.NoError(t, err)
	require.NoError(t, store.DeleteDocument(context.Background(), doc.ID, "user-1"))
	require.NoError(t, store.CreateDocument(context.Background(), &models.Document{
		ID: uuid.NewString(), UserID: "user-1", Type: models.DocumentTypeResume,
		Chunks: []models.Chunk{
			{Position: 0, Text: "chunk A"},
			{Position: 1, Text: "chunk B"},
			{Position: 2, Text: "chunk C"},
		},
	}))

	_, err = svc.SendMessage(context.Background(), "user-1", result.ChatID, "answer")
	require.NoError(t, err)

	evalPrompt := ai.prompts[len(ai.prompts)-1]
	assert.Contains(t, evalPrompt, "[#1] chunk A")
	assert.Contains(t, evalPrompt, "[#2] chunk B")
	assert.NotContains(t, evalPrompt, "chunk C")
}
