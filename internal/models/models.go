package models

import "time"

// DocumentType distinguishes the two uploads an interview needs.
type DocumentType string

const (
	DocumentTypeResume DocumentType = "resume"
	DocumentTypeJD     DocumentType = "jd"
)

// IsValid reports whether t is one of the known document types.
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeResume || t == DocumentTypeJD
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// MessageKind tags what a message is, independent of its rendered text.
// Feedback detection is done on this field, never by inspecting content.
type MessageKind string

const (
	KindQuestion MessageKind = "question"
	KindAnswer   MessageKind = "answer"
	KindFeedback MessageKind = "feedback"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Chunk is a bounded run of consecutive words from a document's extracted
// text. Embeddings are stored alongside the text but the scripted interview
// flow never populates or queries them.
type Chunk struct {
	Position  int       `json:"position"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
}

type Document struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	Type       DocumentType `json:"type"`
	FileName   string       `json:"fileName"`
	FileSize   int64        `json:"fileSize"`
	StorageKey string       `json:"storageKey"`
	Chunks     []Chunk      `json:"chunks,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
}

type Message struct {
	Role    Role        `json:"role"`
	Kind    MessageKind `json:"kind"`
	Content string      `json:"content"`
}

// Chat is one interview attempt: three scripted questions generated at start
// and the growing transcript. The first message is always the AI asking
// InitialQuestions[0]. Completion is derived from the transcript, not stored.
type Chat struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	InitialQuestions []string  `json:"initialQuestions"`
	Messages         []Message `json:"messages"`
	CreatedAt        time.Time `json:"createdAt"`
}

// QuestionsAsked counts the scripted questions already put to the user.
func (c *Chat) QuestionsAsked() int {
	n := 0
	for _, m := range c.Messages {
		if m.Role == RoleAI && m.Kind == KindQuestion {
			n++
		}
	}
	return n
}

// PendingQuestion returns the most recent AI question awaiting an answer.
func (c *Chat) PendingQuestion() (string, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		m := c.Messages[i]
		if m.Role == RoleAI && m.Kind == KindQuestion {
			return m.Content, true
		}
	}
	return "", false
}
