package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prepmate/prepmate/internal/models"
)

// MemoryStore is an in-memory Store used by tests and throwaway local runs.
// Copies go in and out so callers never share slices with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.User // keyed by email
	docs  map[string]models.Document
	chats map[string]models.Chat
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]models.User),
		docs:  make(map[string]models.Document),
		chats: make(map[string]models.Chat),
	}
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Email]; ok {
		return ErrEmailTaken
	}
	user.CreatedAt = time.Now().UTC()
	m.users[user.Email] = *user
	return nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *MemoryStore) CreateDocument(_ context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc.CreatedAt = time.Now().UTC()
	copied := *doc
	copied.Chunks = append([]models.Chunk(nil), doc.Chunks...)
	m.docs[doc.ID] = copied
	return nil
}

func (m *MemoryStore) GetDocument(_ context.Context, id, userID string) (*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	if !ok || doc.UserID != userID {
		return nil, ErrNotFound
	}
	out := doc
	out.Chunks = append([]models.Chunk(nil), doc.Chunks...)
	return &out, nil
}

func (m *MemoryStore) GetDocumentByType(_ context.Context, userID string, docType models.DocumentType) (*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.docs {
		if doc.UserID == userID && doc.Type == docType {
			out := doc
			out.Chunks = append([]models.Chunk(nil), doc.Chunks...)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListDocuments(_ context.Context, userID string) ([]models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []models.Document
	for _, doc := range m.docs {
		if doc.UserID != userID {
			continue
		}
		out := doc
		out.Chunks = nil
		docs = append(docs, out)
	}

	// Newest first, matching the SQL backends.
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

func (m *MemoryStore) DeleteDocument(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok || doc.UserID != userID {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *MemoryStore) CreateChat(_ context.Context, chat *models.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat.CreatedAt = time.Now().UTC()
	copied := *chat
	copied.InitialQuestions = append([]string(nil), chat.InitialQuestions...)
	copied.Messages = append([]models.Message(nil), chat.Messages...)
	m.chats[chat.ID] = copied
	return nil
}

func (m *MemoryStore) GetChat(_ context.Context, id, userID string) (*models.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chat, ok := m.chats[id]
	if !ok || chat.UserID != userID {
		return nil, ErrNotFound
	}
	out := chat
	out.InitialQuestions = append([]string(nil), chat.InitialQuestions...)
	out.Messages = append([]models.Message(nil), chat.Messages...)
	return &out, nil
}

func (m *MemoryStore) AppendMessages(_ context.Context, chatID string, msgs []models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	chat, ok := m.chats[chatID]
	if !ok {
		return ErrNotFound
	}
	chat.Messages = append(chat.Messages, msgs...)
	m.chats[chatID] = chat
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
