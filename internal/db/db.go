// Package db defines the persistence surface and its Postgres and SQLite
// implementations. All reads and writes are scoped by the owning user.
package db

import (
	"context"
	"errors"

	"github.com/prepmate/prepmate/internal/models"
)

// ErrNotFound is returned when a row does not exist or belongs to another
// user. Callers must not be able to distinguish the two cases.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when a signup races an existing account.
var ErrEmailTaken = errors.New("email already registered")

// Store is the persistence contract shared by all backends. Documents are
// stored with their chunk sets; chats with their full transcript.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id, userID string) (*models.Document, error)
	GetDocumentByType(ctx context.Context, userID string, docType models.DocumentType) (*models.Document, error)
	ListDocuments(ctx context.Context, userID string) ([]models.Document, error)
	DeleteDocument(ctx context.Context, id, userID string) error

	CreateChat(ctx context.Context, chat *models.Chat) error
	GetChat(ctx context.Context, id, userID string) (*models.Chat, error)
	AppendMessages(ctx context.Context, chatID string, msgs []models.Message) error

	Close() error
}
