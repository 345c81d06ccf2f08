package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/prepmate/prepmate/internal/models"
)

// SQLiteStore implements Store on an embedded SQLite database, useful for
// local development without Postgres. Questions and embeddings are stored as
// JSON text since SQLite has neither arrays nor a vector type.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database: %w", err)
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			doc_type TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_size INTEGER NOT NULL,
			storage_key TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, doc_type)
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			body TEXT NOT NULL,
			embedding TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS chats (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			initial_questions TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			role TEXT NOT NULL,
			kind TEXT NOT NULL,
			content TEXT NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now().UTC()

	query := `INSERT INTO users (id, email, password_hash, name, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.Name, user.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, password_hash, name, created_at FROM users WHERE email = ?`

	var user models.User
	err := s.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return &user, nil
}

func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	doc.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO documents (id, user_id, doc_type, file_name, file_size, storage_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Type, doc.FileName, doc.FileSize, doc.StorageKey, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	for _, chunk := range doc.Chunks {
		var embedding any
		if len(chunk.Embedding) > 0 {
			data, err := json.Marshal(chunk.Embedding)
			if err != nil {
				return fmt.Errorf("failed to encode embedding: %w", err)
			}
			embedding = string(data)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (document_id, position, body, embedding) VALUES (?, ?, ?, ?)`,
			doc.ID, chunk.Position, chunk.Text, embedding)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}

	return nil
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id, userID string) (*models.Document, error) {
	return s.getDocument(ctx, `WHERE id = ? AND user_id = ?`, id, userID)
}

func (s *SQLiteStore) GetDocumentByType(ctx context.Context, userID string, docType models.DocumentType) (*models.Document, error) {
	return s.getDocument(ctx, `WHERE user_id = ? AND doc_type = ?`, userID, docType)
}

func (s *SQLiteStore) getDocument(ctx context.Context, where string, args ...any) (*models.Document, error) {
	query := `
		SELECT id, user_id, doc_type, file_name, file_size, storage_key, created_at
		FROM documents ` + where

	var doc models.Document
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&doc.ID, &doc.UserID, &doc.Type, &doc.FileName, &doc.FileSize, &doc.StorageKey, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve document: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, body, embedding FROM chunks WHERE document_id = ? ORDER BY position`, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chunk models.Chunk
		var embedding sql.NullString
		if err := rows.Scan(&chunk.Position, &chunk.Text, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if embedding.Valid && embedding.String != "" {
			if err := json.Unmarshal([]byte(embedding.String), &chunk.Embedding); err != nil {
				return nil, fmt.Errorf("failed to decode embedding: %w", err)
			}
		}
		doc.Chunks = append(doc.Chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating through chunks: %w", err)
	}

	return &doc, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, userID string) ([]models.Document, error) {
	query := `
		SELECT id, user_id, doc_type, file_name, file_size, storage_key, created_at
		FROM documents
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(&doc.ID, &doc.UserID, &doc.Type, &doc.FileName, &doc.FileSize, &doc.StorageKey, &doc.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating through documents: %w", err)
	}

	return docs, nil
}

func (s *SQLiteStore) DeleteDocument(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	// ON DELETE CASCADE needs foreign_keys pragma; delete chunks explicitly.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	return nil
}

func (s *SQLiteStore) CreateChat(ctx context.Context, chat *models.Chat) error {
	chat.CreatedAt = time.Now().UTC()

	questions, err := json.Marshal(chat.InitialQuestions)
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO chats (id, user_id, initial_questions, created_at) VALUES (?, ?, ?, ?)`,
		chat.ID, chat.UserID, string(questions), chat.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}

	for i, msg := range chat.Messages {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (chat_id, position, role, kind, content) VALUES (?, ?, ?, ?, ?)`,
			chat.ID, i, msg.Role, msg.Kind, msg.Content)
		if err != nil {
			return fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat: %w", err)
	}

	return nil
}

func (s *SQLiteStore) GetChat(ctx context.Context, id, userID string) (*models.Chat, error) {
	var chat models.Chat
	var questions string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, initial_questions, created_at FROM chats WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&chat.ID, &chat.UserID, &questions, &chat.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve chat: %w", err)
	}

	if err := json.Unmarshal([]byte(questions), &chat.InitialQuestions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT role, kind, content FROM messages WHERE chat_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.Role, &msg.Kind, &msg.Content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		chat.Messages = append(chat.Messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating through messages: %w", err)
	}

	return &chat, nil
}

func (s *SQLiteStore) AppendMessages(ctx context.Context, chatID string, msgs []models.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM messages WHERE chat_id = ?`, chatID).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to compute message position: %w", err)
	}

	for i, msg := range msgs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (chat_id, position, role, kind, content) VALUES (?, ?, ?, ?, ?)`,
			chatID, next+i, msg.Role, msg.Kind, msg.Content)
		if err != nil {
			return fmt.Errorf("failed to append message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit messages: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
