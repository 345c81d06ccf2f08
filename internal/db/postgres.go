package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/prepmate/prepmate/internal/models"
)

// PostgresStore implements Store on Postgres. Chunk embeddings use the
// pgvector extension; scripted questions live in a TEXT[] column.
type PostgresStore struct {
	db *sql.DB
}

const pgSchema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS documents (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	doc_type TEXT NOT NULL,
	file_name TEXT NOT NULL,
	file_size BIGINT NOT NULL,
	storage_key TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, doc_type)
);

CREATE TABLE IF NOT EXISTS chunks (
	id BIGSERIAL PRIMARY KEY,
	document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	position INT NOT NULL,
	body TEXT NOT NULL,
	embedding vector(768)
);

CREATE TABLE IF NOT EXISTS chats (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	initial_questions TEXT[] NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS messages (
	id BIGSERIAL PRIMARY KEY,
	chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
	position INT NOT NULL,
	role TEXT NOT NULL,
	kind TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

func NewPostgresStore(connString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("unable to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (pg *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO users (id, email, password_hash, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := pg.db.ExecContext(ctx, query, user.ID, user.Email, user.PasswordHash, user.Name, user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (pg *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, email, password_hash, name, created_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := pg.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return &user, nil
}

func (pg *PostgresStore) CreateDocument(ctx context.Context, doc *models.Document) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	doc.CreatedAt = time.Now().UTC()

	tx, err := pg.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO documents (id, user_id, doc_type, file_name, file_size, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, query,
		doc.ID, doc.UserID, doc.Type, doc.FileName, doc.FileSize, doc.StorageKey, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	chunkQuery := `
		INSERT INTO chunks (document_id, position, body, embedding)
		VALUES ($1, $2, $3, $4)
	`
	for _, chunk := range doc.Chunks {
		var embedding any
		if len(chunk.Embedding) > 0 {
			embedding = pgvector.NewVector(chunk.Embedding)
		}
		if _, err := tx.ExecContext(ctx, chunkQuery, doc.ID, chunk.Position, chunk.Text, embedding); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}

	return nil
}

func (pg *PostgresStore) GetDocument(ctx context.Context, id, userID string) (*models.Document, error) {
	return pg.getDocument(ctx, `WHERE id = $1 AND user_id = $2`, id, userID)
}

func (pg *PostgresStore) GetDocumentByType(ctx context.Context, userID string, docType models.DocumentType) (*models.Document, error) {
	return pg.getDocument(ctx, `WHERE user_id = $1 AND doc_type = $2`, userID, docType)
}

func (pg *PostgresStore) getDocument(ctx context.Context, where string, args ...any) (*models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		SELECT id, user_id, doc_type, file_name, file_size, storage_key, created_at
		FROM documents ` + where

	var doc models.Document
	err := pg.db.QueryRowContext(ctx, query, args...).Scan(
		&doc.ID, &doc.UserID, &doc.Type, &doc.FileName, &doc.FileSize, &doc.StorageKey, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve document: %w", err)
	}

	chunks, err := pg.getChunks(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Chunks = chunks

	return &doc, nil
}

func (pg *PostgresStore) getChunks(ctx context.Context, documentID string) ([]models.Chunk, error) {
	query := `
		SELECT position, body, embedding
		FROM chunks
		WHERE document_id = $1
		ORDER BY position
	`

	rows, err := pg.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var chunk models.Chunk
		var embedding sql.Null[pgvector.Vector]
		if err := rows.Scan(&chunk.Position, &chunk.Text, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if embedding.Valid {
			chunk.Embedding = embedding.V.Slice()
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating through chunks: %w", err)
	}

	return chunks, nil
}

func (pg *PostgresStore) ListDocuments(ctx context.Context, userID string) ([]models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, user_id, doc_type, file_name, file_size, storage_key, created_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := pg.db.QueryContext(ctx, query, userID)
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

func (pg *PostgresStore) DeleteDocument(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := pg.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = $1 AND user_id = $2`, id, userID)
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

	return nil
}

func (pg *PostgresStore) CreateChat(ctx context.Context, chat *models.Chat) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	chat.CreatedAt = time.Now().UTC()

	tx, err := pg.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO chats (id, user_id, initial_questions, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.ExecContext(ctx, query, chat.ID, chat.UserID, pq.Array(chat.InitialQuestions), chat.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}

	msgQuery := `
		INSERT INTO messages (chat_id, position, role, kind, content)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, msg := range chat.Messages {
		if _, err := tx.ExecContext(ctx, msgQuery, chat.ID, i, msg.Role, msg.Kind, msg.Content); err != nil {
			return fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chat: %w", err)
	}

	return nil
}

func (pg *PostgresStore) GetChat(ctx context.Context, id, userID string) (*models.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, user_id, initial_questions, created_at
		FROM chats
		WHERE id = $1 AND user_id = $2
	`

	var chat models.Chat
	var questions []string
	err := pg.db.QueryRowContext(ctx, query, id, userID).
		Scan(&chat.ID, &chat.UserID, pq.Array(&questions), &chat.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve chat: %w", err)
	}
	chat.InitialQuestions = questions

	msgQuery := `
		SELECT role, kind, content
		FROM messages
		WHERE chat_id = $1
		ORDER BY position
	`
	rows, err := pg.db.QueryContext(ctx, msgQuery, id)
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

func (pg *PostgresStore) AppendMessages(ctx context.Context, chatID string, msgs []models.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := pg.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM messages WHERE chat_id = $1`, chatID).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to compute message position: %w", err)
	}

	query := `
		INSERT INTO messages (chat_id, position, role, kind, content)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i, msg := range msgs {
		if _, err := tx.ExecContext(ctx, query, chatID, next+i, msg.Role, msg.Kind, msg.Content); err != nil {
			return fmt.Errorf("failed to append message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit messages: %w", err)
	}

	return nil
}

func (pg *PostgresStore) Close() error {
	return pg.db.Close()
}
