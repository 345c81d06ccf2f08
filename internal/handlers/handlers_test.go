package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prepmate/prepmate/internal/auth"
	"github.com/prepmate/prepmate/internal/db"
	"github.com/prepmate/prepmate/internal/interview"
	"github.com/prepmate/prepmate/internal/ratelimit"
	"github.com/prepmate/prepmate/internal/storage"
)

// scriptedAI feeds canned model output to the interview service. The last
// response sticks so repeated calls keep working.
type scriptedAI struct {
	responses []string
	err       error
}

func (s *scriptedAI) GenerateText(context.Context, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("scripted responses exhausted")
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

func (s *scriptedAI) GetEmbedding(context.Context, string) ([]float32, error) {
	return nil, nil
}

// memFiles is an in-memory storage.Store for handler tests.
type memFiles struct {
	files map[string][]byte
}

func newMemFiles() *memFiles {
	return &memFiles{files: make(map[string][]byte)}
}

func (m *memFiles) Put(_ context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[key] = data
	return nil
}

func (m *memFiles) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.files[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (m *memFiles) Delete(_ context.Context, key string) error {
	if _, ok := m.files[key]; !ok {
		return storage.ErrNotFound
	}
	delete(m.files, key)
	return nil
}

type envConfig struct {
	apiRequests   int
	loginRequests int
	maxFileSize   int64
}

type testEnv struct {
	store  *db.MemoryStore
	files  *memFiles
	tokens *auth.TokenManager
	ai     *scriptedAI
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	return newConfiguredEnv(t, envConfig{
		apiRequests:   1000,
		loginRequests: 1000,
		maxFileSize:   DefaultMaxFileSize,
	})
}

func newConfiguredEnv(t *testing.T, cfg envConfig) *testEnv {
	t.Helper()

	store := db.NewMemoryStore()
	files := newMemFiles()
	ai := &scriptedAI{}
	log := zap.NewNop()

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	interviews := interview.NewService(store, ai, log, 0)

	router := NewRouter(RouterConfig{
		Auth: &AuthHandler{Store: store, Tokens: tokens, Log: log},
		Documents: &DocumentHandler{
			Store:       store,
			Files:       files,
			Log:         log,
			MaxFileSize: cfg.maxFileSize,
		},
		Chat:         &ChatHandler{Interviews: interviews, Log: log},
		Middleware:   &Middleware{Tokens: tokens, Log: log},
		APILimiter:   ratelimit.New(cfg.apiRequests, time.Minute),
		LoginLimiter: ratelimit.New(cfg.loginRequests, time.Minute),
	})

	return &testEnv{store: store, files: files, tokens: tokens, ai: ai, router: router}
}

func (e *testEnv) request(t *testing.T, method, path, token, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	req.RemoteAddr = "192.0.2.1:4321"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) tokenFor(t *testing.T, userID string) string {
	t.Helper()

	token, err := e.tokens.Issue(userID)
	require.NoError(t, err)
	return token
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) testEnvelope {
	t.Helper()

	var env testEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}
