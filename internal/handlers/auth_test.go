package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiauth "github.com/prepmate/prepmate/internal/api/auth"
)

func signupPayload() apiauth.SignupRequest {
	return apiauth.SignupRequest{
		Email:    "jane@example.com",
		Password: "hunter22",
		Name:     "Jane Doe",
	}
}

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rr := env.request(t, http.MethodPost, "/api/auth/signup", "", "application/json",
		jsonBody(t, signupPayload()))
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decodeEnvelope(t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, msgSignupSuccess, resp.Message)

	var created apiauth.AuthResponse
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "jane@example.com", created.User.Email)
	assert.Equal(t, "Jane Doe", created.User.Name)
	require.NotEmpty(t, created.Token)

	// The issued token must identify the new user.
	userID, err := env.tokens.Verify(created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, userID)

	rr = env.request(t, http.MethodPost, "/api/auth/login", "", "application/json",
		jsonBody(t, apiauth.LoginRequest{Email: "jane@example.com", Password: "hunter22"}))
	require.Equal(t, http.StatusOK, rr.Code)

	resp = decodeEnvelope(t, rr)
	assert.True(t, resp.Success)
	assert.Equal(t, msgLoginSuccess, resp.Message)
}

func TestSignupNormalizesEmail(t *testing.T) {
	env := newTestEnv(t)

	payload := signupPayload()
	payload.Email = "Jane@Example.COM"

	rr := env.request(t, http.MethodPost, "/api/auth/signup", "", "application/json",
		jsonBody(t, payload))
	require.Equal(t, http.StatusCreated, rr.Code)

	var created apiauth.AuthResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rr).Data, &created))
	assert.Equal(t, "jane@example.com", created.User.Email)

	// Login with a different casing still finds the account.
	rr = env.request(t, http.MethodPost, "/api/auth/login", "", "application/json",
		jsonBody(t, apiauth.LoginRequest{Email: "JANE@example.com", Password: "hunter22"}))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*apiauth.SignupRequest)
		wantErr string
	}{
		{"missing email", func(r *apiauth.SignupRequest) { r.Email = "" }, msgEmailRequired},
		{"bad email", func(r *apiauth.SignupRequest) { r.Email = "not-an-email" }, msgEmailInvalid},
		{"missing password", func(r *apiauth.SignupRequest) { r.Password = "" }, msgPasswordRequired},
		{"short password", func(r *apiauth.SignupRequest) { r.Password = "abc" }, msgPasswordMin},
		{"missing name", func(r *apiauth.SignupRequest) { r.Name = "" }, msgNameRequired},
		{"short name", func(r *apiauth.SignupRequest) { r.Name = "J" }, msgNameMin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			payload := signupPayload()
			tt.mutate(&payload)

			rr := env.request(t, http.MethodPost, "/api/auth/signup", "", "application/json",
				jsonBody(t, payload))
			require.Equal(t, http.StatusBadRequest, rr.Code)

			resp := decodeEnvelope(t, rr)
			assert.False(t, resp.Success)
			assert.Equal(t, msgValidationFailed, resp.Message)
			assert.Contains(t, resp.Errors, tt.wantErr)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	rr := env.request(t, http.MethodPost, "/api/auth/signup", "", "application/json",
		jsonBody(t, signupPayload()))
	require.Equal(t, http.StatusCreated, rr.Code)

	// Same address in a different casing is still a conflict.
	payload := signupPayload()
	payload.Email = "JANE@EXAMPLE.COM"

	rr = env.request(t, http.MethodPost, "/api/auth/signup", "", "application/json",
		jsonBody(t, payload))
	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, msgUserExists, decodeEnvelope(t, rr).Message)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	rr := env.request(t, http.MethodPost, "/api/auth/signup", "", "application/json",
		jsonBody(t, signupPayload()))
	require.Equal(t, http.StatusCreated, rr.Code)

	// Wrong password and unknown account get the same answer.
	rr = env.request(t, http.MethodPost, "/api/auth/login", "", "application/json",
		jsonBody(t, apiauth.LoginRequest{Email: "jane@example.com", Password: "wrong"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, msgInvalidCreds, decodeEnvelope(t, rr).Message)

	rr = env.request(t, http.MethodPost, "/api/auth/login", "", "application/json",
		jsonBody(t, apiauth.LoginRequest{Email: "nobody@example.com", Password: "hunter22"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, msgInvalidCreds, decodeEnvelope(t, rr).Message)
}
