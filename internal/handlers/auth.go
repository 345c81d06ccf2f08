package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apiauth "github.com/prepmate/prepmate/internal/api/auth"
	"github.com/prepmate/prepmate/internal/auth"
	"github.com/prepmate/prepmate/internal/db"
	"github.com/prepmate/prepmate/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AuthHandler struct {
	Store  db.Store
	Tokens *auth.TokenManager
	Log    *zap.Logger
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req apiauth.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, msgValidationFailed)
		return
	}

	if errs := validateSignup(req); len(errs) > 0 {
		sendError(w, http.StatusBadRequest, msgValidationFailed, errs...)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.Store.GetUserByEmail(r.Context(), email); err == nil {
		sendError(w, http.StatusConflict, msgUserExists)
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		h.Log.Error("signup lookup failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("password hashing failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
	}

	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, db.ErrEmailTaken) {
			sendError(w, http.StatusConflict, msgUserExists)
			return
		}
		h.Log.Error("user creation failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		h.Log.Error("token issuing failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	h.Log.Info("user signed up", zap.String("user_id", user.ID))
	sendSuccess(w, http.StatusCreated, msgSignupSuccess, authResponse(token, user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req apiauth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, msgValidationFailed)
		return
	}

	if errs := validateLogin(req); len(errs) > 0 {
		sendError(w, http.StatusBadRequest, msgValidationFailed, errs...)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.Store.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			sendError(w, http.StatusUnauthorized, msgInvalidCreds)
			return
		}
		h.Log.Error("login lookup failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		sendError(w, http.StatusUnauthorized, msgInvalidCreds)
		return
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		h.Log.Error("token issuing failed", zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	h.Log.Info("user logged in", zap.String("user_id", user.ID))
	sendSuccess(w, http.StatusOK, msgLoginSuccess, authResponse(token, user))
}

func authResponse(token string, user *models.User) apiauth.AuthResponse {
	return apiauth.AuthResponse{
		Token: token,
		User: apiauth.SanitizedUser{
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			CreatedAt: user.CreatedAt.Format(time.RFC3339),
		},
	}
}

func validateSignup(req apiauth.SignupRequest) []string {
	var errs []string

	switch {
	case req.Email == "":
		errs = append(errs, msgEmailRequired)
	case !emailPattern.MatchString(req.Email):
		errs = append(errs, msgEmailInvalid)
	}

	switch {
	case req.Password == "":
		errs = append(errs, msgPasswordRequired)
	case len(req.Password) < 6:
		errs = append(errs, msgPasswordMin)
	}

	switch {
	case req.Name == "":
		errs = append(errs, msgNameRequired)
	case len(strings.TrimSpace(req.Name)) < 2:
		errs = append(errs, msgNameMin)
	}

	return errs
}

func validateLogin(req apiauth.LoginRequest) []string {
	var errs []string

	switch {
	case req.Email == "":
		errs = append(errs, msgEmailRequired)
	case !emailPattern.MatchString(req.Email):
		errs = append(errs, msgEmailInvalid)
	}

	if req.Password == "" {
		errs = append(errs, msgPasswordRequired)
	}

	return errs
}
