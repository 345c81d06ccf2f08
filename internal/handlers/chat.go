package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	apichat "github.com/prepmate/prepmate/internal/api/chat"
	"github.com/prepmate/prepmate/internal/interview"
)

type ChatHandler struct {
	Interviews *interview.Service
	Log        *zap.Logger
}

// Start creates a new interview session from the caller's uploaded
// documents. Responses are raw payloads, not enveloped.
func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	result, err := h.Interviews.StartChat(r.Context(), userID)
	if err != nil {
		if errors.Is(err, interview.ErrMissingDocuments) {
			sendError(w, http.StatusBadRequest, msgDocumentsRequired)
			return
		}
		h.Log.Error("chat start failed", zap.String("user_id", userID), zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgChatStartFailed)
		return
	}

	sendRaw(w, http.StatusOK, apichat.StartChatResponse{
		ChatID:    result.ChatID,
		Questions: result.Questions,
	})
}

// Query evaluates one answer and advances the session.
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	var req apichat.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, msgChatMissingFields)
		return
	}
	if strings.TrimSpace(req.ChatID) == "" || strings.TrimSpace(req.Message) == "" {
		sendError(w, http.StatusBadRequest, msgChatMissingFields)
		return
	}

	reply, err := h.Interviews.SendMessage(r.Context(), userID, req.ChatID, req.Message)
	if err != nil {
		if errors.Is(err, interview.ErrChatNotFound) {
			sendError(w, http.StatusBadRequest, msgChatNotFound)
			return
		}
		h.Log.Error("chat query failed", zap.String("user_id", userID), zap.Error(err))
		sendError(w, http.StatusInternalServerError, msgChatSendFailed)
		return
	}

	sendRaw(w, http.StatusOK, apichat.QueryResponse{
		Reply:        reply.Evaluation,
		NextQuestion: reply.NextQuestion,
	})
}
