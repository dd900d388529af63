package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/EasterCompany/dex-telephony-service/conversation"
)

const maxChatBody = 64 << 10

type chatRequest struct {
	Message string                      `json:"message"`
	History []conversation.HistoryEntry `json:"history"`
}

// ChatHandler runs one web chat turn.
func (s *Server) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, ErrTypeInvalidRequest, "invalid JSON body")
		return
	}

	res, err := s.Conversation.Chat(r.Context(), conversation.ChatRequest{
		SessionID: strings.TrimSpace(r.Header.Get("X-Session-ID")),
		Message:   req.Message,
		History:   req.History,
	})
	switch {
	case errors.Is(err, conversation.ErrEmptyMessage):
		writeJSONError(w, http.StatusBadRequest, ErrTypeInvalidRequest, err.Error())
		return
	case errors.Is(err, conversation.ErrCompletion):
		s.providerError(w, "completion failed", err)
		return
	case err != nil:
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
