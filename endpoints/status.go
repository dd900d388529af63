package endpoints

import (
	"net/http"
	"strings"

	"github.com/EasterCompany/dex-telephony-service/llm"
	logger "github.com/EasterCompany/dex-telephony-service/log"
)

// HealthHandler reports the service status.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.Health.Report(r.Context()))
}

type ttsTestResponse struct {
	AudioURL string `json:"audioUrl"`
}

// TTSTestHandler synthesizes ?text= once so the voice can be checked by ear.
func (s *Server) TTSTestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	text := strings.TrimSpace(r.URL.Query().Get("text"))
	if text == "" {
		writeJSONError(w, http.StatusBadRequest, ErrTypeInvalidRequest, "text is required")
		return
	}
	if s.Speaker == nil {
		writeJSONError(w, http.StatusServiceUnavailable, ErrTypeProvider, "speech synthesis is not configured")
		return
	}

	art, err := s.Speaker.Synthesize(r.Context(), text, llm.NormalizeLanguage(r.URL.Query().Get("language")))
	if err != nil {
		logger.Error("Test synthesis failed", err)
		s.providerError(w, "synthesis failed", err)
		return
	}
	if s.Janitor != nil {
		s.Janitor.Schedule(art.Path, s.Config.Conversation.WebAudioTTL())
	}
	writeJSON(w, http.StatusOK, ttsTestResponse{AudioURL: art.URL})
}
