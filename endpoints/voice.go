package endpoints

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	logger "github.com/EasterCompany/dex-telephony-service/log"
	"github.com/EasterCompany/dex-telephony-service/telephony"
)

// writeTwiML replies with markup, or a spoken apology and hangup when the
// turn could not be rendered.
func (s *Server) writeTwiML(w http.ResponseWriter, twiml string, err error) {
	if err != nil {
		logger.Error("Could not build TwiML", err)
		conv := s.Config.Conversation
		twiml, err = telephony.Render(telephony.Say{Language: conv.GatherLanguage, Text: conv.ErrorPrompt}, telephony.Hangup{})
		if err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", telephony.ContentType)
	_, _ = w.Write([]byte(twiml))
}

func callSid(r *http.Request) string {
	if sid := strings.TrimSpace(r.URL.Query().Get("callSid")); sid != "" {
		return sid
	}
	return strings.TrimSpace(r.PostFormValue("CallSid"))
}

// VoiceIncomingHandler answers a new call with the greeting.
func (s *Server) VoiceIncomingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sid := callSid(r)
	if sid == "" {
		http.Error(w, "CallSid is required", http.StatusBadRequest)
		return
	}

	twiml, err := s.Conversation.StartCall(r.Context(), sid)
	s.writeTwiML(w, twiml, err)
}

// VoiceProcessHandler runs one turn for a Gather speech result.
func (s *Server) VoiceProcessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sid := callSid(r)
	if sid == "" {
		http.Error(w, "callSid is required", http.StatusBadRequest)
		return
	}

	confidence, _ := strconv.ParseFloat(r.PostFormValue("Confidence"), 64)
	twiml, err := s.Conversation.HandleSpeech(r.Context(), sid, r.PostFormValue("SpeechResult"), confidence)
	s.writeTwiML(w, twiml, err)
}

// VoiceStatusHandler receives call status callbacks. It always acknowledges so
// the provider does not retry.
func (s *Server) VoiceStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sid := callSid(r)
	status := r.PostFormValue("CallStatus")
	if sid != "" {
		if err := s.Conversation.EndCall(r.Context(), sid, status); err != nil {
			logger.Error(fmt.Sprintf("Could not end call %s", sid), err)
		}
	} else {
		log.Printf("[VOICE] Status callback without CallSid (%s)", status)
	}
	w.WriteHeader(http.StatusOK)
}
