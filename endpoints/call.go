package endpoints

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	logger "github.com/EasterCompany/dex-telephony-service/log"
	"github.com/EasterCompany/dex-telephony-service/telephony"
)

type callRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type callResponse struct {
	CallSid string `json:"callSid"`
}

// CallHandler places an outbound call that is answered by the voice webhooks.
func (s *Server) CallHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req callRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, ErrTypeInvalidRequest, "invalid JSON body")
		return
	}
	number, err := telephony.NormalizeNumber(req.PhoneNumber, s.Config.Twilio.Region)
	if errors.Is(err, telephony.ErrInvalidNumber) {
		writeJSONError(w, http.StatusBadRequest, ErrTypeInvalidRequest, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	if s.Caller == nil {
		writeJSONError(w, http.StatusServiceUnavailable, ErrTypeProvider, "outbound calling is not configured")
		return
	}

	sid, err := s.Caller.PlaceCall(r.Context(), number)
	if err != nil {
		logger.Error("Could not place call", err)
		s.providerError(w, "could not place call", err)
		return
	}
	s.Metrics.RecordCall("placed")
	log.Printf("[VOICE] Placed call %s", sid)
	writeJSON(w, http.StatusOK, callResponse{CallSid: sid})
}
