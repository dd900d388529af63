// Package endpoints exposes the relay over HTTP.
package endpoints

import (
	"context"
	"net/http"
	"strings"

	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/EasterCompany/dex-telephony-service/conversation"
	"github.com/EasterCompany/dex-telephony-service/health"
	"github.com/EasterCompany/dex-telephony-service/metrics"
	"github.com/EasterCompany/dex-telephony-service/stt"
	"github.com/EasterCompany/dex-telephony-service/telephony"
	"github.com/EasterCompany/dex-telephony-service/translate"
	"github.com/EasterCompany/dex-telephony-service/tts"
)

// Conversation is the turn pipeline the handlers drive.
type Conversation interface {
	StartCall(ctx context.Context, callID string) (string, error)
	HandleSpeech(ctx context.Context, callID, utterance string, confidence float64) (string, error)
	EndCall(ctx context.Context, callID, status string) error
	Chat(ctx context.Context, req conversation.ChatRequest) (conversation.ChatResult, error)
}

// StatusReporter produces the /health body.
type StatusReporter interface {
	Report(ctx context.Context) health.Status
}

// Deps are the collaborators of the HTTP layer. Transcriber, Translator, Caller
// and Speaker are nil when the matching provider is not configured.
type Deps struct {
	Config       *config.Config
	Conversation Conversation
	Transcriber  stt.Transcriber
	Translator   translate.Translator
	Caller       telephony.CallPlacer
	Speaker      conversation.Speaker
	Janitor      conversation.Scheduler
	Health       StatusReporter
	Metrics      *metrics.Metrics
}

// Server holds the handlers for every route.
type Server struct {
	Deps
	limiter *ipLimiter
}

// NewServer returns a Server for d.
func NewServer(d Deps) *Server {
	return &Server{
		Deps:    d,
		limiter: newIPLimiter(d.Config.RateLimit.RPS, d.Config.RateLimit.Burst),
	}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/voice/incoming", s.VoiceIncomingHandler)
	mux.HandleFunc("/voice/process", s.VoiceProcessHandler)
	mux.HandleFunc("/voice/status", s.VoiceStatusHandler)
	mux.HandleFunc("/chat", s.ChatHandler)
	mux.HandleFunc("/transcribe", s.TranscribeHandler)
	mux.HandleFunc("/call", s.CallHandler)
	mux.HandleFunc("/health", s.HealthHandler)
	mux.HandleFunc("/tts/test", s.TTSTestHandler)
	if s.Metrics != nil {
		mux.Handle("/metrics", s.Metrics.Handler())
	}
	mux.Handle(tts.AudioRoute, audioFiles(s.Config.Server.AudioDir))

	var h http.Handler = mux
	h = s.rateLimit(h)
	h = s.recoverPanics(h)
	h = s.accessLog(h)
	h = requestID(h)
	return h
}

// audioFiles serves generated artifacts without directory listings.
func audioFiles(dir string) http.Handler {
	fs := http.StripPrefix(tts.AudioRoute, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// routeLabel keeps metric cardinality bounded.
func routeLabel(path string) string {
	if strings.HasPrefix(path, tts.AudioRoute) {
		return "/audio"
	}
	switch path {
	case "/voice/incoming", "/voice/process", "/voice/status", "/chat", "/transcribe",
		"/call", "/health", "/tts/test", "/metrics":
		return path
	}
	return "other"
}
