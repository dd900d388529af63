package conversation

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/EasterCompany/dex-telephony-service/cache"
	"github.com/EasterCompany/dex-telephony-service/llm"
	"github.com/EasterCompany/dex-telephony-service/session"
)

// StartSentinel asks the web channel for its canned greeting.
const StartSentinel = "__start__"

// maxWebHistory bounds how much client-supplied history is sent to the provider.
const maxWebHistory = 20

// ErrEmptyMessage is returned for a chat request with no text.
var ErrEmptyMessage = errors.New("message is required")

// HistoryEntry is one prior turn echoed back by a web client.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is one web chat turn.
type ChatRequest struct {
	SessionID string
	Message   string
	History   []HistoryEntry
}

// ChatResult is the reply for a web chat turn. AudioURL is nil when no audio was produced.
type ChatResult struct {
	DetectedLanguage string  `json:"detectedLanguage"`
	Response         string  `json:"response"`
	AudioURL         *string `json:"audioUrl"`
}

// Chat runs one stateless web turn over the client-supplied history.
func (o *Orchestrator) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == StartSentinel {
		return ChatResult{DetectedLanguage: llm.DefaultLanguage, Response: o.cfg.Conversation.WebGreeting}, nil
	}
	if msg == "" {
		return ChatResult{}, ErrEmptyMessage
	}

	res, err := o.runTurn(ctx, sanitizeHistory(req.History), msg)
	if err != nil {
		o.metrics.RecordTurn(ChannelWeb, "error")
		return ChatResult{}, err
	}

	out := ChatResult{DetectedLanguage: res.Language, Response: res.Reply}
	if art, ok := o.synthesize(ctx, res.Reply, res.Language, o.cfg.Conversation.WebAudioTTL()); ok {
		out.AudioURL = &art.URL
	}

	o.metrics.RecordTurn(ChannelWeb, "ok")
	o.emit(ctx, cache.Event{Type: cache.EventTurnCompleted, Channel: ChannelWeb, SessionID: req.SessionID, Language: res.Language})
	log.Printf("[CHAT] Session %s replied in %s", req.SessionID, res.Language)
	return out, nil
}

// sanitizeHistory keeps the most recent user and assistant entries, merging
// consecutive entries of the same role so the provider sees alternating turns.
func sanitizeHistory(history []HistoryEntry) []session.Turn {
	var turns []session.Turn
	for _, h := range history {
		role := strings.ToLower(strings.TrimSpace(h.Role))
		content := strings.TrimSpace(h.Content)
		if (role != session.RoleUser && role != session.RoleAssistant) || content == "" || content == StartSentinel {
			continue
		}
		if n := len(turns); n > 0 && turns[n-1].Role == role {
			turns[n-1].Content += "\n" + content
			continue
		}
		turns = append(turns, session.Turn{Role: role, Content: content})
	}
	if len(turns) > maxWebHistory {
		turns = turns[len(turns)-maxWebHistory:]
	}
	// The new message is a user turn.
	if n := len(turns); n > 0 && turns[n-1].Role == session.RoleUser {
		turns = turns[:n-1]
	}
	return turns
}
