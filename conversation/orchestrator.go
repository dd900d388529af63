// Package conversation runs the per-turn pipeline for phone calls and web chat.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/EasterCompany/dex-telephony-service/cache"
	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/EasterCompany/dex-telephony-service/llm"
	logger "github.com/EasterCompany/dex-telephony-service/log"
	"github.com/EasterCompany/dex-telephony-service/metrics"
	"github.com/EasterCompany/dex-telephony-service/session"
	"github.com/EasterCompany/dex-telephony-service/translate"
	"github.com/EasterCompany/dex-telephony-service/tts"
)

// Channel names used in metrics and events.
const (
	ChannelPhone = "phone"
	ChannelWeb   = "web"
)

// ErrCompletion wraps failures of the completion provider.
var ErrCompletion = errors.New("completion failed")

// Speaker turns reply text into a fetchable audio artifact.
type Speaker interface {
	Synthesize(ctx context.Context, text, language string) (tts.Artifact, error)
}

// Scheduler deletes artifacts after a delay.
type Scheduler interface {
	Schedule(path string, delay time.Duration)
}

// Deps are the collaborators of an Orchestrator. Speaker, Translator, Events and
// Metrics are optional.
type Deps struct {
	Config     *config.Config
	Store      session.Store
	Completer  llm.Completer
	Corrector  *llm.Corrector
	Speaker    Speaker
	Translator translate.Translator
	Janitor    Scheduler
	Events     cache.Publisher
	Metrics    *metrics.Metrics
}

// Orchestrator drives conversation turns for both channels.
type Orchestrator struct {
	cfg        *config.Config
	persona    string
	store      session.Store
	completer  llm.Completer
	corrector  *llm.Corrector
	speaker    Speaker
	translator translate.Translator
	janitor    Scheduler
	events     cache.Publisher
	metrics    *metrics.Metrics
	calls      *tracker
}

// New wires an Orchestrator from its dependencies.
func New(d Deps) *Orchestrator {
	return &Orchestrator{
		cfg:        d.Config,
		persona:    d.Config.SelectedPersona().Prompt,
		store:      d.Store,
		completer:  d.Completer,
		corrector:  d.Corrector,
		speaker:    d.Speaker,
		translator: d.Translator,
		janitor:    d.Janitor,
		events:     d.Events,
		metrics:    d.Metrics,
		calls:      newTracker(),
	}
}

// ActiveCalls is the number of calls being tracked.
func (o *Orchestrator) ActiveCalls() int { return o.calls.count() }

// turnResult is the outcome of one correction and completion pass.
type turnResult struct {
	Language  string
	Original  string
	Corrected string
	Reply     string
}

// runTurn corrects utterance, asks for a reply in the detected language and
// returns it. history must hold only user and assistant turns.
func (o *Orchestrator) runTurn(ctx context.Context, history []session.Turn, utterance string) (turnResult, error) {
	start := time.Now()
	corr := o.corrector.Correct(ctx, utterance)
	o.metrics.ObserveProvider("correction", start, nil)
	if corr.Degraded {
		o.metrics.RecordFallback(metrics.FallbackCorrection)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: session.RoleSystem, Content: llm.SystemPrompt(o.persona, corr.Language)})
	for _, t := range history {
		messages = append(messages, llm.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, llm.Message{Role: session.RoleUser, Content: corr.Text})

	start = time.Now()
	reply, err := o.completer.Complete(ctx, messages, llm.Options{
		MaxTokens:   o.cfg.LLM.MaxTokens,
		Temperature: o.cfg.LLM.Temperature,
	})
	o.metrics.ObserveProvider("completion", start, err)
	if err != nil {
		return turnResult{}, fmt.Errorf("%w: %w", ErrCompletion, err)
	}

	return turnResult{
		Language:  corr.Language,
		Original:  corr.Original,
		Corrected: corr.Text,
		Reply:     o.ensureLanguage(ctx, reply, corr.Language),
	}, nil
}

// ensureLanguage translates a reply that came back in Latin script although the
// caller speaks an Indic language. Failures keep the original reply.
func (o *Orchestrator) ensureLanguage(ctx context.Context, reply, language string) string {
	if o.translator == nil || !o.cfg.Translate.Replies || language == llm.DefaultLanguage || !mostlyLatin(reply) {
		return reply
	}
	start := time.Now()
	translated, err := o.translator.Translate(ctx, reply, llm.DefaultLanguage, language)
	o.metrics.ObserveProvider("translate", start, err)
	if err != nil {
		o.metrics.RecordFallback(metrics.FallbackTranslation)
		logger.Warn("Reply translation failed, sending untranslated reply", err)
		return reply
	}
	return translated
}

func mostlyLatin(s string) bool {
	var latin, letters int
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Latin, r) {
			latin++
		}
	}
	return letters > 0 && latin*10 >= letters*9
}

// synthesize produces an artifact for reply and schedules its deletion after ttl.
func (o *Orchestrator) synthesize(ctx context.Context, reply, language string, ttl time.Duration) (tts.Artifact, bool) {
	if o.speaker == nil {
		return tts.Artifact{}, false
	}
	start := time.Now()
	art, err := o.speaker.Synthesize(ctx, reply, language)
	o.metrics.ObserveProvider("tts", start, err)
	if err != nil {
		o.metrics.RecordFallback(metrics.FallbackSpeech)
		logger.Warn("Speech synthesis failed, falling back to text", err)
		return tts.Artifact{}, false
	}
	if o.janitor != nil {
		o.janitor.Schedule(art.Path, ttl)
	}
	return art, true
}

func (o *Orchestrator) emit(ctx context.Context, e cache.Event) {
	if o.events == nil {
		return
	}
	if err := o.events.Emit(ctx, e); err != nil {
		logger.Warn(fmt.Sprintf("Could not publish %s event", e.Type), err)
	}
}

// actionURL is the speech webhook for callID.
func (o *Orchestrator) actionURL(callID string) string {
	base := strings.TrimRight(o.cfg.Server.PublicBaseURL, "/")
	return base + "/voice/process?callSid=" + url.QueryEscape(callID)
}
