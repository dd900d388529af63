package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/EasterCompany/dex-telephony-service/cache"
	logger "github.com/EasterCompany/dex-telephony-service/log"
	"github.com/EasterCompany/dex-telephony-service/metrics"
	"github.com/EasterCompany/dex-telephony-service/session"
	"github.com/EasterCompany/dex-telephony-service/telephony"
	"github.com/EasterCompany/dex-telephony-service/tts"
)

// StartCall opens a session for callID and returns the greeting TwiML.
func (o *Orchestrator) StartCall(ctx context.Context, callID string) (string, error) {
	if err := o.store.Delete(ctx, callID); err != nil {
		logger.Warn(fmt.Sprintf("Could not clear stale session %s", callID), err)
	}
	if _, err := o.store.Create(ctx, callID, session.Turn{Role: session.RoleSystem, Content: o.persona}); err != nil {
		return "", fmt.Errorf("could not create session for call %s: %w", callID, err)
	}

	o.calls.start(callID)
	if err := o.calls.transition(callID, AwaitingSpeech); err != nil {
		return "", err
	}

	o.metrics.RecordCall("started")
	o.emit(ctx, cache.Event{Type: cache.EventCallStarted, Channel: ChannelPhone, SessionID: callID})
	log.Printf("[VOICE] Call %s started", callID)

	conv := o.cfg.Conversation
	return o.listen(callID, telephony.Say{Language: conv.GatherLanguage, Text: conv.Greeting})
}

// HandleSpeech runs one phone turn for a speech recognition callback.
func (o *Orchestrator) HandleSpeech(ctx context.Context, callID, utterance string, confidence float64) (string, error) {
	utterance = strings.TrimSpace(utterance)

	sess, err := o.store.Get(ctx, callID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			logger.Error(fmt.Sprintf("Could not load session for call %s", callID), err)
		}
		return o.reprompt(ctx, callID)
	}
	if _, tracked := o.calls.state(callID); !tracked {
		// The session outlived the tracker, e.g. a restart with the Redis store.
		o.calls.start(callID)
		_ = o.calls.transition(callID, AwaitingSpeech)
	}
	if utterance == "" {
		return o.reprompt(ctx, callID)
	}
	if err := o.calls.transition(callID, Processing); err != nil {
		logger.Warn(fmt.Sprintf("Ignoring speech for call %s", callID), err)
		return o.reprompt(ctx, callID)
	}
	log.Printf("[VOICE] Call %s said %q (confidence %.2f)", callID, utterance, confidence)

	res, err := o.runTurn(ctx, sess.History(), utterance)
	if err != nil {
		logger.Error(fmt.Sprintf("Completion failed for call %s", callID), err)
		o.metrics.RecordFallback(metrics.FallbackCompletion)
		o.metrics.RecordTurn(ChannelPhone, "error")
		_ = o.calls.transition(callID, AwaitingSpeech)
		conv := o.cfg.Conversation
		return o.listen(callID, telephony.Say{Language: conv.GatherLanguage, Text: conv.ErrorPrompt})
	}

	if err := o.store.Append(ctx, callID,
		session.Turn{Role: session.RoleUser, Content: res.Corrected, Language: res.Language, Original: res.Original},
		session.Turn{Role: session.RoleAssistant, Content: res.Reply, Language: res.Language},
	); err != nil {
		logger.Error(fmt.Sprintf("Could not record turn for call %s", callID), err)
	}

	if err := o.calls.transition(callID, Responding); err != nil {
		logger.Warn(fmt.Sprintf("Call %s changed state during processing", callID), err)
	}
	var verb any = telephony.Say{Language: tts.Locale(res.Language), Text: res.Reply}
	if art, ok := o.synthesize(ctx, res.Reply, res.Language, o.cfg.Conversation.PhoneAudioTTL()); ok {
		verb = telephony.Play{URL: art.URL}
	}
	_ = o.calls.transition(callID, AwaitingSpeech)

	o.metrics.RecordTurn(ChannelPhone, "ok")
	o.emit(ctx, cache.Event{Type: cache.EventTurnCompleted, Channel: ChannelPhone, SessionID: callID, Language: res.Language})
	return o.listen(callID, verb)
}

// EndCall handles a call status callback. Terminal statuses remove all call
// state; repeated or non-terminal statuses are no-ops.
func (o *Orchestrator) EndCall(ctx context.Context, callID, status string) error {
	if !telephony.IsTerminal(status) {
		return nil
	}
	return o.finish(ctx, callID, status)
}

func (o *Orchestrator) finish(ctx context.Context, callID, reason string) error {
	tracked := o.calls.end(callID)
	if err := o.store.Delete(ctx, callID); err != nil {
		return fmt.Errorf("could not delete session for call %s: %w", callID, err)
	}
	if tracked {
		o.metrics.RecordCall("ended")
		o.emit(ctx, cache.Event{Type: cache.EventCallEnded, Channel: ChannelPhone, SessionID: callID, Detail: reason})
		log.Printf("[VOICE] Call %s ended (%s)", callID, reason)
	}
	return nil
}

// reprompt asks the caller to repeat, hanging up once the silent retry budget is
// spent. Callbacks for calls that are not tracked (already ended or never
// started) are answered without being registered.
func (o *Orchestrator) reprompt(ctx context.Context, callID string) (string, error) {
	conv := o.cfg.Conversation
	if n, tracked := o.calls.retry(callID); tracked && n > conv.MaxSilentRetries {
		if err := o.finish(ctx, callID, "no speech"); err != nil {
			logger.Error("Could not end silent call", err)
		}
		o.metrics.RecordTurn(ChannelPhone, "hangup")
		return telephony.Render(telephony.Say{Language: conv.GatherLanguage, Text: conv.GoodbyePrompt}, telephony.Hangup{})
	}
	o.metrics.RecordFallback(metrics.FallbackRetryPrompt)
	return o.listen(callID, telephony.Say{Language: conv.GatherLanguage, Text: conv.RetryPrompt})
}

// listen renders verb followed by a speech Gather and Redirect back to the webhook.
func (o *Orchestrator) listen(callID string, verb any) (string, error) {
	verbs := append([]any{verb}, telephony.Listen(o.actionURL(callID), o.cfg.Conversation.GatherLanguage)...)
	return telephony.Render(verbs...)
}
