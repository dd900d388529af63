package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/EasterCompany/dex-telephony-service/cache"
	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/EasterCompany/dex-telephony-service/conversation"
	"github.com/EasterCompany/dex-telephony-service/llm"
	"github.com/EasterCompany/dex-telephony-service/session"
	"github.com/EasterCompany/dex-telephony-service/stt"
	"github.com/EasterCompany/dex-telephony-service/telephony"
	"github.com/EasterCompany/dex-telephony-service/translate"
	"github.com/EasterCompany/dex-telephony-service/tts"
	"go.uber.org/multierr"
)

// services holds the provider adapters selected by configuration. Optional
// collaborators stay nil interfaces when their provider is off.
type services struct {
	store       session.Store
	completer   llm.Completer
	corrector   *llm.Corrector
	transcriber stt.Transcriber
	speaker     conversation.Speaker
	translator  translate.Translator
	caller      telephony.CallPlacer
	events      cache.Publisher
	closers     []io.Closer
}

func newServices(ctx context.Context, cfg *config.Config, redisClient *cache.Client) (*services, error) {
	svc := &services{}

	if redisClient != nil {
		svc.store = session.NewRedisStore(redisClient.Client, cfg.Redis.SessionTTL())
		svc.events = redisClient
		svc.closers = append(svc.closers, redisClient)
		log.Printf("Sessions stored in Redis at %s", cfg.Redis.Addr)
	} else {
		svc.store = session.NewMemoryStore()
	}

	client := llm.NewClient(cfg.LLM)
	svc.completer = client
	svc.corrector = llm.NewCorrector(client)
	if !cfg.LLMConfigured() {
		log.Printf("[WARN] No LLM API key configured; turns will fall back to the error prompt")
	}

	transcriber, err := newTranscriber(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if transcriber != nil {
		svc.transcriber = transcriber
		if c, ok := transcriber.(io.Closer); ok {
			svc.closers = append(svc.closers, c)
		}
	}

	synth, err := newSynthesizer(ctx, cfg)
	if err != nil {
		return nil, multierr.Append(err, svc.Close())
	}
	if synth != nil {
		if c, ok := synth.(io.Closer); ok {
			svc.closers = append(svc.closers, c)
		}
		speaker, err := tts.NewService(synth, cfg.SelectedVoice(), cfg.Server, cfg.TTS)
		if err != nil {
			return nil, multierr.Append(err, svc.Close())
		}
		svc.speaker = speaker
	}

	if cfg.TranslateConfigured() {
		svc.translator = translate.NewClient(cfg.Translate)
	}
	if cfg.TwilioConfigured() {
		svc.caller = telephony.NewTwilioCaller(cfg.Twilio, cfg.Server.PublicBaseURL)
	}
	return svc, nil
}

func newTranscriber(ctx context.Context, cfg *config.Config) (stt.Transcriber, error) {
	if !cfg.STTConfigured() {
		return nil, nil
	}
	switch cfg.STT.Backend {
	case config.BackendGoogle:
		g, err := stt.NewGoogle(ctx, cfg.STT)
		if err != nil {
			return nil, fmt.Errorf("could not create google speech client: %w", err)
		}
		return g, nil
	default:
		return stt.NewSarvam(cfg.STT), nil
	}
}

func newSynthesizer(ctx context.Context, cfg *config.Config) (tts.Synthesizer, error) {
	if !cfg.TTSConfigured() {
		return nil, nil
	}
	switch cfg.TTS.Backend {
	case config.BackendGoogle:
		g, err := tts.NewGoogle(ctx, cfg.TTS)
		if err != nil {
			return nil, fmt.Errorf("could not create google text-to-speech client: %w", err)
		}
		return g, nil
	default:
		return tts.NewSarvam(cfg.TTS), nil
	}
}

// Close releases provider connections, reporting every failure.
func (s *services) Close() error {
	var err error
	for _, c := range s.closers {
		err = multierr.Append(err, c.Close())
	}
	s.closers = nil
	return err
}
