package tts

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/google/uuid"
)

// AudioRoute is the URL prefix artifacts are served under.
const AudioRoute = "/audio/"

// Artifact is a synthesized file on disk and the URL it can be fetched from.
type Artifact struct {
	Path string
	URL  string
}

// Service synthesizes text with the selected voice and stores the result.
type Service struct {
	synth      Synthesizer
	voice      config.VoiceProfile
	dir        string
	baseURL    string
	sampleRate int
	timeout    time.Duration
	newID      func() string
}

// NewService creates the audio directory if needed and returns a Service.
func NewService(synth Synthesizer, voice config.VoiceProfile, server config.ServerConfig, cfg config.TTSConfig) (*Service, error) {
	if err := os.MkdirAll(server.AudioDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create audio directory: %w", err)
	}
	return &Service{
		synth:      synth,
		voice:      voice,
		dir:        server.AudioDir,
		baseURL:    strings.TrimRight(server.PublicBaseURL, "/"),
		sampleRate: cfg.SampleRate,
		timeout:    cfg.Timeout(),
		newID:      uuid.NewString,
	}, nil
}

// Dir is the directory artifacts are written to.
func (s *Service) Dir() string { return s.dir }

// Synthesize writes the audio for text to a new file. Nothing is written on error.
func (s *Service) Synthesize(ctx context.Context, text, language string) (Artifact, error) {
	if strings.TrimSpace(text) == "" {
		return Artifact{}, fmt.Errorf("nothing to synthesize")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	audio, err := s.synth.Synthesize(ctx, Params{
		Text:       text,
		Locale:     Locale(language),
		Voice:      s.voice,
		SampleRate: s.sampleRate,
	})
	if err != nil {
		return Artifact{}, err
	}

	name := s.newID() + ".wav"
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, audio, 0644); err != nil {
		return Artifact{}, fmt.Errorf("could not write audio file: %w", err)
	}
	return Artifact{Path: path, URL: s.url(name)}, nil
}

func (s *Service) url(name string) string {
	rel := AudioRoute + url.PathEscape(name)
	if s.baseURL == "" {
		return rel
	}
	return s.baseURL + rel
}
