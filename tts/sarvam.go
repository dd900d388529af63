package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/EasterCompany/dex-telephony-service/config"
)

const sarvamBaseURL = "https://api.sarvam.ai"

// SarvamSynthesizer calls the Sarvam /text-to-speech endpoint.
type SarvamSynthesizer struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewSarvam builds a synthesizer from the tts section of the config.
func NewSarvam(cfg config.TTSConfig) *SarvamSynthesizer {
	base := cfg.BaseURL
	if base == "" {
		base = sarvamBaseURL
	}
	return &SarvamSynthesizer{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     cfg.APIKey,
	}
}

type sarvamRequest struct {
	Text                string  `json:"text"`
	TargetLanguageCode  string  `json:"target_language_code"`
	Speaker             string  `json:"speaker,omitempty"`
	Pitch               float64 `json:"pitch"`
	Pace                float64 `json:"pace"`
	Loudness            float64 `json:"loudness"`
	SpeechSampleRate    int     `json:"speech_sample_rate"`
	EnablePreprocessing bool    `json:"enable_preprocessing"`
	Model               string  `json:"model,omitempty"`
}

type sarvamResponse struct {
	Audios []string `json:"audios"`
}

func (s *SarvamSynthesizer) Synthesize(ctx context.Context, p Params) ([]byte, error) {
	body, err := json.Marshal(sarvamRequest{
		Text:                p.Text,
		TargetLanguageCode:  p.Locale,
		Speaker:             p.Voice.Speaker,
		Pitch:               p.Voice.Pitch,
		Pace:                p.Voice.Pace,
		Loudness:            p.Voice.Loudness,
		SpeechSampleRate:    p.SampleRate,
		EnablePreprocessing: true,
		Model:               p.Voice.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("could not encode tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/text-to-speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out sarvamResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("could not decode tts response: %w", err)
	}
	if len(out.Audios) != 1 || out.Audios[0] == "" {
		return nil, fmt.Errorf("%w: got %d", ErrNoAudio, len(out.Audios))
	}
	audio, err := base64.StdEncoding.DecodeString(out.Audios[0])
	if err != nil {
		return nil, fmt.Errorf("could not decode tts audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, ErrNoAudio
	}
	return audio, nil
}
