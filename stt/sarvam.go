package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/EasterCompany/dex-telephony-service/config"
)

const sarvamBaseURL = "https://api.sarvam.ai"

// SarvamTranscriber calls the Sarvam batch /speech-to-text endpoint.
type SarvamTranscriber struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewSarvam builds a transcriber from the stt section of the config.
func NewSarvam(cfg config.STTConfig) *SarvamTranscriber {
	base := cfg.BaseURL
	if base == "" {
		base = sarvamBaseURL
	}
	return &SarvamTranscriber{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

type sarvamResponse struct {
	Transcript   string `json:"transcript"`
	LanguageCode string `json:"language_code"`
}

func (s *SarvamTranscriber) Transcribe(ctx context.Context, req Request) (Result, error) {
	body, contentType, err := s.encode(req)
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/speech-to-text", body)
	if err != nil {
		return Result{}, fmt.Errorf("could not create stt request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("api-subscription-key", s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("stt request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("stt returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var out sarvamResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("could not decode stt response: %w", err)
	}
	if strings.TrimSpace(out.Transcript) == "" {
		return Result{}, ErrNoSpeech
	}
	return Result{
		Text:     out.Transcript,
		Language: out.LanguageCode,
		Duration: Duration(req.Audio, req.ContentType),
	}, nil
}

func (s *SarvamTranscriber) encode(req Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	filename := req.Filename
	if filename == "" {
		filename = "audio.wav"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if req.ContentType != "" {
		h.Set("Content-Type", req.ContentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("could not create file part: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, "", fmt.Errorf("could not write audio: %w", err)
	}

	if s.model != "" {
		if err := mw.WriteField("model", s.model); err != nil {
			return nil, "", fmt.Errorf("could not write model field: %w", err)
		}
	}
	lang := "unknown"
	if req.Language != "" {
		lang = localeTag(req.Language)
	}
	if err := mw.WriteField("language_code", lang); err != nil {
		return nil, "", fmt.Errorf("could not write language field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("could not close multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// localeTag expands "hi" to "hi-IN"; full tags pass through.
func localeTag(code string) string {
	if strings.Contains(code, "-") {
		return code
	}
	return code + "-IN"
}
