// Package translate bridges text between languages through the Sarvam translate API.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/EasterCompany/dex-telephony-service/config"
)

const defaultBaseURL = "https://api.sarvam.ai"

// ErrEmptyTranslation is returned when the provider answers without text.
var ErrEmptyTranslation = errors.New("translation returned no text")

// Translator converts text from one language code to another.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Client calls the Sarvam /translate endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient builds a translator from the translate section of the config.
func NewClient(cfg config.TranslateConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

type translateRequest struct {
	Input              string `json:"input"`
	SourceLanguageCode string `json:"source_language_code"`
	TargetLanguageCode string `json:"target_language_code"`
	Model              string `json:"model,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// Locale turns a short language code into the provider's locale tag.
func Locale(code string) string {
	if code == "" || code == "auto" {
		return "auto"
	}
	if strings.Contains(code, "-") {
		return code
	}
	return code + "-IN"
}

// Translate returns text unchanged when source and target are the same language.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" || sameLanguage(source, target) {
		return text, nil
	}

	body, err := json.Marshal(translateRequest{
		Input:              text,
		SourceLanguageCode: Locale(source),
		TargetLanguageCode: Locale(target),
		Model:              c.model,
	})
	if err != nil {
		return "", fmt.Errorf("could not encode translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("could not create translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("translate returned %s after %s: %s", resp.Status, time.Since(start).Round(time.Millisecond), strings.TrimSpace(string(msg)))
	}

	var out translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("could not decode translate response: %w", err)
	}
	if strings.TrimSpace(out.TranslatedText) == "" {
		return "", ErrEmptyTranslation
	}
	return out.TranslatedText, nil
}

func sameLanguage(a, b string) bool {
	short := func(s string) string {
		s = strings.ToLower(s)
		if i := strings.Index(s, "-"); i > 0 {
			return s[:i]
		}
		return s
	}
	return short(a) == short(b)
}
