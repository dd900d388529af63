package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
	last  []Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []Message, _ Options) (string, error) {
	f.calls++
	f.last = messages
	return f.reply, f.err
}

func TestCorrect_ParsesTaggedReply(t *testing.T) {
	fc := &fakeCompleter{reply: "LANGUAGE: hi\nCORRECTED: मुझे ड्राइंग पसंद है"}
	c := NewCorrector(fc)

	got := c.Correct(context.Background(), "mujhe drawing pasand")

	assert.Equal(t, "hi", got.Language)
	assert.Equal(t, "मुझे ड्राइंग पसंद है", got.Text)
	assert.Equal(t, "mujhe drawing pasand", got.Original)
	require.Len(t, fc.last, 1)
	assert.Contains(t, fc.last[0].Content, "mujhe drawing pasand")
}

func TestCorrect_TolerantFormatting(t *testing.T) {
	fc := &fakeCompleter{reply: "Sure!\n**Language**:  **ta-IN**\n**Corrected:** I like drawing  \n"}

	got := NewCorrector(fc).Correct(context.Background(), "i like drawin")

	assert.Equal(t, "ta", got.Language)
	assert.Equal(t, "I like drawing", got.Text)
}

func TestCorrect_MissingTags(t *testing.T) {
	fc := &fakeCompleter{reply: "I could not understand that."}

	got := NewCorrector(fc).Correct(context.Background(), "hmm")

	assert.Equal(t, DefaultLanguage, got.Language)
	assert.Equal(t, "hmm", got.Text)
}

func TestCorrect_FailSoft(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("quota exceeded")}

	got := NewCorrector(fc).Correct(context.Background(), "I like drawing")

	assert.Equal(t, Correction{Language: "en", Text: "I like drawing", Original: "I like drawing", Degraded: true}, got)
}

func TestCorrect_NilCompleter(t *testing.T) {
	got := NewCorrector(nil).Correct(context.Background(), "hello")
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, "en", got.Language)
	assert.False(t, got.Degraded)
}

func TestCorrect_EmptyUtteranceSkipsProvider(t *testing.T) {
	fc := &fakeCompleter{reply: "LANGUAGE: hi"}
	NewCorrector(fc).Correct(context.Background(), "   ")
	assert.Zero(t, fc.calls)
}

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{
		"hi":      "hi",
		"hi-IN":   "hi",
		"TE_in":   "te",
		"English": "en",
		"tamil":   "ta",
		"or":      "od",
		"klingon": "en",
		"":        "en",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLanguage(in), in)
	}
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt("You are a counselor.", "ml")
	assert.Equal(t, "You are a counselor.\n\nYou MUST respond in Malayalam.", p)
	assert.Contains(t, SystemPrompt("x", "zz"), "You MUST respond in English.")
}

func TestClient_Complete(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" Try Graphic Design. "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "gpt-4o-mini", TimeoutSeconds: 5})
	reply, err := c.Complete(context.Background(), []Message{
		{Role: "system", Content: "persona"},
		{Role: "user", Content: "I like drawing"},
	}, Options{MaxTokens: 150, Temperature: 0.7})

	require.NoError(t, err)
	assert.Equal(t, "Try Graphic Design.", reply)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 150, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	_, err := c.Complete(context.Background(), nil, Options{MaxTokens: 10})

	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestClient_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	c := NewClient(config.LLMConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	_, err := c.Complete(context.Background(), nil, Options{MaxTokens: 10})

	assert.Error(t, err)
}
