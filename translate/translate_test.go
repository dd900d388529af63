package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.TranslateConfig{APIKey: "sv-key", BaseURL: srv.URL, Model: "mayura:v1", TimeoutSeconds: 5})
}

func TestTranslate(t *testing.T) {
	var got translateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		assert.Equal(t, "sv-key", r.Header.Get("api-subscription-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"translated_text":"मुझे चित्रकारी पसंद है"}`))
	})

	out, err := c.Translate(context.Background(), "I like drawing", "en", "hi")

	require.NoError(t, err)
	assert.Equal(t, "मुझे चित्रकारी पसंद है", out)
	assert.Equal(t, "en-IN", got.SourceLanguageCode)
	assert.Equal(t, "hi-IN", got.TargetLanguageCode)
	assert.Equal(t, "mayura:v1", got.Model)
}

func TestTranslate_SameLanguageSkipsProvider(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	out, err := c.Translate(context.Background(), "hello", "en-IN", "en")

	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.False(t, called)
}

func TestTranslate_ProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusForbidden)
	})

	_, err := c.Translate(context.Background(), "hello", "en", "ta")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestTranslate_EmptyText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"translated_text":""}`))
	})

	_, err := c.Translate(context.Background(), "hello", "en", "ta")

	assert.ErrorIs(t, err, ErrEmptyTranslation)
}

func TestLocale(t *testing.T) {
	assert.Equal(t, "auto", Locale(""))
	assert.Equal(t, "te-IN", Locale("te"))
	assert.Equal(t, "en-US", Locale("en-US"))
}
