package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSynth struct {
	audio []byte
	err   error
	got   Params
}

func (f *fakeSynth) Synthesize(_ context.Context, p Params) ([]byte, error) {
	f.got = p
	return f.audio, f.err
}

func newService(t *testing.T, synth Synthesizer, baseURL string) *Service {
	dir := filepath.Join(t.TempDir(), "audio")
	svc, err := NewService(synth, config.Default().SelectedVoice(),
		config.ServerConfig{AudioDir: dir, PublicBaseURL: baseURL},
		config.TTSConfig{SampleRate: 22050, TimeoutSeconds: 10})
	require.NoError(t, err)
	svc.newID = func() string { return "fixed-id" }
	return svc
}

func TestLocale(t *testing.T) {
	for code, want := range locales {
		assert.Equal(t, want, Locale(code))
	}
	assert.Len(t, locales, 10)
	for _, code := range []string{"en", "fr", "zz", "", "hi-IN"} {
		assert.Equal(t, "en-IN", Locale(code), code)
	}
}

func TestService_WritesArtifact(t *testing.T) {
	synth := &fakeSynth{audio: []byte("RIFFdata")}
	svc := newService(t, synth, "https://relay.example.com/")

	art, err := svc.Synthesize(context.Background(), "Namaste", "hi")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(svc.Dir(), "fixed-id.wav"), art.Path)
	assert.Equal(t, "https://relay.example.com/audio/fixed-id.wav", art.URL)
	data, err := os.ReadFile(art.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFFdata"), data)
	assert.Equal(t, "hi-IN", synth.got.Locale)
	assert.Equal(t, 22050, synth.got.SampleRate)
	assert.Equal(t, "anushka", synth.got.Voice.Speaker)
}

func TestService_RelativeURLWithoutBase(t *testing.T) {
	svc := newService(t, &fakeSynth{audio: []byte("x")}, "")

	art, err := svc.Synthesize(context.Background(), "hello", "fr")

	require.NoError(t, err)
	assert.Equal(t, "/audio/fixed-id.wav", art.URL)
}

func TestService_ErrorWritesNothing(t *testing.T) {
	svc := newService(t, &fakeSynth{err: errors.New("timeout")}, "")

	_, err := svc.Synthesize(context.Background(), "hello", "en")

	require.Error(t, err)
	entries, err := os.ReadDir(svc.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSarvam_Synthesize(t *testing.T) {
	var got sarvamRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text-to-speech", r.URL.Path)
		assert.Equal(t, "sv-key", r.Header.Get("api-subscription-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string][]string{"audios": {base64.StdEncoding.EncodeToString([]byte("wav-bytes"))}})
	}))
	defer srv.Close()

	s := NewSarvam(config.TTSConfig{APIKey: "sv-key", BaseURL: srv.URL})
	audio, err := s.Synthesize(context.Background(), Params{
		Text: "hello", Locale: "ta-IN", SampleRate: 22050,
		Voice: config.VoiceProfile{Model: "bulbul:v2", Speaker: "anushka", Pace: 1, Loudness: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("wav-bytes"), audio)
	assert.Equal(t, "ta-IN", got.TargetLanguageCode)
	assert.Equal(t, 22050, got.SpeechSampleRate)
	assert.True(t, got.EnablePreprocessing)
	assert.Equal(t, "bulbul:v2", got.Model)
}

func TestSarvam_RequiresExactlyOnePayload(t *testing.T) {
	cases := map[string]string{
		"none":    `{"audios":[]}`,
		"missing": `{}`,
		"two":     `{"audios":["YQ==","Yg=="]}`,
		"empty":   `{"audios":[""]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewSarvam(config.TTSConfig{BaseURL: srv.URL}).Synthesize(context.Background(), Params{Text: "x"})
			assert.ErrorIs(t, err, ErrNoAudio)
		})
	}
}

func TestSarvam_ProviderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewSarvam(config.TTSConfig{BaseURL: srv.URL}).Synthesize(context.Background(), Params{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestGoogleRequest(t *testing.T) {
	req := synthesizeRequest(Params{Text: "hi", Locale: "kn-IN", SampleRate: 22050, Voice: config.VoiceProfile{Pace: 1.2}})
	assert.Equal(t, "kn-IN", req.Voice.LanguageCode)
	assert.Equal(t, int32(22050), req.AudioConfig.SampleRateHertz)
	assert.Equal(t, 1.2, req.AudioConfig.SpeakingRate)
}
