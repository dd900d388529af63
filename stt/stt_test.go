package stt

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeWAV builds a 16-bit mono PCM WAV of the given length.
func makeWAV(sampleRate int, seconds float64) []byte {
	n := int(float64(sampleRate)*seconds) * 2
	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+n))
	b.WriteString("WAVEfmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1))
	_ = binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&b, binary.LittleEndian, uint32(sampleRate*2))
	_ = binary.Write(&b, binary.LittleEndian, uint16(2))
	_ = binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(n))
	b.Write(make([]byte, n))
	return b.Bytes()
}

func TestDuration_WAV(t *testing.T) {
	assert.Equal(t, 1.5, Duration(makeWAV(16000, 1.5), "audio/wav"))
	assert.Equal(t, 2.0, Duration(makeWAV(8000, 2), ""))
}

func TestDuration_Unknown(t *testing.T) {
	assert.Zero(t, Duration([]byte("OggS not really"), "audio/ogg"))
	assert.Zero(t, Duration([]byte("garbage"), "audio/mpeg"))
}

func TestSarvam_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/speech-to-text", r.URL.Path)
		assert.Equal(t, "sv-key", r.Header.Get("api-subscription-key"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "saarika:v2.5", r.FormValue("model"))
		assert.Equal(t, "hi-IN", r.FormValue("language_code"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		assert.Equal(t, "clip.wav", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.NotEmpty(t, data)
		_, _ = w.Write([]byte(`{"transcript":"नमस्ते","language_code":"hi-IN"}`))
	}))
	defer srv.Close()

	s := NewSarvam(config.STTConfig{APIKey: "sv-key", BaseURL: srv.URL, Model: "saarika:v2.5", TimeoutSeconds: 5})
	res, err := s.Transcribe(context.Background(), Request{
		Audio: makeWAV(16000, 1), Filename: "clip.wav", ContentType: "audio/wav", Language: "hi",
	})

	require.NoError(t, err)
	assert.Equal(t, "नमस्ते", res.Text)
	assert.Equal(t, "hi-IN", res.Language)
	assert.Equal(t, 1.0, res.Duration)
}

func TestSarvam_DetectsWhenNoHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "unknown", r.FormValue("language_code"))
		_, _ = w.Write([]byte(`{"transcript":"hello","language_code":"en-IN"}`))
	}))
	defer srv.Close()

	s := NewSarvam(config.STTConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := s.Transcribe(context.Background(), Request{Audio: []byte("x")})
	require.NoError(t, err)
}

func TestSarvam_Errors(t *testing.T) {
	cases := map[string]struct {
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		"provider status": {
			handler: func(w http.ResponseWriter, r *http.Request) { http.Error(w, "bad audio", http.StatusBadRequest) },
			check:   func(t *testing.T, err error) { assert.Contains(t, err.Error(), "400") },
		},
		"empty transcript": {
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"transcript":"  "}`)) },
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNoSpeech) },
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			s := NewSarvam(config.STTConfig{APIKey: "k", BaseURL: srv.URL})
			_, err := s.Transcribe(context.Background(), Request{Audio: []byte("x")})

			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestRecognizeRequest(t *testing.T) {
	req := recognizeRequest(Request{Audio: []byte("a"), ContentType: "audio/webm;codecs=opus"})
	assert.Equal(t, speechpb.RecognitionConfig_WEBM_OPUS, req.Config.Encoding)
	assert.Equal(t, int32(48000), req.Config.SampleRateHertz)
	assert.Equal(t, "en-IN", req.Config.LanguageCode)
	assert.NotEmpty(t, req.Config.AlternativeLanguageCodes)

	req = recognizeRequest(Request{Audio: []byte("a"), ContentType: "audio/wav", Language: "ta"})
	assert.Equal(t, speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, req.Config.Encoding)
	assert.Equal(t, "ta-IN", req.Config.LanguageCode)
	assert.Empty(t, req.Config.AlternativeLanguageCodes)
}
