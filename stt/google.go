package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/EasterCompany/dex-telephony-service/config"
	"google.golang.org/api/option"
)

// Languages offered to Google as alternatives when no hint is given.
var googleAlternatives = []string{"hi-IN", "ta-IN", "te-IN"}

// GoogleTranscriber uses Google Cloud Speech batch recognition.
type GoogleTranscriber struct {
	speechClient *speech.Client
	cfg          config.STTConfig
}

// NewGoogle creates a Google Cloud Speech client. Without a credentials file it
// relies on Application Default Credentials.
func NewGoogle(ctx context.Context, cfg config.STTConfig) (*GoogleTranscriber, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleTranscriber{speechClient: client, cfg: cfg}, nil
}

// Close cleans up the speech client connection.
func (g *GoogleTranscriber) Close() error {
	if g.speechClient != nil {
		return g.speechClient.Close()
	}
	return nil
}

func (g *GoogleTranscriber) Transcribe(ctx context.Context, req Request) (Result, error) {
	if t := g.cfg.Timeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	resp, err := g.speechClient.Recognize(ctx, recognizeRequest(req))
	if err != nil {
		return Result{}, fmt.Errorf("could not recognize audio: %w", err)
	}

	var parts []string
	lang := ""
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		parts = append(parts, strings.TrimSpace(result.Alternatives[0].Transcript))
		if lang == "" {
			lang = result.LanguageCode
		}
	}
	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return Result{}, ErrNoSpeech
	}
	return Result{Text: text, Language: lang, Duration: Duration(req.Audio, req.ContentType)}, nil
}

func recognizeRequest(req Request) *speechpb.RecognizeRequest {
	cfg := &speechpb.RecognitionConfig{
		Encoding:                   encodingFor(req.ContentType),
		EnableAutomaticPunctuation: true,
		LanguageCode:               "en-IN",
		AlternativeLanguageCodes:   googleAlternatives,
	}
	if req.Language != "" {
		cfg.LanguageCode = localeTag(req.Language)
		cfg.AlternativeLanguageCodes = nil
	}
	switch cfg.Encoding {
	case speechpb.RecognitionConfig_OGG_OPUS, speechpb.RecognitionConfig_WEBM_OPUS:
		cfg.SampleRateHertz = 48000
	case speechpb.RecognitionConfig_MP3:
		cfg.SampleRateHertz = 44100
	}
	return &speechpb.RecognizeRequest{
		Config: cfg,
		Audio:  &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: req.Audio}},
	}
}

// encodingFor maps an upload MIME type to a Google encoding. WAV and FLAC carry
// their own headers, so they are left unspecified.
func encodingFor(contentType string) speechpb.RecognitionConfig_AudioEncoding {
	switch baseType(contentType) {
	case "audio/ogg":
		return speechpb.RecognitionConfig_OGG_OPUS
	case "audio/webm":
		return speechpb.RecognitionConfig_WEBM_OPUS
	case "audio/mpeg", "audio/mp3":
		return speechpb.RecognitionConfig_MP3
	}
	return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
}

func baseType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
