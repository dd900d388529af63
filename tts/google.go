package tts

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/EasterCompany/dex-telephony-service/config"
	"google.golang.org/api/option"
)

// GoogleSynthesizer uses Google Cloud Text-to-Speech.
type GoogleSynthesizer struct {
	client *texttospeech.Client
}

// NewGoogle creates a Google Cloud TTS client. Without a credentials file it
// relies on Application Default Credentials.
func NewGoogle(ctx context.Context, cfg config.TTSConfig) (*GoogleSynthesizer, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create texttospeech client: %w", err)
	}
	return &GoogleSynthesizer{client: client}, nil
}

// Close cleans up the client connection.
func (g *GoogleSynthesizer) Close() error {
	return g.client.Close()
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, p Params) ([]byte, error) {
	resp, err := g.client.SynthesizeSpeech(ctx, synthesizeRequest(p))
	if err != nil {
		return nil, fmt.Errorf("could not synthesize speech: %w", err)
	}
	if len(resp.AudioContent) == 0 {
		return nil, ErrNoAudio
	}
	return resp.AudioContent, nil
}

func synthesizeRequest(p Params) *texttospeechpb.SynthesizeSpeechRequest {
	audio := &texttospeechpb.AudioConfig{
		AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
		SampleRateHertz: int32(p.SampleRate),
		Pitch:           p.Voice.Pitch,
	}
	if p.Voice.Pace > 0 {
		audio.SpeakingRate = p.Voice.Pace
	}
	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: p.Text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: p.Locale,
		},
		AudioConfig: audio,
	}
}
