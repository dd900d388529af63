// Package tts synthesizes replies into short-lived audio files served under /audio.
package tts

import (
	"context"
	"errors"

	"github.com/EasterCompany/dex-telephony-service/config"
)

// ErrNoAudio is returned when the provider response does not hold exactly one audio payload.
var ErrNoAudio = errors.New("tts response did not contain exactly one audio payload")

// DefaultLocale is used for every language without an entry in the locale table.
const DefaultLocale = "en-IN"

var locales = map[string]string{
	"hi": "hi-IN",
	"bn": "bn-IN",
	"gu": "gu-IN",
	"kn": "kn-IN",
	"ml": "ml-IN",
	"mr": "mr-IN",
	"od": "od-IN",
	"pa": "pa-IN",
	"ta": "ta-IN",
	"te": "te-IN",
}

// Locale maps a detected language code to the synthesis locale tag.
func Locale(code string) string {
	if l, ok := locales[code]; ok {
		return l
	}
	return DefaultLocale
}

// Params describes one synthesis call.
type Params struct {
	Text       string
	Locale     string
	Voice      config.VoiceProfile
	SampleRate int
}

// Synthesizer is implemented by each text-to-speech backend. It returns WAV bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, p Params) ([]byte, error)
}
