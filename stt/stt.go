// Package stt turns uploaded audio into text.
package stt

import (
	"context"
	"errors"
)

// ErrNoSpeech is returned when the provider finds nothing to transcribe.
var ErrNoSpeech = errors.New("no speech recognised")

// Request is one batch transcription job.
type Request struct {
	Audio       []byte
	Filename    string
	ContentType string
	// Language is an optional hint such as "hi" or "ta-IN". Empty means detect.
	Language string
}

// Result is the provider's transcript and detected language.
type Result struct {
	Text     string
	Language string
	Duration float64
}

// Transcriber is implemented by each speech-to-text backend.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (Result, error)
}
