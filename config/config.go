// Package config loads the telephony relay configuration from the Dexter config directory.
package config

import (
	"fmt"
	"strings"
)

// Backend names accepted by stt.backend and tts.backend.
const (
	BackendSarvam = "sarvam"
	BackendGoogle = "google"
	BackendNone   = "none"
)

// Validate checks the selections and bounds that the service relies on.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.AudioDir) == "" {
		return fmt.Errorf("server.audio_dir is required")
	}
	if _, ok := c.Personas[c.Persona]; !ok {
		return fmt.Errorf("persona %q is not defined in personas", c.Persona)
	}
	if _, ok := c.Voices[c.Voice]; !ok {
		return fmt.Errorf("voice %q is not defined in voices", c.Voice)
	}
	for name, b := range map[string]string{"stt.backend": c.STT.Backend, "tts.backend": c.TTS.Backend} {
		switch b {
		case BackendSarvam, BackendGoogle, BackendNone, "":
		default:
			return fmt.Errorf("%s %q is not one of sarvam, google, none", name, b)
		}
	}
	if c.Conversation.PhoneAudioTTLSeconds <= 0 || c.Conversation.WebAudioTTLSeconds <= 0 {
		return fmt.Errorf("conversation audio TTLs must be positive")
	}
	if c.Conversation.MaxSilentRetries < 0 {
		return fmt.Errorf("conversation.max_silent_retries must not be negative")
	}
	if c.TTS.SampleRate <= 0 {
		return fmt.Errorf("tts.sample_rate must be positive")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	return nil
}

// SelectedPersona returns the prompt chosen at startup.
func (c *Config) SelectedPersona() Persona {
	return c.Personas[c.Persona]
}

// SelectedVoice returns a copy of the voice profile chosen at startup.
func (c *Config) SelectedVoice() VoiceProfile {
	return c.Voices[c.Voice]
}

// IsDevelopment reports whether error details may be exposed to clients.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

// LLMConfigured reports whether completions can be requested.
func (c *Config) LLMConfigured() bool { return c.LLM.APIKey != "" }

// TTSConfigured reports whether a synthesis provider has usable credentials.
func (c *Config) TTSConfigured() bool {
	switch c.TTS.Backend {
	case BackendSarvam:
		return c.TTS.APIKey != ""
	case BackendGoogle:
		return true
	}
	return false
}

// STTConfigured reports whether a transcription provider has usable credentials.
func (c *Config) STTConfigured() bool {
	switch c.STT.Backend {
	case BackendSarvam:
		return c.STT.APIKey != ""
	case BackendGoogle:
		return true
	}
	return false
}

// TranslateConfigured reports whether the translation bridge is active.
func (c *Config) TranslateConfigured() bool {
	return c.Translate.Enabled && c.Translate.APIKey != ""
}

// TwilioConfigured reports whether outbound calls can be placed.
func (c *Config) TwilioConfigured() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.PhoneNumber != ""
}
