package config

import "time"

// Config reflects the structure of ~/Dexter/config/telephony.json.
type Config struct {
	Server       ServerConfig            `json:"server"`
	Persona      string                  `json:"persona"`
	Personas     map[string]Persona      `json:"personas"`
	Voice        string                  `json:"voice"`
	Voices       map[string]VoiceProfile `json:"voices"`
	LLM          LLMConfig               `json:"llm"`
	STT          STTConfig               `json:"stt"`
	TTS          TTSConfig               `json:"tts"`
	Translate    TranslateConfig         `json:"translate"`
	Twilio       TwilioConfig            `json:"twilio"`
	Conversation ConversationConfig      `json:"conversation"`
	RateLimit    RateLimitConfig         `json:"rate_limit"`
	Redis        RedisConfig             `json:"redis"`
	Discord      DiscordConfig           `json:"discord"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port          int    `json:"port"`
	Environment   string `json:"environment"` // development or production
	PublicBaseURL string `json:"public_base_url"`
	AudioDir      string `json:"audio_dir"`
}

// Persona is a named system prompt for the assistant.
type Persona struct {
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
}

// VoiceProfile is a named bundle of speech synthesis parameters.
type VoiceProfile struct {
	Model       string  `json:"model"`
	Speaker     string  `json:"speaker"`
	Language    string  `json:"language"`
	Pitch       float64 `json:"pitch"`
	Pace        float64 `json:"pace"`
	Loudness    float64 `json:"loudness"`
	Description string  `json:"description"`
}

// LLMConfig holds chat completion settings.
type LLMConfig struct {
	APIKey         string  `json:"api_key"`
	BaseURL        string  `json:"base_url"`
	Model          string  `json:"model"`
	MaxTokens      int     `json:"max_tokens"`
	Temperature    float32 `json:"temperature"`
	TimeoutSeconds int     `json:"timeout_seconds"`
}

// STTConfig selects and configures the speech-to-text backend.
type STTConfig struct {
	Backend         string `json:"backend"` // sarvam, google or none
	APIKey          string `json:"api_key"`
	BaseURL         string `json:"base_url"`
	Model           string `json:"model"`
	CredentialsFile string `json:"credentials_file"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Backend         string `json:"backend"` // sarvam, google or none
	APIKey          string `json:"api_key"`
	BaseURL         string `json:"base_url"`
	CredentialsFile string `json:"credentials_file"`
	SampleRate      int    `json:"sample_rate"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
}

// TranslateConfig configures the optional translation bridge.
type TranslateConfig struct {
	Enabled        bool   `json:"enabled"`
	Replies        bool   `json:"replies"`
	APIKey         string `json:"api_key"`
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// TwilioConfig holds telephony credentials.
type TwilioConfig struct {
	AccountSID  string `json:"account_sid"`
	AuthToken   string `json:"auth_token"`
	PhoneNumber string `json:"phone_number"`
	Region      string `json:"default_region"`
}

// ConversationConfig tunes the turn pipeline.
type ConversationConfig struct {
	Greeting             string `json:"greeting"`
	WebGreeting          string `json:"web_greeting"`
	RetryPrompt          string `json:"retry_prompt"`
	ErrorPrompt          string `json:"error_prompt"`
	GoodbyePrompt        string `json:"goodbye_prompt"`
	GatherLanguage       string `json:"gather_language"`
	MaxSilentRetries     int    `json:"max_silent_retries"`
	PhoneAudioTTLSeconds int    `json:"phone_audio_ttl_seconds"`
	WebAudioTTLSeconds   int    `json:"web_audio_ttl_seconds"`
}

// RateLimitConfig bounds requests per client address.
type RateLimitConfig struct {
	RPS   float64 `json:"rps"`
	Burst int     `json:"burst"`
}

// RedisConfig enables the Redis session store, event stream and log mirror.
type RedisConfig struct {
	Addr              string `json:"addr"`
	Username          string `json:"username"`
	Password          string `json:"password"`
	DB                int    `json:"db"`
	SessionTTLMinutes int    `json:"session_ttl_minutes"`
}

// DiscordConfig enables mirroring error logs into a Discord channel.
type DiscordConfig struct {
	Token        string `json:"token"`
	LogChannelID string `json:"log_channel_id"`
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// PhoneAudioTTL is how long a phone-channel artifact lives before deletion.
func (c ConversationConfig) PhoneAudioTTL() time.Duration { return seconds(c.PhoneAudioTTLSeconds) }

// WebAudioTTL is how long a web-channel artifact lives before deletion.
func (c ConversationConfig) WebAudioTTL() time.Duration { return seconds(c.WebAudioTTLSeconds) }

func (c LLMConfig) Timeout() time.Duration       { return seconds(c.TimeoutSeconds) }
func (c STTConfig) Timeout() time.Duration       { return seconds(c.TimeoutSeconds) }
func (c TTSConfig) Timeout() time.Duration       { return seconds(c.TimeoutSeconds) }
func (c TranslateConfig) Timeout() time.Duration { return seconds(c.TimeoutSeconds) }

// SessionTTL is the expiry applied to Redis-held sessions.
func (c RedisConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
