package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestEnvironment points the home directory at a temp dir and clears env overrides.
// It returns the path to the temporary Dexter config directory.
func setupTestEnvironment(t *testing.T) string {
	tempDir := t.TempDir()

	dexterConfigPath := filepath.Join(tempDir, "Dexter", "config")
	require.NoError(t, os.MkdirAll(dexterConfigPath, 0755))

	originalHomeDirFunc := osUserHomeDir
	osUserHomeDir = func() (string, error) {
		return tempDir, nil
	}
	t.Cleanup(func() { osUserHomeDir = originalHomeDirFunc })

	for _, key := range []string{
		pathEnvVar, "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "SARVAM_API_KEY",
		"GOOGLE_APPLICATION_CREDENTIALS", "TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN",
		"TWILIO_PHONE_NUMBER", "PUBLIC_BASE_URL", "DEX_ENV", "PORT", "REDIS_ADDR",
		"REDIS_PASSWORD", "DISCORD_TOKEN", "DISCORD_LOG_CHANNEL_ID",
	} {
		t.Setenv(key, "")
	}

	return dexterConfigPath
}

func TestLoadConfig_Success(t *testing.T) {
	dexterPath := setupTestEnvironment(t)

	cfg := Default()
	cfg.Server.Port = 9000
	cfg.Persona = "receptionist"
	cfg.LLM.APIKey = "sk-file"
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dexterPath, configFileName), data, 0644))

	loaded, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 9000, loaded.Server.Port)
	assert.Equal(t, "receptionist", loaded.Persona)
	assert.Equal(t, "sk-file", loaded.LLM.APIKey)
	assert.Contains(t, loaded.SelectedPersona().Prompt, "receptionist")
}

func TestLoadConfig_FileCreation(t *testing.T) {
	dexterPath := setupTestEnvironment(t)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dexterPath, configFileName))
	assert.Equal(t, 8300, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Conversation.PhoneAudioTTLSeconds)
	assert.Equal(t, 60, cfg.Conversation.WebAudioTTLSeconds)
	assert.False(t, cfg.LLMConfigured())
	assert.NotContains(t, cfg.Server.AudioDir, "~")
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	dexterPath := setupTestEnvironment(t)
	require.NoError(t, os.WriteFile(filepath.Join(dexterPath, configFileName), []byte("{ not valid json }"), 0644))

	_, err := LoadConfig()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "could not decode config file")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("SARVAM_API_KEY", "sv-env")
	t.Setenv("PORT", "8088")
	t.Setenv("PUBLIC_BASE_URL", "https://relay.example.com")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, "sv-env", cfg.TTS.APIKey)
	assert.Equal(t, "sv-env", cfg.STT.APIKey)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "https://relay.example.com", cfg.Server.PublicBaseURL)
	assert.True(t, cfg.TTSConfigured())
}

func TestLoadConfig_PathOverride(t *testing.T) {
	setupTestEnvironment(t)
	custom := filepath.Join(t.TempDir(), "custom.json")
	t.Setenv(pathEnvVar, custom)

	_, err := LoadConfig()

	require.NoError(t, err)
	assert.FileExists(t, custom)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"unknown persona":  func(c *Config) { c.Persona = "pirate" },
		"unknown voice":    func(c *Config) { c.Voice = "robot" },
		"bad port":         func(c *Config) { c.Server.Port = 0 },
		"bad backend":      func(c *Config) { c.TTS.Backend = "polly" },
		"zero ttl":         func(c *Config) { c.Conversation.PhoneAudioTTLSeconds = 0 },
		"negative retries": func(c *Config) { c.Conversation.MaxSilentRetries = -1 },
		"zero sample rate": func(c *Config) { c.TTS.SampleRate = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestSelectedVoiceIsACopy(t *testing.T) {
	cfg := Default()
	v := cfg.SelectedVoice()
	v.Pace = 9

	assert.Equal(t, 1.0, cfg.SelectedVoice().Pace)
}
