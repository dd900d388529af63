package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	configFileName = "telephony.json"
	pathEnvVar     = "DEX_TELEPHONY_CONFIG"
)

// Re-assigned in tests.
var osUserHomeDir = os.UserHomeDir

// expandPath resolves paths like "~/" to the user's home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := osUserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Path returns the config file location, honouring DEX_TELEPHONY_CONFIG.
func Path() (string, error) {
	if p := os.Getenv(pathEnvVar); p != "" {
		return expandPath(p)
	}
	return expandPath(filepath.Join("~/Dexter/config", configFileName))
}

// loadOrCreate reads the config file, writing the defaults first if it does not exist.
func loadOrCreate(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("could not create config directory: %w", err)
		}
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("could not encode default config: %w", err)
		}
		if err := os.WriteFile(path, out, 0600); err != nil {
			return nil, fmt.Errorf("could not write default config file %s: %w", path, err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not decode config file: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays credentials and deployment settings from the environment.
func applyEnv(cfg *Config) {
	str := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}

	str(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	str(&cfg.LLM.BaseURL, "OPENAI_BASE_URL")
	str(&cfg.LLM.Model, "OPENAI_MODEL")

	str(&cfg.STT.APIKey, "SARVAM_API_KEY")
	str(&cfg.TTS.APIKey, "SARVAM_API_KEY")
	str(&cfg.Translate.APIKey, "SARVAM_API_KEY")
	str(&cfg.STT.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	str(&cfg.TTS.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")

	str(&cfg.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	str(&cfg.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	str(&cfg.Twilio.PhoneNumber, "TWILIO_PHONE_NUMBER")

	str(&cfg.Server.PublicBaseURL, "PUBLIC_BASE_URL")
	str(&cfg.Server.Environment, "DEX_ENV")
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	str(&cfg.Redis.Addr, "REDIS_ADDR")
	str(&cfg.Redis.Password, "REDIS_PASSWORD")

	str(&cfg.Discord.Token, "DISCORD_TOKEN")
	str(&cfg.Discord.LogChannelID, "DISCORD_LOG_CHANNEL_ID")
}

// LoadConfig loads .env (if present), the JSON config file and environment overrides.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env file: %w", err)
	}

	path, err := Path()
	if err != nil {
		return nil, err
	}

	cfg, err := loadOrCreate(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)

	cfg.Server.AudioDir, err = expandPath(cfg.Server.AudioDir)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
