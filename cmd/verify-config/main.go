package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/EasterCompany/dex-telephony-service/config"
)

// ANSI color codes for formatted output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

func main() {
	fmt.Printf("%s--- Dexter Telephony Config Verifier ---%s\n", ColorBlue, ColorReset)

	path, err := config.Path()
	if err != nil {
		fmt.Printf("%s[FATAL]%s Could not resolve config path: %v\n", ColorRed, ColorReset, err)
		os.Exit(1)
	}

	fmt.Printf("\nVerifying %s'%s'%s...\n", ColorBlue, path, ColorReset)
	cfg, ok := verifyConfigFile(path)
	if ok {
		reportProviders(cfg)
	}

	fmt.Println("\n--------------------------")
	if ok {
		fmt.Printf("%s✅ Configuration seems correct.%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%s❌ Some issues were found in the configuration.%s\n", ColorRed, ColorReset)
		os.Exit(1)
	}
}

func verifyConfigFile(path string) (*config.Config, bool) {
	// 1. Check file existence
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("  %s[FAIL]%s File not found or not readable: %v\n", ColorRed, ColorReset, err)
		return nil, false
	}
	fmt.Printf("  %s[OK]%s File exists and is readable.\n", ColorGreen, ColorReset)

	// 2. Check for valid JSON and unknown fields
	cfg := config.Default()
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		fmt.Printf("  %s[FAIL]%s JSON is invalid or contains unexpected fields: %v\n", ColorRed, ColorReset, err)
		return nil, false
	}
	fmt.Printf("  %s[OK]%s JSON is valid and all fields are recognized.\n", ColorGreen, ColorReset)

	// 3. Check selections and bounds
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  %s[FAIL]%s %v\n", ColorRed, ColorReset, err)
		return nil, false
	}
	fmt.Printf("  %s[OK]%s Persona %q and voice %q are defined.\n", ColorGreen, ColorReset, cfg.Persona, cfg.Voice)
	return cfg, true
}

// reportProviders warns about providers that have no credentials in the file.
// Secrets supplied through the environment are not visible here.
func reportProviders(cfg *config.Config) {
	checks := []struct {
		name string
		ok   bool
	}{
		{"llm", cfg.LLMConfigured()},
		{"stt (" + cfg.STT.Backend + ")", cfg.STTConfigured()},
		{"tts (" + cfg.TTS.Backend + ")", cfg.TTSConfigured()},
		{"translate", cfg.TranslateConfigured()},
		{"twilio", cfg.TwilioConfigured()},
		{"public_base_url", cfg.Server.PublicBaseURL != ""},
	}
	for _, c := range checks {
		if c.ok {
			fmt.Printf("  %s[OK]%s %s configured.\n", ColorGreen, ColorReset, c.name)
		} else {
			fmt.Printf("  %s[WARN]%s %s not configured in file (may come from the environment).\n", ColorYellow, ColorReset, c.name)
		}
	}
}
