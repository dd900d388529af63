package llm

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
)

var (
	languageTag  = regexp.MustCompile(`(?im)^[\s*_]*language[\s*_]*:[\s*_]*([a-z][a-z_-]*)`)
	correctedTag = regexp.MustCompile(`(?im)^[\s*_]*corrected[\s*_]*:[\s*_]*(.*?)[\s*_]*$`)
)

// Correction is the outcome of a correction pass.
type Correction struct {
	Language string
	Text     string
	Original string
	// Degraded is set when the provider failed and the input was passed through.
	Degraded bool
}

// Corrector detects the caller's language and cleans up a noisy transcript.
type Corrector struct {
	completer Completer
}

// NewCorrector returns a Corrector. A nil completer makes Correct a pass-through.
func NewCorrector(c Completer) *Corrector {
	return &Corrector{completer: c}
}

// Correct never fails: on any provider problem it returns the input unchanged in DefaultLanguage.
func (c *Corrector) Correct(ctx context.Context, utterance string) Correction {
	out := Correction{Language: DefaultLanguage, Text: utterance, Original: utterance}
	if c == nil || c.completer == nil || strings.TrimSpace(utterance) == "" {
		return out
	}

	reply, err := c.completer.Complete(ctx, []Message{
		{Role: "user", Content: fmt.Sprintf(correctionPrompt, utterance)},
	}, Options{MaxTokens: 200, Temperature: 0})
	if err != nil {
		log.Printf("[CORRECT] Correction unavailable, using raw transcript: %v", err)
		out.Degraded = true
		return out
	}

	lang, text := parseCorrection(reply)
	if lang != "" {
		out.Language = NormalizeLanguage(lang)
	}
	if text != "" {
		out.Text = text
	}
	return out
}

// parseCorrection extracts the tagged values; missing tags come back empty.
func parseCorrection(reply string) (language, corrected string) {
	if m := languageTag.FindStringSubmatch(reply); m != nil {
		language = m[1]
	}
	if m := correctedTag.FindStringSubmatch(reply); m != nil {
		corrected = strings.TrimSpace(m[1])
	}
	return language, corrected
}
