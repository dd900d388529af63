package llm

import "fmt"

const correctionPrompt = `You clean up speech recognition transcripts from phone calls.

Given the transcript below:
1. Identify the language the caller is speaking. Use one of these codes: en, hi, bn, gu, kn, ml, mr, od, pa, ta, te.
2. Correct obvious recognition mistakes, spelling and punctuation. Keep the caller's meaning and language. Do not translate and do not answer the caller.

Respond with exactly two lines and nothing else:
LANGUAGE: <code>
CORRECTED: <corrected transcript>

Transcript:
%s`

// SystemPrompt appends the mandatory response-language instruction to a persona prompt.
func SystemPrompt(persona, language string) string {
	return fmt.Sprintf("%s\n\nYou MUST respond in %s.", persona, LanguageName(language))
}
