package config

const counselorPrompt = `You are Dex, a friendly admissions counselor for a vocational institute.
Callers tell you about their interests and you recommend one of the institute's courses:
Graphic & Product Design, Software Development, Digital Marketing, Hospitality Management,
Electrical Technician or Accounting.
Keep every answer under three short sentences because it will be read aloud on a phone call.
Ask one follow-up question at a time. Never use markdown, lists or emojis.`

const receptionistPrompt = `You are Dex, a polite receptionist. Answer briefly, in plain spoken sentences,
and offer to connect the caller with a human when you cannot help.`

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8300,
			Environment: "production",
			AudioDir:    "~/Dexter/data/telephony-audio",
		},
		Persona: "counselor",
		Personas: map[string]Persona{
			"counselor": {
				Description: "Course recommendation counselor",
				Prompt:      counselorPrompt,
			},
			"receptionist": {
				Description: "General front desk",
				Prompt:      receptionistPrompt,
			},
		},
		Voice: "anushka",
		Voices: map[string]VoiceProfile{
			"anushka": {
				Model:       "bulbul:v2",
				Speaker:     "anushka",
				Language:    "en-IN",
				Pitch:       0,
				Pace:        1.0,
				Loudness:    1.0,
				Description: "Clear, professional female voice",
			},
			"abhilash": {
				Model:       "bulbul:v2",
				Speaker:     "abhilash",
				Language:    "en-IN",
				Pitch:       0,
				Pace:        1.0,
				Loudness:    1.0,
				Description: "Warm male voice",
			},
		},
		LLM: LLMConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			MaxTokens:      150,
			Temperature:    0.7,
			TimeoutSeconds: 20,
		},
		STT: STTConfig{
			Backend:        "sarvam",
			BaseURL:        "https://api.sarvam.ai",
			Model:          "saarika:v2.5",
			TimeoutSeconds: 30,
		},
		TTS: TTSConfig{
			Backend:        "sarvam",
			BaseURL:        "https://api.sarvam.ai",
			SampleRate:     22050,
			TimeoutSeconds: 10,
		},
		Translate: TranslateConfig{
			BaseURL:        "https://api.sarvam.ai",
			Model:          "mayura:v1",
			TimeoutSeconds: 10,
		},
		Twilio: TwilioConfig{
			Region: "IN",
		},
		Conversation: ConversationConfig{
			Greeting:             "Hello! I'm Dex. Tell me a little about what you enjoy doing, and I'll suggest a course for you.",
			WebGreeting:          "Hi! I'm Dex. Tell me about your interests and I'll recommend a course.",
			RetryPrompt:          "Sorry, I didn't catch that. Could you say it again?",
			ErrorPrompt:          "Sorry, I'm having trouble right now. Could you repeat that?",
			GoodbyePrompt:        "I'm having trouble hearing you, so I'll end the call now. Goodbye!",
			GatherLanguage:       "en-IN",
			MaxSilentRetries:     3,
			PhoneAudioTTLSeconds: 30,
			WebAudioTTLSeconds:   60,
		},
		RateLimit: RateLimitConfig{
			RPS:   2,
			Burst: 20,
		},
		Redis: RedisConfig{
			SessionTTLMinutes: 120,
		},
	}
}
