package endpoints

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/EasterCompany/dex-telephony-service/llm"
	logger "github.com/EasterCompany/dex-telephony-service/log"
	"github.com/EasterCompany/dex-telephony-service/metrics"
	"github.com/EasterCompany/dex-telephony-service/stt"
)

// MaxUploadBytes caps /transcribe uploads.
const MaxUploadBytes = 10 << 20

var allowedAudioTypes = map[string]bool{
	"audio/wav":    true,
	"audio/wave":   true,
	"audio/x-wav":  true,
	"audio/mpeg":   true,
	"audio/mp3":    true,
	"audio/ogg":    true,
	"audio/webm":   true,
	"audio/flac":   true,
	"audio/x-flac": true,
	"audio/mp4":    true,
	"audio/x-m4a":  true,
	"audio/aac":    true,
}

type transcribeResponse struct {
	Text           string  `json:"text"`
	Language       string  `json:"language"`
	Duration       float64 `json:"duration"`
	TranslatedText string  `json:"translatedText,omitempty"`
}

// TranscribeHandler transcribes an uploaded audio file.
func (s *Server) TranscribeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, ErrTypeInvalidRequest, "audio file exceeds 10 MiB")
			return
		}
		writeJSONError(w, http.StatusBadRequest, ErrTypeInvalidRequest, "expected a multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, ErrTypeInvalidRequest, "audio file is required")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > MaxUploadBytes {
		writeJSONError(w, http.StatusRequestEntityTooLarge, ErrTypeInvalidRequest, "audio file exceeds 10 MiB")
		return
	}
	contentType := header.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !allowedAudioTypes[strings.ToLower(mediaType)] {
		writeJSONError(w, http.StatusUnsupportedMediaType, ErrTypeInvalidRequest,
			fmt.Sprintf("unsupported audio type %q", contentType))
		return
	}

	if s.Transcriber == nil {
		writeJSONError(w, http.StatusServiceUnavailable, ErrTypeProvider, "transcription is not configured")
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, ErrTypeInvalidRequest, "could not read audio file")
		return
	}

	hint := strings.TrimSpace(r.FormValue("language"))
	if hint != "" {
		hint = llm.NormalizeLanguage(hint)
	}
	res, err := s.Transcriber.Transcribe(r.Context(), stt.Request{
		Audio:       audio,
		Filename:    header.Filename,
		ContentType: mediaType,
		Language:    hint,
	})
	if errors.Is(err, stt.ErrNoSpeech) {
		writeJSONError(w, http.StatusUnprocessableEntity, ErrTypeInvalidRequest, "no speech detected")
		return
	}
	if err != nil {
		logger.Error("Transcription failed", err)
		s.providerError(w, "transcription failed", err)
		return
	}

	out := transcribeResponse{
		Text:     res.Text,
		Language: llm.NormalizeLanguage(res.Language),
		Duration: res.Duration,
	}
	if out.Duration == 0 {
		out.Duration = stt.Duration(audio, mediaType)
	}

	if target := strings.TrimSpace(r.FormValue("targetLanguage")); target != "" && s.Translator != nil {
		translated, err := s.Translator.Translate(r.Context(), out.Text, out.Language, llm.NormalizeLanguage(target))
		if err != nil {
			logger.Warn("Translation of transcript failed", err)
			s.Metrics.RecordFallback(metrics.FallbackTranslation)
		} else {
			out.TranslatedText = translated
		}
	}

	log.Printf("[STT] Transcribed %.2fs of %s (%s)", out.Duration, mediaType, out.Language)
	writeJSON(w, http.StatusOK, out)
}
