package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTurn("phone", "ok")
		m.RecordFallback(FallbackSpeech)
		m.RecordCall("started")
		m.ObserveProvider("tts", time.Now(), nil)
		m.RecordRequest("/chat", 200, time.Millisecond)
		m.RecordRateLimit()
		m.RegisterGauges(nil, nil)
	})
}

func TestRecorders(t *testing.T) {
	m := New()

	m.RecordTurn("web", "ok")
	m.RecordTurn("web", "ok")
	m.RecordFallback(FallbackSpeech)
	m.ObserveProvider("completion", time.Now(), errors.New("boom"))
	m.RecordRateLimit()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TurnsTotal.WithLabelValues("web", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues(FallbackSpeech)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderErrors.WithLabelValues("completion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitHits))
}

func TestHandlerExposesGauges(t *testing.T) {
	m := New()
	m.RegisterGauges(func() float64 { return 3 }, func() float64 { return 7 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dex_telephony_active_sessions 3")
	assert.Contains(t, rec.Body.String(), "dex_telephony_pending_cleanups 7")
}
