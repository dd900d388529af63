package health

import (
	"context"
	"errors"
	"testing"

	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/EasterCompany/dex-telephony-service/session"
	"github.com/EasterCompany/dex-telephony-service/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCount int

func (f fixedCount) Pending() int     { return int(f) }
func (f fixedCount) ActiveCalls() int { return int(f) }

func TestReport(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "sk"
	cfg.TTS.APIKey = "sv"
	store := session.NewMemoryStore()
	_, err := store.Create(context.Background(), "CA1", session.Turn{Role: session.RoleSystem, Content: "p"})
	require.NoError(t, err)

	r := NewReporter(cfg, store, fixedCount(4), fixedCount(1), nil)
	r.sample = func() (system.Usage, error) { return system.Usage{CPUPercent: 12.5, MemoryPercent: 40}, nil }

	st := r.Report(context.Background())

	assert.Equal(t, "ok", st.Status)
	assert.Equal(t, Version, st.Version)
	assert.Equal(t, "not configured", st.Redis)
	assert.Equal(t, 1, st.ActiveSessions)
	assert.Equal(t, 1, st.ActiveCalls)
	assert.Equal(t, 4, st.PendingCleanups)
	assert.Equal(t, 12.5, st.System.CPUPercent)
	assert.True(t, st.Providers["llm"])
	assert.True(t, st.Providers["tts"])
	assert.False(t, st.Providers["twilio"])
	assert.False(t, st.Providers["stt"])
}

func TestReport_SampleErrorIsTolerated(t *testing.T) {
	r := NewReporter(config.Default(), nil, nil, nil, nil)
	r.sample = func() (system.Usage, error) { return system.Usage{}, errors.New("no /proc") }

	st := r.Report(context.Background())

	assert.Equal(t, "ok", st.Status)
	assert.Zero(t, st.System.CPUPercent)
}

func TestGetCacheStatus_ConfiguredButMissing(t *testing.T) {
	assert.Equal(t, "error: initialization failed",
		GetCacheStatus(context.Background(), nil, config.RedisConfig{Addr: "localhost:6379"}))
}
