// Package health assembles the status summary served on /health.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/EasterCompany/dex-telephony-service/cache"
	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/EasterCompany/dex-telephony-service/session"
	"github.com/EasterCompany/dex-telephony-service/system"
)

// Version is stamped at build time with -ldflags "-X .../health.Version=...".
var Version = "dev"

// Status is the JSON body of /health.
type Status struct {
	Status          string          `json:"status"`
	Version         string          `json:"version"`
	Environment     string          `json:"environment"`
	Uptime          string          `json:"uptime"`
	Providers       map[string]bool `json:"providers"`
	Redis           string          `json:"redis"`
	Persona         string          `json:"persona"`
	Voice           string          `json:"voice"`
	ActiveSessions  int             `json:"activeSessions"`
	ActiveCalls     int             `json:"activeCalls"`
	PendingCleanups int             `json:"pendingCleanups"`
	System          system.Usage    `json:"system"`
	Timestamp       time.Time       `json:"timestamp"`
}

type pendingCounter interface {
	Pending() int
}

type callCounter interface {
	ActiveCalls() int
}

// Reporter gathers the pieces of a Status.
type Reporter struct {
	cfg      *config.Config
	started  time.Time
	sessions session.Store
	janitor  pendingCounter
	calls    callCounter
	redis    *cache.Client
	sample   func() (system.Usage, error)
}

// NewReporter returns a Reporter. redis may be nil when Redis is not configured.
func NewReporter(cfg *config.Config, sessions session.Store, janitor pendingCounter, calls callCounter, redis *cache.Client) *Reporter {
	return &Reporter{
		cfg:      cfg,
		started:  time.Now(),
		sessions: sessions,
		janitor:  janitor,
		calls:    calls,
		redis:    redis,
		sample:   system.Sample,
	}
}

// Providers reports which external collaborators have usable configuration.
func Providers(cfg *config.Config) map[string]bool {
	return map[string]bool{
		"llm":       cfg.LLMConfigured(),
		"stt":       cfg.STTConfigured(),
		"tts":       cfg.TTSConfigured(),
		"translate": cfg.TranslateConfigured(),
		"twilio":    cfg.TwilioConfigured(),
		"publicUrl": cfg.Server.PublicBaseURL != "",
	}
}

// GetCacheStatus checks and returns the status of the Redis connection.
func GetCacheStatus(ctx context.Context, c *cache.Client, cfg config.RedisConfig) string {
	if cfg.Addr == "" {
		return "not configured"
	}
	if c == nil {
		return "error: initialization failed"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return "ok"
}

// Report builds the current status. Degraded sub-checks never fail the report.
func (r *Reporter) Report(ctx context.Context) Status {
	st := Status{
		Status:      "ok",
		Version:     Version,
		Environment: r.cfg.Server.Environment,
		Uptime:      time.Since(r.started).Round(time.Second).String(),
		Providers:   Providers(r.cfg),
		Redis:       GetCacheStatus(ctx, r.redis, r.cfg.Redis),
		Persona:     r.cfg.Persona,
		Voice:       r.cfg.Voice,
		Timestamp:   time.Now().UTC(),
	}
	if r.sessions != nil {
		if n, err := r.sessions.Count(ctx); err == nil {
			st.ActiveSessions = n
		} else {
			st.Status = "degraded"
		}
	}
	if r.calls != nil {
		st.ActiveCalls = r.calls.ActiveCalls()
	}
	if r.janitor != nil {
		st.PendingCleanups = r.janitor.Pending()
	}
	if usage, err := r.sample(); err == nil {
		st.System = usage
	}
	if st.Redis != "ok" && st.Redis != "not configured" {
		st.Status = "degraded"
	}
	return st
}
