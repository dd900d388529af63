package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/EasterCompany/dex-telephony-service/cache"
	"github.com/EasterCompany/dex-telephony-service/cleanup"
	"github.com/EasterCompany/dex-telephony-service/config"
	"github.com/EasterCompany/dex-telephony-service/conversation"
	"github.com/EasterCompany/dex-telephony-service/endpoints"
	"github.com/EasterCompany/dex-telephony-service/health"
	logger "github.com/EasterCompany/dex-telephony-service/log"
	"github.com/EasterCompany/dex-telephony-service/metrics"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Fatal error loading config: %v", err)
	}

	// 2. Connect to Redis (optional)
	redisClient, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		log.Printf("[WARN] %v; falling back to in-memory sessions", err)
		redisClient = nil
	}

	// 3. Initialize Logger
	if err := logger.Init(logger.Sinks{Redis: redisClient, Discord: cfg.Discord}); err != nil {
		log.Printf("[WARN] Could not initialize log sinks: %v", err)
	}

	// 4. Perform Boot-time Cleanup
	performCleanup(cfg)

	// 5. Initialize Providers and Services
	janitor := cleanup.NewJanitor()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unrecovered panic in main", fmt.Errorf("%v", r))
			res := janitor.FlushAll()
			log.Printf("[JANITOR] %s: %d (%s)", res.Name, res.Count, res.Description)
			logger.Close()
			os.Exit(1)
		}
	}()

	svc, err := newServices(ctx, cfg, redisClient)
	if err != nil {
		logger.Fatal("Could not initialize services", err)
	}

	m := metrics.New()
	orchestrator := conversation.New(conversation.Deps{
		Config:     cfg,
		Store:      svc.store,
		Completer:  svc.completer,
		Corrector:  svc.corrector,
		Speaker:    svc.speaker,
		Translator: svc.translator,
		Janitor:    janitor,
		Events:     svc.events,
		Metrics:    m,
	})
	m.RegisterGauges(
		func() float64 {
			n, err := svc.store.Count(context.Background())
			if err != nil {
				return 0
			}
			return float64(n)
		},
		func() float64 { return float64(janitor.Pending()) },
	)
	reporter := health.NewReporter(cfg, svc.store, janitor, orchestrator, redisClient)

	// 6. Final Health Check
	performHealthCheck(ctx, reporter)

	// 7. Serve HTTP until a shutdown signal
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: endpoints.NewServer(endpoints.Deps{
			Config:       cfg,
			Conversation: orchestrator,
			Transcriber:  svc.transcriber,
			Translator:   svc.translator,
			Caller:       svc.caller,
			Speaker:      svc.speaker,
			Janitor:      janitor,
			Health:       reporter,
			Metrics:      m,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := serve(ctx, srv); err != nil {
		logger.Error("HTTP server stopped", err)
	}

	// Cleanly close down
	res := janitor.FlushAll()
	log.Printf("[JANITOR] %s: %d (%s)", res.Name, res.Count, res.Description)
	if err := svc.Close(); err != nil {
		logger.Error("Error closing services", err)
	}
	fmt.Println("\nTelephony service shutting down.")
	logger.Close()
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Telephony service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// performCleanup removes artifacts left behind by a previous run.
func performCleanup(cfg *config.Config) {
	if err := os.MkdirAll(cfg.Server.AudioDir, 0o755); err != nil {
		logger.Error("Could not create audio directory", err)
		return
	}
	res := cleanup.SweepOrphans(cfg.Server.AudioDir)
	log.Printf("Cleanup complete: %s: %d", res.Name, res.Count)
}

// performHealthCheck logs the boot status summary.
func performHealthCheck(ctx context.Context, reporter *health.Reporter) {
	st := reporter.Report(ctx)

	var providers []string
	for name, ok := range st.Providers {
		mark := "off"
		if ok {
			mark = "on"
		}
		providers = append(providers, fmt.Sprintf("%s=%s", name, mark))
	}

	sort.Strings(providers)

	statusFields := []string{
		fmt.Sprintf("status=%s", st.Status),
		fmt.Sprintf("env=%s", st.Environment),
		fmt.Sprintf("persona=%s", st.Persona),
		fmt.Sprintf("voice=%s", st.Voice),
		fmt.Sprintf("redis=%s", st.Redis),
		fmt.Sprintf("cpu=%.2f%%", st.System.CPUPercent),
		fmt.Sprintf("mem=%.2f%%", st.System.MemoryPercent),
	}
	log.Printf("[HEALTH] %s providers[%s]", strings.Join(statusFields, " "), strings.Join(providers, " "))
}
