package endpoints

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	logger "github.com/EasterCompany/dex-telephony-service/log"
	"github.com/EasterCompany/dex-telephony-service/tts"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type ctxKeyRequestID struct{}

// RequestIDFrom returns the request ID assigned by the middleware.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID{}, id)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := routeLabel(r.URL.Path)
		s.Metrics.RecordRequest(route, sw.status, time.Since(start))
		if route == "/health" || route == "/metrics" {
			return
		}
		log.Printf("[HTTP] %s %s %d %s id=%s", r.Method, r.URL.Path, sw.status,
			time.Since(start).Round(time.Millisecond), RequestIDFrom(r.Context()))
	})
}

// recoverPanics turns a handler panic into a 500; the process keeps serving.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.Error(fmt.Sprintf("Panic serving %s %s", r.Method, r.URL.Path),
					fmt.Errorf("%v\n%s", v, debug.Stack()))
				s.internalError(w, fmt.Errorf("panic: %v", v))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if exemptFromLimit(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if !s.limiter.allow(clientIP(r), time.Now()) {
			s.Metrics.RecordRateLimit()
			w.Header().Set("Retry-After", "1")
			writeJSONError(w, http.StatusTooManyRequests, ErrTypeRateLimit, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// exemptFromLimit covers probes and the artifact fetches Twilio makes mid-call.
func exemptFromLimit(path string) bool {
	return path == "/health" || path == "/metrics" || strings.HasPrefix(path, tts.AudioRoute)
}

// clientIP prefers the first X-Forwarded-For hop, as the relay normally runs behind a tunnel.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

const (
	limiterMaxEntries = 10_000
	limiterEntryTTL   = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client address.
type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

// newIPLimiter returns nil (no limiting) when rps is not positive.
func newIPLimiter(rps float64, burst int) *ipLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &ipLimiter{visitors: make(map[string]*visitor), rps: rate.Limit(rps), burst: burst}
}

func (l *ipLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		if len(l.visitors) >= limiterMaxEntries {
			l.evict(now)
		}
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *ipLimiter) evict(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterEntryTTL {
			delete(l.visitors, ip)
		}
	}
}
