package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kdos/folio/internal/metrics"
)

const (
	// idleLimiterTTL is how long an unused client bucket is kept.
	idleLimiterTTL = 10 * time.Minute

	// sweepInterval bounds how often idle buckets are looked for.
	sweepInterval = time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client address with a token bucket each.
type RateLimiter struct {
	mu         sync.Mutex
	clients    map[string]*clientLimiter
	limit      rate.Limit
	burst      int
	trustProxy bool
	metrics    *metrics.Metrics
	now        func() time.Time
	lastSweep  time.Time
}

// NewRateLimiter allows perMinute requests per client with the given burst.
// With trustProxy the address appended to X-Forwarded-For by the proxy
// identifies the client.
func NewRateLimiter(perMinute, burst int, trustProxy bool, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		clients:    make(map[string]*clientLimiter),
		limit:      rate.Limit(float64(perMinute) / time.Minute.Seconds()),
		burst:      burst,
		trustProxy: trustProxy,
		metrics:    m,
		now:        time.Now,
	}
}

// Limit rejects requests over the client's budget with 429.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r, l.trustProxy)
		if !l.allow(ip) {
			l.metrics.ObserveLogin(metrics.LoginRateLimited)
			slog.Warn("login rate limit exceeded", "remote_addr", ip)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Too many login attempts")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweep(now)
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// sweep drops buckets idle for longer than idleLimiterTTL. Callers hold mu.
func (l *RateLimiter) sweep(now time.Time) {
	for k, c := range l.clients {
		if now.Sub(c.lastSeen) > idleLimiterTTL {
			delete(l.clients, k)
		}
	}
	l.lastSweep = now
}

// ClientIP returns the address of the client that sent r.
// With trustProxy it is the rightmost X-Forwarded-For entry: proxies append
// to the header, so every entry left of it is client-controlled.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if values := r.Header.Values("X-Forwarded-For"); len(values) > 0 {
			last := values[len(values)-1]
			if i := strings.LastIndexByte(last, ','); i >= 0 {
				last = last[i+1:]
			}
			if ip := strings.TrimSpace(last); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
