package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/doodlesbykumbi/seek-in-go/pkg/logging"
	"github.com/doodlesbykumbi/seek-in-go/pkg/model"
)

// maxLimiters bounds the per client limiters kept between cleanups
const maxLimiters = 10000

// ProxyTrust says whether a peer address is a trusted proxy
type ProxyTrust interface {
	IsTrustedProxy(ip string) bool
}

// RateLimiter limits requests per user, or per client IP for anonymous
// requests. It must run after the session middleware.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	proxies  ProxyTrust
}

// NewRateLimiter creates a RateLimiter. A non positive rate disables it.
func NewRateLimiter(requestsPerSecond, burst int, proxies ProxyTrust) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		proxies:  proxies,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Middleware answers 429 once a client exceeds its rate
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.rate <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := "ip:" + ClientIP(r, rl.proxies)
		if user := model.CurrentUser(r.Context()); user != nil {
			key = "user:" + strconv.FormatUint(uint64(user.ID), 10)
		}

		if !rl.getLimiter(key).Allow() {
			logging.Log.WithFields(logging.Fields{
				"key":    key,
				"path":   r.URL.Path,
				"method": r.Method,
			}).Warn("Rate limit exceeded")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("Rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Cleanup drops every limiter once too many clients are tracked
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.limiters) > maxLimiters {
		rl.limiters = make(map[string]*rate.Limiter)
	}
}

// StartCleanup runs Cleanup every interval until stop is closed
func (rl *RateLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}

// ClientIP is the peer address, or the first X-Forwarded-For entry when
// the peer is a trusted proxy
func ClientIP(r *http.Request, proxies ProxyTrust) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if proxies == nil || !proxies.IsTrustedProxy(host) {
		return host
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return host
}
