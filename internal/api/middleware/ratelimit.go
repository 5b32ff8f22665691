package middleware

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter table; the least recently seen
// client is evicted first
const maxTrackedClients = 10000

// RateLimiter keeps a token bucket per client IP. A client may burst up to
// requests and then refills at requests per window. It runs ahead of the
// per-route auth middleware, so callers are never told apart by user.
type RateLimiter struct {
	clients *lru.Cache[string, *clientLimit]
	stop    chan struct{}
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
}

type clientLimit struct {
	lastSeen time.Time
	limiter  *rate.Limiter
}

// NewRateLimiter creates a new rate limiter
// requests: maximum number of requests allowed per window
// window: time window duration (e.g., 1 minute)
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	clients, err := lru.New[string, *clientLimit](maxTrackedClients)
	if err != nil {
		// Only fails for a non-positive size
		log.Printf("Failed to create rate limiter cache: %v", err)
		clients, _ = lru.New[string, *clientLimit](1)
	}

	rl := &RateLimiter{
		clients: clients,
		stop:    make(chan struct{}),
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
	}

	go rl.cleanup(window)

	return rl
}

// Middleware returns a rate limiting middleware
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := getClientIP(r)

		if !rl.allow(clientID) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			if err := json.NewEncoder(w).Encode(map[string]string{
				"error":   "RateLimitExceeded",
				"message": "Rate limit exceeded. Please try again later.",
			}); err != nil {
				log.Printf("Failed to encode rate limit response: %v", err)
			}
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

func (rl *RateLimiter) allow(clientID string) bool {
	rl.mu.Lock()
	client, exists := rl.clients.Get(clientID)
	if !exists {
		client = &clientLimit{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients.Add(clientID, client)
	}
	client.lastSeen = time.Now()
	limiter := client.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// cleanup drops clients idle for longer than one window
func (rl *RateLimiter) cleanup(window time.Duration) {
	ticker := time.NewTicker(window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			threshold := time.Now().Add(-window)
			rl.mu.Lock()
			for _, clientID := range rl.clients.Keys() {
				if client, ok := rl.clients.Peek(clientID); ok && client.lastSeen.Before(threshold) {
					rl.clients.Remove(clientID)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (if behind proxy); the first entry is the client
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
