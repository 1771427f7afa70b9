package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nahidhasan98/changed-files/internal/errors"
	"github.com/nahidhasan98/changed-files/internal/logger"
	"github.com/nahidhasan98/changed-files/internal/models"
)

// RequestIDHeader carries the request id set by Logging
const RequestIDHeader = "X-Request-ID"

// maxClients bounds the number of rate limit buckets kept in memory. The
// least recently seen client is evicted first.
const maxClients = 10000

// Paths reachable without an API key. Webhooks authenticate by signature.
var publicPaths = map[string]bool{
	"/health":         true,
	"/webhook/gitea":  true,
	"/webhook/github": true,
}

// Middleware represents the middleware dependencies
type Middleware struct {
	log            *logger.Logger
	rateLimiter    *RateLimiter
	apiKeys        map[string]bool // Valid API keys
	trustedProxies map[string]bool // Peers allowed to report the client address
}

// RateLimiter implements a simple rate limiter using fixed one-minute windows
type RateLimiter struct {
	clients *lru.Cache[string, *ClientBucket]
	mutex   sync.Mutex

	// Rate limiting configuration
	requestsPerMinute int
	windowSize        time.Duration
	now               func() time.Time
}

// ClientBucket represents a rate limit bucket for a specific client
type ClientBucket struct {
	tokens     int
	lastRefill time.Time
}

// New creates a new middleware instance. requestsPerMinute <= 0 uses 60.
func New(log *logger.Logger, requestsPerMinute int) *Middleware {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	return &Middleware{
		log:         log,
		rateLimiter:    NewRateLimiter(requestsPerMinute, time.Minute),
		apiKeys:        make(map[string]bool),
		trustedProxies: make(map[string]bool),
	}
}

// NewRateLimiter creates a rate limiter allowing limit requests per window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return newRateLimiter(limit, window, maxClients)
}

func newRateLimiter(limit int, window time.Duration, size int) *RateLimiter {
	// lru.New only fails for a non-positive size
	clients, _ := lru.New[string, *ClientBucket](size)
	return &RateLimiter{
		clients:           clients,
		requestsPerMinute: limit,
		windowSize:        window,
		now:               time.Now,
	}
}

// SetAPIKeys sets the valid API keys for authentication. With no keys
// configured every request is accepted.
func (m *Middleware) SetAPIKeys(keys []string) {
	m.apiKeys = make(map[string]bool)
	for _, key := range keys {
		m.apiKeys[key] = true
	}
}

// SetTrustedProxies sets the peer addresses whose X-Forwarded-For and
// X-Real-IP headers are believed. Other peers are identified by their own
// address.
func (m *Middleware) SetTrustedProxies(proxies []string) {
	m.trustedProxies = make(map[string]bool)
	for _, p := range proxies {
		m.trustedProxies[strings.TrimSpace(p)] = true
	}
}

// Logging logs HTTP requests and tags each with a request id
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		// Create a custom response writer to capture the status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		m.log.With("request_id", requestID).
			With("method", r.Method).
			With("path", r.URL.Path).
			With("status", rw.statusCode).
			With("duration", time.Since(start).String()).
			With("remote_addr", r.RemoteAddr).
			With("user_agent", r.UserAgent()).
			Infof("HTTP request completed")
	})
}

// CORS adds CORS headers for cross-origin requests
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Recovery handles panics and returns a 500 error
func (m *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				m.log.Errorf("Panic in HTTP handler: %v", err)
				writeError(w, errors.New(errors.ErrCodeInternalError, "Internal Server Error"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// RateLimit applies rate limiting based on client IP address
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := m.clientIP(r)

		if !m.rateLimiter.Allow(clientIP) {
			m.log.Warnf("Rate limit exceeded for client: %s", clientIP)
			w.Header().Set("Retry-After", strconv.Itoa(int(m.rateLimiter.windowSize.Seconds())))
			writeError(w, errors.New(errors.ErrCodeTooManyRequests, "Rate limit exceeded. Please try again later."))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Allow checks if a request is allowed based on rate limiting
func (rl *RateLimiter) Allow(clientIP string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	bucket, exists := rl.clients.Get(clientIP)
	if !exists {
		bucket = &ClientBucket{
			tokens:     rl.requestsPerMinute,
			lastRefill: now,
		}
		rl.clients.Add(clientIP, bucket)
	}

	// Refill tokens once the window has elapsed
	if now.Sub(bucket.lastRefill) >= rl.windowSize {
		bucket.tokens = rl.requestsPerMinute
		bucket.lastRefill = now
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}

	return false
}

// clientIP extracts the client IP address from the request. Forwarding
// headers count only when the peer is a trusted proxy.
func (m *Middleware) clientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !m.trustedProxies[peer] {
		return peer
	}

	// Walk X-Forwarded-For from the right; entries left of the first
	// untrusted hop were written by the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !m.trustedProxies[hop] {
				return hop
			}
		}
	}

	// Check X-Real-IP header
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return peer
}

// APIKeyAuth validates API key authentication
func (m *Middleware) APIKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPaths[r.URL.Path] || len(m.apiKeys) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		// Get API key from header or query parameter
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = r.URL.Query().Get("api_key")
		}

		if apiKey == "" {
			m.log.Warnf("Missing API key from %s", m.clientIP(r))
			writeError(w, errors.Unauthorized("Missing API key"))
			return
		}

		// Validate API key using constant-time comparison
		if !m.isValidAPIKey(apiKey) {
			m.log.Warnf("Invalid API key from %s", m.clientIP(r))
			writeError(w, errors.Unauthorized("Invalid API key"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// isValidAPIKey validates API key using constant-time comparison
func (m *Middleware) isValidAPIKey(providedKey string) bool {
	for validKey := range m.apiKeys {
		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(validKey)) == 1 {
			return true
		}
	}
	return false
}

// Security adds basic security headers
func (m *Middleware) Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Disable caching for everything but health checks
		if r.URL.Path != "/health" {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}

		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, appErr *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus())
	_ = json.NewEncoder(w).Encode(&models.ErrorResponse{Error: appErr.Message, Code: string(appErr.Code)})
}

// responseWriter is a wrapper for http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
