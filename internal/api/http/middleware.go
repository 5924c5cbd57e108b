package http

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"bora-alugar-backend/internal/cache"
	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/security"
	"bora-alugar-backend/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// recoverPanic turns a panicking handler into a 500
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "Handler panicked", "panic", rec, "stack", string(debug.Stack()))
				w.Header().Set("Connection", "close")
				writeError(w, r, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type loggingWriter struct {
	http.ResponseWriter
	status int
}

func (lw *loggingWriter) WriteHeader(code int) {
	lw.status = code
	lw.ResponseWriter.WriteHeader(code)
}

func (lw *loggingWriter) Unwrap() http.ResponseWriter {
	return lw.ResponseWriter
}

func (lw *loggingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(lw.ResponseWriter).Hijack()
}

// logRequests tags the request with an id and logs it once served
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := logger.NewContext(r.Context(), logger.Get().With("request_id", requestID))
		lw := &loggingWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(lw, r.WithContext(ctx))

		logger.HTTPRequest(ctx, r.Method, r.URL.Path, lw.status, time.Since(start))
	})
}

// Authenticator enforces the security level configured for each named route
type Authenticator struct {
	tokens   security.TokenManager
	denylist cache.TokenDenylist
}

func NewAuthenticator(tokens security.TokenManager, denylist cache.TokenDenylist) *Authenticator {
	return &Authenticator{tokens: tokens, denylist: denylist}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		level := config.GetSecurityLevel(name)
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		raw := extractToken(r)
		if raw == "" {
			writeError(w, r, fmt.Errorf("%w: authorization token is not provided", service.ErrInvalidToken))
			return
		}
		claims, err := a.tokens.ValidateToken(raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", service.ErrInvalidToken, err))
			return
		}

		revoked, err := a.denylist.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			writeError(w, r, fmt.Errorf("failed to check token revocation: %w", err))
			return
		}
		if revoked {
			writeError(w, r, fmt.Errorf("%w: token was revoked", service.ErrInvalidToken))
			return
		}

		if err := checkSecurityLevel(level, claims); err != nil {
			writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims, raw)))
	})
}

// extractToken reads the bearer token. Browsers cannot set headers on a
// websocket handshake, so the query parameter is accepted as well.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return r.URL.Query().Get("access_token")
}

func checkSecurityLevel(level config.SecurityLevel, claims *security.UserClaims) error {
	switch level {
	case config.SecurityRefresh:
		if claims.Type != security.TokenTypeRefresh {
			return fmt.Errorf("%w: refresh token required", service.ErrInvalidToken)
		}
	case config.SecurityAccess:
		if claims.Type != security.TokenTypeAccess {
			return fmt.Errorf("%w: access token required", service.ErrInvalidToken)
		}
	case config.SecurityAdmin:
		if claims.Type != security.TokenTypeAccess {
			return fmt.Errorf("%w: access token required", service.ErrInvalidToken)
		}
		if !claims.IsAdmin() {
			return fmt.Errorf("%w: admin role required", service.ErrForbidden)
		}
	}
	return nil
}

// RateLimiter keeps one token bucket per user, or per client IP when anonymous
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rate     rate.Limit
	burst    int
	trusted  []netip.Prefix
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*visitor),
		rate:     rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
	}
	for _, p := range cfg.TrustedProxies {
		prefix, err := config.ParseProxy(p)
		if err != nil {
			logger.Warn("Ignoring invalid trusted proxy", "proxy", p, "error", err)
			continue
		}
		rl.trusted = append(rl.trusted, prefix)
	}
	return rl
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	v, ok := rl.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Middleware must run after authentication so signed-in users get their own bucket
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.clientIP(r)
		if claims := claimsFrom(r.Context()); claims != nil {
			key = fmt.Sprintf("user:%d", claims.UserID)
		}
		if !rl.limiter(key).Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests", Code: "rate_limited"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Sweep forgets buckets idle for longer than maxIdle
func (rl *RateLimiter) Sweep(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for key, v := range rl.limiters {
		if time.Since(v.lastSeen) > maxIdle {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// clientIP is the socket peer. Behind trusted proxies it is the right-most
// X-Forwarded-For hop that is not itself a trusted proxy; anything further
// left was written by the client.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !rl.isTrusted(host) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !rl.isTrusted(hop) {
			return hop
		}
	}
	return host
}

func (rl *RateLimiter) isTrusted(ip string) bool {
	if len(rl.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range rl.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
