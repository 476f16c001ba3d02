package http

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fixora/assetdash/internal/domain"
	"github.com/fixora/assetdash/internal/logger"
	"github.com/fixora/assetdash/internal/observability"
	"github.com/fixora/assetdash/internal/ports"
)

// CorrelationIDHeader carries the request correlation id
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationIDMiddleware ensures every request and response carries a correlation ID
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(CorrelationIDHeader)
		if cid == "" {
			cid = uuid.NewString()
		}
		w.Header().Set(CorrelationIDHeader, cid)
		next.ServeHTTP(w, r.WithContext(logger.WithCorrelationID(r.Context(), cid)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// RequestLoggingMiddleware logs method, path, status and duration of every request
func RequestLoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.status,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_ip":   clientIP(r, false),
			}
			if rec.status >= http.StatusInternalServerError {
				log.Warn(r.Context(), "HTTP request failed", fields)
				return
			}
			log.Info(r.Context(), "HTTP request", fields)
		})
	}
}

// RateLimitMiddleware limits requests per staff member, or per client IP for
// anonymous callers. Limiter failures let the request through.
type RateLimitMiddleware struct {
	limiter  ports.RateLimiter
	identity ports.IdentityProvider
	logger   logger.Logger
	metrics  *observability.Metrics
	limit    int
	window   time.Duration

	trustProxy bool
}

// RateLimitOption configures a RateLimitMiddleware
type RateLimitOption func(*RateLimitMiddleware)

// TrustProxyHeaders keys anonymous callers by X-Forwarded-For or X-Real-IP.
// Enable only behind a proxy that overwrites those headers.
func TrustProxyHeaders(trust bool) RateLimitOption {
	return func(m *RateLimitMiddleware) {
		m.trustProxy = trust
	}
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(
	limiter ports.RateLimiter,
	identity ports.IdentityProvider,
	log logger.Logger,
	metrics *observability.Metrics,
	limit int,
	window time.Duration,
	opts ...RateLimitOption,
) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		limiter:  limiter,
		identity: identity,
		logger:   log,
		metrics:  metrics,
		limit:    limit,
		window:   window,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RateLimit wraps next with the limiter
func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := m.key(r)

		allowed, err := m.limiter.Allow(ctx, key, m.limit, m.window)
		if err != nil {
			m.logger.Error(ctx, "Failed to check rate limit", err, map[string]interface{}{
				"key": key,
			})
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			if m.metrics != nil {
				m.metrics.RateLimitedTotal.Inc()
			}
			logger.LogSecurityEvent(ctx, m.logger, "rate_limit_exceeded", "MEDIUM", map[string]interface{}{
				"key":       key,
				"path":      r.URL.Path,
				"userAgent": r.UserAgent(),
			})
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(m.window.Seconds())))
			writeError(w, domain.ErrRateLimited)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) key(r *http.Request) string {
	if m.identity != nil {
		if staff, err := m.identity.CurrentStaff(r); err == nil && staff != nil {
			return "staff:" + staff.ID
		}
	}
	return "ip:" + clientIP(r, m.trustProxy)
}

// clientIP extracts the caller address. Proxy headers are read only when trusted.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			ips := strings.Split(xff, ",")
			return strings.TrimSpace(ips[0])
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// recoveryLogger adapts Logger to the gorilla/handlers recovery logger
type recoveryLogger struct {
	logger logger.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error(context.Background(), "Panic recovered", fmt.Errorf("%s", fmt.Sprint(v...)), nil)
}
