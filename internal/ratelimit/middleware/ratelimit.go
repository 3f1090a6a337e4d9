package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/agenghermawan/clandestineproject/internal/ratelimit/metrics"
	"github.com/agenghermawan/clandestineproject/internal/ratelimit/models"
	"github.com/agenghermawan/clandestineproject/pkg/platform/httputil"
	metadata "github.com/agenghermawan/clandestineproject/pkg/platform/middleware/metadata"
	request "github.com/agenghermawan/clandestineproject/pkg/platform/middleware/request"
	"github.com/agenghermawan/clandestineproject/pkg/requestcontext"
)

const exceededMessage = "Too many requests. Please try again later."

// Store is implemented by the bucket stores.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

// KeyFunc picks the bucket a request counts against. An empty key skips
// limiting for that request.
type KeyFunc func(r *http.Request) string

type Middleware struct {
	store    Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
	now      func() time.Time
}

type Option func(*Middleware)

func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(met *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = met
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Middleware) {
		m.now = now
	}
}

func New(store Store, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ByClientIP keys requests by the address ClientMetadata resolved.
func ByClientIP(r *http.Request) string {
	ip := metadata.GetClientIP(r.Context())
	if ip == "" {
		ip = metadata.ClientIPFromRequest(r, nil)
	}
	if ip == "" {
		return ""
	}
	return "ip:" + ip
}

// BySubject keys requests by token subject, falling back to client IP for
// anonymous callers.
func BySubject(r *http.Request) string {
	if sub := requestcontext.Subject(r.Context()); sub != "" {
		return "sub:" + sub
	}
	return ByClientIP(r)
}

// Limit enforces rule on every request passing through, bucketed by key.
func (m *Middleware) Limit(rule models.Rule, key KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.disabled || m.store == nil || rule.Limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := m.store.Allow(ctx, rule.Name+":"+k, rule.Limit, rule.Window)
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed, allowing request",
					"error", err,
					"rule", rule.Name,
					"request_id", request.GetRequestID(ctx),
				)
				if m.metrics != nil {
					m.metrics.StoreError(rule.Name)
				}
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				if m.metrics != nil {
					m.metrics.Denied(rule.Name)
				}
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"rule", rule.Name,
					"path", r.URL.Path,
					"request_id", request.GetRequestID(ctx),
				)
				writeRateLimitExceeded(w, result.RetryAfter(m.now()))
				return
			}
			if m.metrics != nil {
				m.metrics.Allowed(rule.Name)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    exceededMessage,
		RetryAfter: retryAfter,
	})
}
