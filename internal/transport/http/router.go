package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "github.com/agenghermawan/clandestineproject/internal/admin/handler"
	billinghandler "github.com/agenghermawan/clandestineproject/internal/billing/handler"
	contacthandler "github.com/agenghermawan/clandestineproject/internal/contact/handler"
	leakshandler "github.com/agenghermawan/clandestineproject/internal/leaks/handler"
	"github.com/agenghermawan/clandestineproject/internal/platform/metrics"
	"github.com/agenghermawan/clandestineproject/internal/proxy"
	ratelimit "github.com/agenghermawan/clandestineproject/internal/ratelimit/middleware"
	rlmodels "github.com/agenghermawan/clandestineproject/internal/ratelimit/models"
	statshandler "github.com/agenghermawan/clandestineproject/internal/stats/handler"
	"github.com/agenghermawan/clandestineproject/pkg/platform/httputil"
	metadata "github.com/agenghermawan/clandestineproject/pkg/platform/middleware/metadata"
	request "github.com/agenghermawan/clandestineproject/pkg/platform/middleware/request"
	"github.com/agenghermawan/clandestineproject/pkg/platform/middleware/requesttime"
	"github.com/agenghermawan/clandestineproject/pkg/platform/middleware/token"
)

// HealthCheck reports whether an optional dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps is everything the router mounts. Nil optional fields switch the
// matching feature off.
type Deps struct {
	Logger     *slog.Logger
	CookieName string

	// TrustedProxies are the peers whose X-Forwarded-For is believed.
	TrustedProxies []netip.Prefix

	Backend proxy.Forwarder
	Auditor adminhandler.Auditor
	Contact contacthandler.Service
	Stats   statshandler.Source

	Limiter     *ratelimit.Middleware
	ContactRule rlmodels.Rule
	SearchRule  rlmodels.Rule

	Metrics      *metrics.Metrics
	HealthChecks map[string]HealthCheck
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewRouter wires all public endpoints.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(request.Logger(d.Logger))
	r.Use(metadata.ClientMetadata(d.TrustedProxies))
	r.Use(requesttime.Middleware)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(token.FromCookie(d.CookieName))

	r.Get("/health", healthHandler(d.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(d.Limiter.Limit(d.ContactRule, ratelimit.ByClientIP))
		}
		contacthandler.New(d.Contact, d.Logger).Register(r)
	})

	// Admin routes relay whatever session the caller holds; the backend
	// decides whether it belongs to an administrator.
	adminhandler.New(d.Backend, d.Auditor, d.Logger).Register(r)

	r.Group(func(r chi.Router) {
		r.Use(token.Require(d.Logger))
		r.Group(func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(d.Limiter.Limit(d.SearchRule, ratelimit.BySubject))
			}
			leakshandler.New(d.Backend, d.Logger).Register(r)
		})
		billinghandler.New(d.Backend, d.Logger).Register(r)
		statshandler.New(d.Stats).Register(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteMessage(w, http.StatusNotFound, "Not found")
	})
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
