package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/agenghermawan/clandestineproject/internal/backend"
	"github.com/agenghermawan/clandestineproject/internal/proxy"
	"github.com/agenghermawan/clandestineproject/pkg/platform/httputil"
	"github.com/agenghermawan/clandestineproject/pkg/requestcontext"
)

// BreachFetchFailedMessage replaces the backend body when /my-breach fails.
const BreachFetchFailedMessage = "Failed to fetch breach data"

// searchParams are the only query keys relayed to the backend search.
var searchParams = []string{"q", "type", "page", "size"}

// Handler serves the leak search routes. Both require a session token; the
// router puts token.Require in front of them.
type Handler struct {
	backend proxy.Forwarder
	logger  *slog.Logger
}

func New(backend proxy.Forwarder, logger *slog.Logger) *Handler {
	return &Handler{backend: backend, logger: logger}
}

// Register mounts leak endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/leaks", h.HandleSearch)
	r.Get("/api/leaks/get-limit", h.HandleGetLimit)
}

// HandleSearch handles GET /api/leaks by relaying q, type, page and size to
// the backend search.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	in := r.URL.Query()
	query := url.Values{}
	for _, key := range searchParams {
		if v := in.Get(key); v != "" {
			query.Set(key, v)
		}
	}

	h.logger.DebugContext(r.Context(), "leak search",
		"request_id", requestcontext.RequestID(r.Context()),
		"type", query.Get("type"),
		"page", query.Get("page"),
	)
	proxy.Pass(w, r, h.backend, h.logger, backend.Request{
		Method: http.MethodGet,
		Path:   "/search",
		Query:  query,
	})
}

// HandleGetLimit handles GET /api/leaks/get-limit. Unlike search, a failed
// backend answer is replaced by a fixed message while keeping its status.
func (h *Handler) HandleGetLimit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp, err := h.backend.Forward(ctx, proxy.WithToken(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "/my-breach",
	}))
	if err != nil {
		h.logger.ErrorContext(ctx, "breach limit lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if !resp.OK() {
		httputil.WriteMessage(w, resp.StatusCode, BreachFetchFailedMessage)
		return
	}
	proxy.Relay(w, resp)
}
