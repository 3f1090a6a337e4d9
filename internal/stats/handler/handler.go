package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agenghermawan/clandestineproject/internal/stats"
	"github.com/agenghermawan/clandestineproject/pkg/platform/httputil"
)

// Source provides the current dashboard state.
type Source interface {
	Snapshot() stats.Snapshot
}

type Handler struct {
	source Source
}

func New(source Source) *Handler {
	return &Handler{source: source}
}

// Register mounts the dashboard statistics endpoint.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/special-one/stats", h.HandleStats)
}

// HandleStats handles GET /api/special-one/stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.source.Snapshot())
}
