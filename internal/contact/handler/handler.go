package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agenghermawan/clandestineproject/internal/contact"
	dErrors "github.com/agenghermawan/clandestineproject/pkg/domain-errors"
	"github.com/agenghermawan/clandestineproject/pkg/platform/httputil"
)

// Service delivers contact submissions.
type Service interface {
	Submit(ctx context.Context, sub contact.Submission) error
}

// Handler serves POST /api/contact. Its error body is {"error": "<text>"},
// the shape the contact page displays.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the contact endpoint. Rate limiting is applied by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/contact", h.HandleSubmit)
}

// HandleSubmit handles POST /api/contact.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var sub contact.Submission
	if err := httputil.DecodeJSON(r, &sub); err != nil {
		writeContactError(w, err)
		return
	}
	if err := h.service.Submit(r.Context(), sub); err != nil {
		writeContactError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func writeContactError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	msg := "Failed to send message"
	if de, ok := dErrors.As(err); ok && de.Message != "" {
		msg = de.Message
	}
	httputil.WriteJSON(w, dErrors.HTTPStatus(code), ErrorResponse{Error: msg})
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
