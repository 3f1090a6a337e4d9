package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agenghermawan/clandestineproject/internal/admin"
	"github.com/agenghermawan/clandestineproject/internal/audit"
	"github.com/agenghermawan/clandestineproject/internal/backend"
	"github.com/agenghermawan/clandestineproject/internal/proxy"
	dErrors "github.com/agenghermawan/clandestineproject/pkg/domain-errors"
	"github.com/agenghermawan/clandestineproject/pkg/platform/httputil"
	metadata "github.com/agenghermawan/clandestineproject/pkg/platform/middleware/metadata"
	"github.com/agenghermawan/clandestineproject/pkg/requestcontext"
)

const (
	routePrefix = "/api/special-one"

	defaultPage = "1"
	defaultSize = "10"

	maxAuditLimit = 500
)

// Auditor records admin actions.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

// roleChange describes one of the two role toggles.
type roleChange struct {
	suffix         string
	action         audit.Action
	successMessage string
	failureMessage string
}

var (
	makeAdmin = roleChange{
		suffix:         "/make-admin",
		action:         audit.ActionUserPromoted,
		successMessage: "User promoted to admin",
		failureMessage: "Failed to make user admin",
	}
	removeAdmin = roleChange{
		suffix:         "/remove-admin",
		action:         audit.ActionUserDemoted,
		successMessage: "User removed from admin",
		failureMessage: "Failed to remove user admin",
	}
)

// Handler serves the /api/special-one user-management routes.
type Handler struct {
	backend proxy.Forwarder
	auditor Auditor
	logger  *slog.Logger
}

func New(backend proxy.Forwarder, auditor Auditor, logger *slog.Logger) *Handler {
	return &Handler{backend: backend, auditor: auditor, logger: logger}
}

// Register mounts user-management endpoints under /api/special-one.
func (h *Handler) Register(r chi.Router) {
	r.Get(routePrefix+"/users", h.HandleListUsers)
	r.Post(routePrefix+"/create-user", h.HandleCreateUser)
	r.Get(routePrefix+"/users/{id}", h.HandleGetUser)
	r.Put(routePrefix+"/users/{id}", h.HandleUpdateUser)
	r.Delete(routePrefix+"/users/{id}", h.HandleDeleteUser)
	r.Post(routePrefix+"/users/{id}/make-admin", h.HandleMakeAdmin)
	r.Post(routePrefix+"/users/{id}/remove-admin", h.HandleRemoveAdmin)
	r.Get(routePrefix+"/audit", h.HandleListAudit)
}

// HandleListUsers handles GET /api/special-one/users with page, size and
// search defaults applied.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	in := r.URL.Query()
	query := url.Values{}
	query.Set("page", valueOr(in.Get("page"), defaultPage))
	query.Set("size", valueOr(in.Get("size"), defaultSize))
	query.Set("search", in.Get("search"))

	proxy.Pass(w, r, h.backend, h.logger, backend.Request{
		Method: http.MethodGet,
		Path:   "/admin/users",
		Query:  query,
	})
}

// HandleCreateUser handles POST /api/special-one/create-user. The body is
// checked for username and email, then relayed as sent.
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	body, err := proxy.ReadBody(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var in admin.UserInput
	if err := json.Unmarshal(body, &in); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	if err := in.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp, ok := h.forward(w, r, backend.Request{
		Method: http.MethodPost,
		Path:   "/admin/users",
		Body:   body,
	})
	if !ok {
		return
	}
	h.record(r, audit.ActionUserCreated, userIDFrom(resp), resp.StatusCode)
	proxy.Relay(w, resp)
}

// HandleGetUser handles GET /api/special-one/users/{id}.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	proxy.Pass(w, r, h.backend, h.logger, backend.Request{
		Method: http.MethodGet,
		Path:   "/admin/users/" + url.PathEscape(id),
		Route:  "/admin/users/{id}",
	})
}

// HandleUpdateUser handles PUT /api/special-one/users/{id}.
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := proxy.ReadBody(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp, ok := h.forward(w, r, backend.Request{
		Method: http.MethodPut,
		Path:   "/admin/users/" + url.PathEscape(id),
		Route:  "/admin/users/{id}",
		Body:   body,
	})
	if !ok {
		return
	}
	h.record(r, audit.ActionUserUpdated, id, resp.StatusCode)
	proxy.Relay(w, resp)
}

// HandleDeleteUser handles DELETE /api/special-one/users/{id}.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	resp, ok := h.forward(w, r, backend.Request{
		Method: http.MethodDelete,
		Path:   "/admin/users/" + url.PathEscape(id),
		Route:  "/admin/users/{id}",
	})
	if !ok {
		return
	}
	h.record(r, audit.ActionUserDeleted, id, resp.StatusCode)
	proxy.Relay(w, resp)
}

// HandleMakeAdmin handles POST /api/special-one/users/{id}/make-admin.
func (h *Handler) HandleMakeAdmin(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, makeAdmin)
}

// HandleRemoveAdmin handles POST /api/special-one/users/{id}/remove-admin.
func (h *Handler) HandleRemoveAdmin(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, removeAdmin)
}

// changeRole wraps the backend answer: failures keep the backend status
// with its message (or a fixed one), successes get a confirmation message
// with the backend body under "data".
func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request, change roleChange) {
	id := chi.URLParam(r, "id")
	resp, ok := h.forward(w, r, backend.Request{
		Method: http.MethodPost,
		Path:   "/admin/users/" + url.PathEscape(id) + change.suffix,
		Route:  "/admin/users/{id}" + change.suffix,
	})
	if !ok {
		return
	}
	h.record(r, change.action, id, resp.StatusCode)

	if !resp.OK() {
		httputil.WriteMessage(w, resp.StatusCode, valueOr(resp.Message(), change.failureMessage))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RoleChangeResponse{
		Message: change.successMessage,
		Data:    resp.Body,
	})
}

// HandleListAudit handles GET /api/special-one/audit?limit=N.
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer"))
			return
		}
		limit = min(n, maxAuditLimit)
	}
	events, err := h.auditor.Recent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list audit events",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, AuditListResponse{Data: events})
}

func (h *Handler) forward(w http.ResponseWriter, r *http.Request, req backend.Request) (*backend.Response, bool) {
	ctx := r.Context()
	resp, err := h.backend.Forward(ctx, proxy.WithToken(ctx, req))
	if err != nil {
		h.logger.ErrorContext(ctx, "admin backend call failed",
			"method", req.Method,
			"route", req.Route,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return nil, false
	}
	return resp, true
}

func (h *Handler) record(r *http.Request, action audit.Action, targetID string, status int) {
	ctx := r.Context()
	actor := requestcontext.Subject(ctx)
	if actor == "" {
		actor = "anonymous"
	}
	event := audit.Event{
		Action:       action,
		ActorID:      actor,
		TargetUserID: targetID,
		RequestID:    requestcontext.RequestID(ctx),
		ClientIP:     metadata.GetClientIP(ctx),
		Device:       metadata.DeviceSummary(metadata.GetUserAgent(ctx)),
		Outcome:      status,
	}
	if err := h.auditor.Emit(ctx, event); err != nil {
		h.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", action,
			"request_id", event.RequestID,
			"error", err,
		)
	}
}

// userIDFrom pulls data._id from a create-user answer.
func userIDFrom(resp *backend.Response) string {
	var env admin.UserEnvelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return ""
	}
	return env.Data.ID
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
