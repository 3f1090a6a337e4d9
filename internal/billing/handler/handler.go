package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/agenghermawan/clandestineproject/internal/backend"
	"github.com/agenghermawan/clandestineproject/internal/billing"
	"github.com/agenghermawan/clandestineproject/internal/proxy"
	"github.com/agenghermawan/clandestineproject/pkg/platform/httputil"
	"github.com/agenghermawan/clandestineproject/pkg/requestcontext"
)

// PaymentsFetchFailedMessage matches what the payments page shows.
const PaymentsFetchFailedMessage = "Failed to fetch payments"

var (
	paymentRequest = backend.Request{Method: http.MethodGet, Path: "/my-payment"}
	planRequest    = backend.Request{Method: http.MethodGet, Path: "/my-plan"}
)

// Handler serves the caller's own billing routes.
type Handler struct {
	backend proxy.Forwarder
	logger  *slog.Logger
	now     func() time.Time
}

func New(backend proxy.Forwarder, logger *slog.Logger) *Handler {
	return &Handler{backend: backend, logger: logger, now: time.Now}
}

// Register mounts billing endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/my-payment", h.HandleMyPayment)
	r.Get("/api/my-plan", h.HandleMyPlan)
	r.Get("/api/my-overview", h.HandleOverview)
}

// HandleMyPayment handles GET /api/my-payment.
func (h *Handler) HandleMyPayment(w http.ResponseWriter, r *http.Request) {
	proxy.Pass(w, r, h.backend, h.logger, paymentRequest)
}

// HandleMyPlan handles GET /api/my-plan.
func (h *Handler) HandleMyPlan(w http.ResponseWriter, r *http.Request) {
	proxy.Pass(w, r, h.backend, h.logger, planRequest)
}

// HandleOverview handles GET /api/my-overview: payments and plan fetched in
// parallel, plus the derived plan summary. A failed payments call fails the
// whole overview; a failed plan call leaves plan and summary null.
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payments, plan *backend.Response
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := h.backend.Forward(gctx, proxy.WithToken(ctx, paymentRequest))
		payments = resp
		return err
	})
	g.Go(func() error {
		resp, err := h.backend.Forward(gctx, proxy.WithToken(ctx, planRequest))
		if err != nil {
			h.logger.WarnContext(ctx, "plan lookup failed for overview",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			return nil
		}
		plan = resp
		return nil
	})
	if err := g.Wait(); err != nil {
		h.logger.ErrorContext(ctx, "payments lookup failed for overview",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if !payments.OK() {
		msg := payments.Message()
		if msg == "" {
			msg = PaymentsFetchFailedMessage
		}
		httputil.WriteMessage(w, payments.StatusCode, msg)
		return
	}

	out := OverviewResponse{Payments: []PaymentView{}}
	var paymentEnv struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payments.Body, &paymentEnv); err == nil {
		for _, raw := range paymentEnv.Data {
			out.Payments = append(out.Payments, h.toPaymentView(ctx, raw))
		}
	}

	if plan != nil && plan.OK() {
		var planEnv struct {
			Data json.RawMessage `json:"data"`
		}
		var p billing.Plan
		if err := json.Unmarshal(plan.Body, &planEnv); err == nil && len(planEnv.Data) > 0 && string(planEnv.Data) != "null" {
			if err := json.Unmarshal(planEnv.Data, &p); err == nil {
				summary := billing.Summarize(p, h.now())
				out.Plan = planEnv.Data
				out.Summary = &summary
			}
		}
	}

	httputil.WriteJSON(w, http.StatusOK, out)
}

// toPaymentView keeps the raw record either way. A record that does not fit
// billing.Payment gets the defaults (one domain, normal checkout) and a debug
// log, so one odd entry does not hide the rest of the list.
func (h *Handler) toPaymentView(ctx context.Context, raw json.RawMessage) PaymentView {
	var p billing.Payment
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.DebugContext(ctx, "malformed payment record in overview",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		p = billing.Payment{}
	}
	return PaymentView{
		Record:              raw,
		ForceRegisterDomain: p.ForceRegisterDomain(),
		DomainLimit:         p.DomainLimit(),
	}
}
