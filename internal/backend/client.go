// Package backend forwards gateway calls to the external data backend. The
// backend owns every piece of data; this client only carries the caller's
// bearer token across and hands the JSON answer back untouched.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agenghermawan/clandestineproject/internal/backend/metrics"
	dErrors "github.com/agenghermawan/clandestineproject/pkg/domain-errors"
	"github.com/agenghermawan/clandestineproject/pkg/platform/sentinel"
	"github.com/agenghermawan/clandestineproject/pkg/platform/circuit"
	"github.com/agenghermawan/clandestineproject/pkg/requestcontext"
)

const maxBodyBytes = 10 << 20

// Request is one call to the backend.
type Request struct {
	Method string
	Path   string
	// Route is the low-cardinality label used for metrics and spans, e.g.
	// "/admin/users/{id}". Defaults to Path.
	Route string
	Query url.Values
	Body  []byte
	Token string
}

// Response is the backend's answer. Body is always valid JSON.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Message returns the backend's "message" field when it sent one.
func (r *Response) Message() string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &env); err != nil {
		return ""
	}
	return env.Message
}

// Client talks to the backend over plain HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuit.Breaker
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New builds a client for baseURL. Without WithBreaker a default breaker
// named "backend" is used.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tracer:     otel.Tracer("github.com/agenghermawan/clandestineproject/internal/backend"),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.breaker == nil {
		c.breaker = circuit.New("backend")
	}
	return c
}

// Forward performs req. A non-2xx backend answer is not an error: it comes
// back as a Response so the caller can relay it. Errors are reserved for the
// gateway's own failures and carry bad_gateway or unavailable codes.
func (c *Client) Forward(ctx context.Context, req Request) (*Response, error) {
	route := req.Route
	if route == "" {
		route = req.Path
	}
	ctx, span := c.tracer.Start(ctx, "backend "+req.Method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("backend.route", route),
		))
	defer span.End()

	if !c.breaker.Allow() {
		c.observe(req.Method, route, "rejected", 0)
		span.SetStatus(codes.Error, "circuit open")
		return nil, dErrors.Wrap(sentinel.ErrUnavailable, dErrors.CodeUnavailable, "Backend temporarily unavailable")
	}

	start := time.Now()
	resp, err := c.do(ctx, req)
	elapsed := time.Since(start).Seconds()
	if err != nil && ctx.Err() != nil {
		// The caller went away; that says nothing about the backend.
		c.observe(req.Method, route, "cancelled", elapsed)
		span.SetStatus(codes.Error, "caller cancelled")
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeUnavailable, "Request cancelled")
	}
	if err != nil {
		c.recordFailure()
		c.observe(req.Method, route, "error", elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.logger.WarnContext(ctx, "backend request failed",
			"route", route,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, err
	}

	if resp.StatusCode >= 500 {
		c.recordFailure()
	} else {
		c.recordSuccess()
	}
	c.observe(req.Method, route, statusClass(resp.StatusCode), elapsed)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build backend request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if id := requestcontext.RequestID(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadGateway, "Backend unreachable")
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadGateway, "Failed to read backend response")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if !json.Valid(raw) {
		return nil, dErrors.Wrap(
			fmt.Errorf("%w: backend status %d returned non-JSON body", sentinel.ErrInvalidResponse, httpResp.StatusCode),
			dErrors.CodeBadGateway, "Invalid response from backend")
	}
	return &Response{StatusCode: httpResp.StatusCode, Body: json.RawMessage(raw)}, nil
}

func (c *Client) recordFailure() {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.Warn("backend circuit breaker opened", "breaker", c.breaker.Name())
		if c.metrics != nil {
			c.metrics.BreakerOpened()
		}
	}
}

func (c *Client) recordSuccess() {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("backend circuit breaker closed", "breaker", c.breaker.Name())
		if c.metrics != nil {
			c.metrics.BreakerClosed()
		}
	}
}

func (c *Client) observe(method, route, status string, seconds float64) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveRequest(method, route, status, seconds)
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
