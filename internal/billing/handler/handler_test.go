package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/agenghermawan/clandestineproject/internal/backend"
	"github.com/agenghermawan/clandestineproject/internal/proxy/mocks"
	dErrors "github.com/agenghermawan/clandestineproject/pkg/domain-errors"
	"github.com/agenghermawan/clandestineproject/pkg/platform/middleware/token"
	"github.com/agenghermawan/clandestineproject/pkg/testutil"
)

func newRouter(t *testing.T) (*mocks.MockForwarder, http.Handler) {
	t.Helper()
	ctrl := gomock.NewController(t)
	fwd := mocks.NewMockForwarder(ctrl)
	h := New(fwd, slog.New(slog.DiscardHandler))
	h.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Use(token.FromCookie(token.DefaultCookieName))
	h.Register(r)
	return fwd, r
}

func respond(status int, body string) *backend.Response {
	return &backend.Response{StatusCode: status, Body: json.RawMessage(body)}
}

func TestMyPaymentAndPlanRelay(t *testing.T) {
	fwd, router := newRouter(t)
	fwd.EXPECT().Forward(gomock.Any(), backend.Request{Method: http.MethodGet, Path: "/my-payment", Token: "tok"}).
		Return(respond(http.StatusOK, `{"data":[]}`), nil)
	fwd.EXPECT().Forward(gomock.Any(), backend.Request{Method: http.MethodGet, Path: "/my-plan", Token: "tok"}).
		Return(respond(http.StatusNotFound, `{"message":"no plan"}`), nil)

	rr := testutil.DoRequest(router, testutil.WithTokenCookie(httptest.NewRequest(http.MethodGet, "/api/my-payment", nil), "token", "tok"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[]}`, rr.Body.String())

	rr = testutil.DoRequest(router, testutil.WithTokenCookie(httptest.NewRequest(http.MethodGet, "/api/my-plan", nil), "token", "tok"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"message":"no plan"}`, rr.Body.String())
}

func TestOverviewCombinesPaymentsAndPlan(t *testing.T) {
	fwd, router := newRouter(t)
	fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, req backend.Request) (*backend.Response, error) {
			assert.Equal(t, "tok", req.Token)
			switch req.Path {
			case "/my-payment":
				return respond(http.StatusOK, `{"data":[{"id":"p1","domain":2,"payment":{"Id":"x9BG0DgLaT6HY2RP"}},{"id":"p2"}]}`), nil
			default:
				return respond(http.StatusOK, `{"data":{"domain":3,"expired":"2025-01-01T00:00:00Z","registered_domain":["a.com"]}}`), nil
			}
		})

	rr := testutil.DoRequest(router, testutil.WithTokenCookie(httptest.NewRequest(http.MethodGet, "/api/my-overview", nil), "token", "tok"))

	require.Equal(t, http.StatusOK, rr.Code)
	got := testutil.UnmarshalResponse[OverviewResponse](t, rr)
	require.Len(t, got.Payments, 2)
	assert.True(t, got.Payments[0].ForceRegisterDomain)
	assert.Equal(t, 2, got.Payments[0].DomainLimit)
	assert.False(t, got.Payments[1].ForceRegisterDomain)
	assert.Equal(t, 1, got.Payments[1].DomainLimit)
	require.NotNil(t, got.Summary)
	assert.True(t, got.Summary.Expired)
	assert.Equal(t, 2, got.Summary.Remaining)
	assert.JSONEq(t, `{"domain":3,"expired":"2025-01-01T00:00:00Z","registered_domain":["a.com"]}`, string(got.Plan))
}

func TestOverviewWithoutPlan(t *testing.T) {
	fwd, router := newRouter(t)
	fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, req backend.Request) (*backend.Response, error) {
			if req.Path == "/my-payment" {
				return respond(http.StatusOK, `{"data":[]}`), nil
			}
			return nil, dErrors.New(dErrors.CodeBadGateway, "Backend unreachable")
		})

	rr := testutil.DoRequest(router, testutil.WithTokenCookie(httptest.NewRequest(http.MethodGet, "/api/my-overview", nil), "token", "tok"))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"payments":[],"plan":null,"summary":null}`, rr.Body.String())
}

func TestOverviewPaymentsFailure(t *testing.T) {
	fwd, router := newRouter(t)
	fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, req backend.Request) (*backend.Response, error) {
			if req.Path == "/my-payment" {
				return respond(http.StatusUnauthorized, `{}`), nil
			}
			return respond(http.StatusOK, `{"data":null}`), nil
		})

	rr := testutil.DoRequest(router, testutil.WithTokenCookie(httptest.NewRequest(http.MethodGet, "/api/my-overview", nil), "token", "tok"))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"message":"Failed to fetch payments"}`, rr.Body.String())
}

func TestOverviewLogsMalformedPaymentRecord(t *testing.T) {
	var logs bytes.Buffer
	ctrl := gomock.NewController(t)
	fwd := mocks.NewMockForwarder(ctrl)
	h := New(fwd, slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	r := chi.NewRouter()
	r.Use(token.FromCookie(token.DefaultCookieName))
	h.Register(r)

	fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, req backend.Request) (*backend.Response, error) {
			if req.Path == "/my-payment" {
				return respond(http.StatusOK, `{"data":[{"id":"p3","domain":{"limit":4},"payment":{"Id":"x9BG0DgLaT6HY2RP"}}]}`), nil
			}
			return respond(http.StatusNotFound, `{"message":"no plan"}`), nil
		})

	rr := testutil.DoRequest(r, testutil.WithTokenCookie(httptest.NewRequest(http.MethodGet, "/api/my-overview", nil), "token", "tok"))

	require.Equal(t, http.StatusOK, rr.Code)
	body := testutil.UnmarshalResponse[OverviewResponse](t, rr)
	require.Len(t, body.Payments, 1)
	assert.Equal(t, 1, body.Payments[0].DomainLimit)
	assert.False(t, body.Payments[0].ForceRegisterDomain, "a record that failed to decode gets no bypass")
	assert.JSONEq(t, `{"id":"p3","domain":{"limit":4},"payment":{"Id":"x9BG0DgLaT6HY2RP"}}`, string(body.Payments[0].Record))
	assert.Contains(t, logs.String(), "malformed payment record in overview")
}
