package proxy

//go:generate mockgen -source=proxy.go -destination=mocks/mocks.go -package=mocks Forwarder

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/agenghermawan/clandestineproject/internal/backend"
	"github.com/agenghermawan/clandestineproject/internal/proxy/mocks"
	dErrors "github.com/agenghermawan/clandestineproject/pkg/domain-errors"
	"github.com/agenghermawan/clandestineproject/pkg/testutil"
)

func TestPassRelaysBackendAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	fwd := mocks.NewMockForwarder(ctrl)
	fwd.EXPECT().
		Forward(gomock.Any(), backend.Request{Method: http.MethodGet, Path: "/my-plan", Route: "/my-plan", Token: "tok"}).
		Return(&backend.Response{StatusCode: http.StatusPaymentRequired, Body: json.RawMessage(`{"message":"no plan"}`)}, nil)

	req := testutil.WithToken(httptest.NewRequest(http.MethodGet, "/api/my-plan", nil), "tok")
	rr := httptest.NewRecorder()
	Pass(rr, req, fwd, slog.New(slog.DiscardHandler), backend.Request{Method: http.MethodGet, Path: "/my-plan", Route: "/my-plan"})

	assert.Equal(t, http.StatusPaymentRequired, rr.Code)
	assert.JSONEq(t, `{"message":"no plan"}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestPassWritesGatewayErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	fwd := mocks.NewMockForwarder(ctrl)
	fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnavailable, "Backend temporarily unavailable"))

	rr := httptest.NewRecorder()
	Pass(rr, httptest.NewRequest(http.MethodGet, "/api/my-plan", nil), fwd, slog.New(slog.DiscardHandler), backend.Request{Method: http.MethodGet, Path: "/my-plan"})

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body["error"])
	assert.Equal(t, "Backend temporarily unavailable", body["message"])
}

func TestWithTokenReadsContext(t *testing.T) {
	req := testutil.WithToken(httptest.NewRequest(http.MethodGet, "/", nil), "abc")
	got := WithToken(req.Context(), backend.Request{Path: "/search"})
	assert.Equal(t, "abc", got.Token)

	assert.Empty(t, WithToken(context.Background(), backend.Request{}).Token)
}

func TestReadBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
	body, err := ReadBody(req)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(body))
}
