// Package proxy holds the pieces shared by every route that hands a request
// to the data backend and relays the answer.
package proxy

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/agenghermawan/clandestineproject/internal/backend"
	dErrors "github.com/agenghermawan/clandestineproject/pkg/domain-errors"
	"github.com/agenghermawan/clandestineproject/pkg/platform/httputil"
	"github.com/agenghermawan/clandestineproject/pkg/requestcontext"
)

const maxRequestBody = 1 << 20

// Forwarder is satisfied by *backend.Client.
type Forwarder interface {
	Forward(ctx context.Context, req backend.Request) (*backend.Response, error)
}

// Relay writes the backend's status and body unchanged.
func Relay(w http.ResponseWriter, resp *backend.Response) {
	httputil.WriteRawJSON(w, resp.StatusCode, resp.Body)
}

// ReadBody reads a bounded request body for forwarding.
func ReadBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "Unable to read request body")
	}
	return body, nil
}

// WithToken fills in the caller's bearer token from the request context.
func WithToken(ctx context.Context, req backend.Request) backend.Request {
	req.Token = requestcontext.Token(ctx)
	return req
}

// Pass forwards req with the caller's token and relays whatever comes back.
// Gateway failures are written as coded errors.
func Pass(w http.ResponseWriter, r *http.Request, fwd Forwarder, logger *slog.Logger, req backend.Request) {
	ctx := r.Context()
	resp, err := fwd.Forward(ctx, WithToken(ctx, req))
	if err != nil {
		logger.ErrorContext(ctx, "backend call failed",
			"route", req.Route,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	Relay(w, resp)
}
