package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/agenghermawan/clandestineproject/internal/audit"
	"github.com/agenghermawan/clandestineproject/internal/audit/store/memory"
	"github.com/agenghermawan/clandestineproject/internal/backend"
	"github.com/agenghermawan/clandestineproject/internal/proxy/mocks"
	dErrors "github.com/agenghermawan/clandestineproject/pkg/domain-errors"
	metadata "github.com/agenghermawan/clandestineproject/pkg/platform/middleware/metadata"
	"github.com/agenghermawan/clandestineproject/pkg/platform/middleware/token"
	"github.com/agenghermawan/clandestineproject/pkg/testutil"
)

type AdminHandlerSuite struct {
	suite.Suite
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerSuite))
}

type fixture struct {
	fwd    *mocks.MockForwarder
	store  *memory.InMemoryStore
	router http.Handler
}

func (s *AdminHandlerSuite) newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	fwd := mocks.NewMockForwarder(ctrl)
	logger := slog.New(slog.DiscardHandler)
	store := memory.NewInMemoryStore(100)
	pub := audit.NewPublisher(store, logger)

	r := chi.NewRouter()
	r.Use(metadata.ClientMetadata(nil))
	r.Use(token.FromCookie(token.DefaultCookieName))
	New(fwd, pub, logger).Register(r)
	return fixture{fwd: fwd, store: store, router: r}
}

func ok(body string) *backend.Response {
	return &backend.Response{StatusCode: http.StatusOK, Body: json.RawMessage(body)}
}

func withCookie(req *http.Request) *http.Request {
	return testutil.WithTokenCookie(req, "token", "admin-token")
}

func (f fixture) events(t *testing.T) []audit.Event {
	t.Helper()
	events, err := f.store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	return events
}

func (s *AdminHandlerSuite) TestListUsers() {
	s.T().Run("applies defaults", func(t *testing.T) {
		f := s.newFixture(t)
		f.fwd.EXPECT().Forward(gomock.Any(), backend.Request{
			Method: http.MethodGet,
			Path:   "/admin/users",
			Query:  url.Values{"page": {"1"}, "size": {"10"}, "search": {""}},
			Token:  "admin-token",
		}).Return(ok(`{"data":[],"pagination":{"total":0,"pages":1}}`), nil)

		rr := testutil.DoRequest(f.router, withCookie(httptest.NewRequest(http.MethodGet, "/api/special-one/users", nil)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":[],"pagination":{"total":0,"pages":1}}`, rr.Body.String())
	})

	s.T().Run("passes explicit paging and search", func(t *testing.T) {
		f := s.newFixture(t)
		f.fwd.EXPECT().Forward(gomock.Any(), backend.Request{
			Method: http.MethodGet,
			Path:   "/admin/users",
			Query:  url.Values{"page": {"3"}, "size": {"25"}, "search": {"bob smith"}},
			Token:  "admin-token",
		}).Return(ok(`{"data":[]}`), nil)

		req := httptest.NewRequest(http.MethodGet, "/api/special-one/users?page=3&size=25&search=bob+smith", nil)
		rr := testutil.DoRequest(f.router, withCookie(req))
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func (s *AdminHandlerSuite) TestCreateUser() {
	s.T().Run("missing username - 400 and no backend call", func(t *testing.T) {
		f := s.newFixture(t)
		f.fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).Times(0)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/special-one/create-user", map[string]any{"email": "a@b.c"})
		rr := testutil.DoRequest(f.router, withCookie(req))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, "validation_error", body["error"])
		assert.Equal(t, "Please fill in both username and email.", body["message"])
		assert.Empty(t, f.events(t))
	})

	s.T().Run("malformed JSON - 400", func(t *testing.T) {
		f := s.newFixture(t)
		f.fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).Times(0)

		req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/special-one/create-user", "{nope")
		rr := testutil.DoRequest(f.router, withCookie(req))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	s.T().Run("relays body and audits the new id", func(t *testing.T) {
		f := s.newFixture(t)
		raw := `{"email":"a@b.c","username":"alice","is_admin":false,"is_active":true}`
		f.fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req backend.Request) (*backend.Response, error) {
				assert.Equal(t, http.MethodPost, req.Method)
				assert.Equal(t, "/admin/users", req.Path)
				assert.JSONEq(t, raw, string(req.Body))
				return &backend.Response{StatusCode: http.StatusCreated, Body: json.RawMessage(`{"data":{"_id":"u9","username":"alice"}}`)}, nil
			})

		req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/special-one/create-user", raw)
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0")
		rr := testutil.DoRequest(f.router, withCookie(req))

		assert.Equal(t, http.StatusCreated, rr.Code)
		events := f.events(t)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionUserCreated, events[0].Action)
		assert.Equal(t, "u9", events[0].TargetUserID)
		assert.Equal(t, token.Fingerprint("admin-token"), events[0].ActorID)
		assert.Contains(t, events[0].Device, "Firefox")
	})
}

func (s *AdminHandlerSuite) TestUserByID() {
	s.T().Run("get relays", func(t *testing.T) {
		f := s.newFixture(t)
		f.fwd.EXPECT().Forward(gomock.Any(), backend.Request{
			Method: http.MethodGet, Path: "/admin/users/u1", Route: "/admin/users/{id}", Token: "admin-token",
		}).Return(ok(`{"data":{"_id":"u1"}}`), nil)

		rr := testutil.DoRequest(f.router, withCookie(httptest.NewRequest(http.MethodGet, "/api/special-one/users/u1", nil)))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, f.events(t))
	})

	s.T().Run("update relays body and audits", func(t *testing.T) {
		f := s.newFixture(t)
		f.fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req backend.Request) (*backend.Response, error) {
				assert.Equal(t, http.MethodPut, req.Method)
				assert.Equal(t, "/admin/users/u1", req.Path)
				assert.JSONEq(t, `{"username":"bob"}`, string(req.Body))
				return ok(`{"message":"updated"}`), nil
			})

		req := testutil.NewRequestWithBody(t, http.MethodPut, "/api/special-one/users/u1", `{"username":"bob"}`)
		rr := testutil.DoRequest(f.router, withCookie(req))

		assert.Equal(t, http.StatusOK, rr.Code)
		events := f.events(t)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionUserUpdated, events[0].Action)
	})

	s.T().Run("delete failure is relayed and audited as refused", func(t *testing.T) {
		f := s.newFixture(t)
		f.fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).
			Return(&backend.Response{StatusCode: http.StatusNotFound, Body: json.RawMessage(`{"message":"User not found"}`)}, nil)

		rr := testutil.DoRequest(f.router, withCookie(httptest.NewRequest(http.MethodDelete, "/api/special-one/users/u404", nil)))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"message":"User not found"}`, rr.Body.String())
		events := f.events(t)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionUserDeleted, events[0].Action)
		assert.Equal(t, "u404", events[0].TargetUserID)
		assert.False(t, events[0].Succeeded())
	})

	s.T().Run("gateway failure is not audited", func(t *testing.T) {
		f := s.newFixture(t)
		f.fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnavailable, "Backend temporarily unavailable"))

		rr := testutil.DoRequest(f.router, withCookie(httptest.NewRequest(http.MethodDelete, "/api/special-one/users/u1", nil)))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Empty(t, f.events(t))
	})
}

func (s *AdminHandlerSuite) TestRoleChanges() {
	s.T().Run("make-admin success wraps backend body", func(t *testing.T) {
		f := s.newFixture(t)
		f.fwd.EXPECT().Forward(gomock.Any(), backend.Request{
			Method: http.MethodPost, Path: "/admin/users/u1/make-admin", Route: "/admin/users/{id}/make-admin", Token: "admin-token",
		}).Return(ok(`{"_id":"u1","is_admin":true}`), nil)

		rr := testutil.DoRequest(f.router, withCookie(httptest.NewRequest(http.MethodPost, "/api/special-one/users/u1/make-admin", nil)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message":"User promoted to admin","data":{"_id":"u1","is_admin":true}}`, rr.Body.String())
		events := f.events(t)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionUserPromoted, events[0].Action)
	})

	s.T().Run("make-admin failure uses backend message", func(t *testing.T) {
		f := s.newFixture(t)
		f.fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).
			Return(&backend.Response{StatusCode: http.StatusConflict, Body: json.RawMessage(`{"message":"Already admin"}`)}, nil)

		rr := testutil.DoRequest(f.router, withCookie(httptest.NewRequest(http.MethodPost, "/api/special-one/users/u1/make-admin", nil)))

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"message":"Already admin"}`, rr.Body.String())
	})

	s.T().Run("make-admin failure without message uses fallback", func(t *testing.T) {
		f := s.newFixture(t)
		f.fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).
			Return(&backend.Response{StatusCode: http.StatusBadRequest, Body: json.RawMessage(`{}`)}, nil)

		rr := testutil.DoRequest(f.router, withCookie(httptest.NewRequest(http.MethodPost, "/api/special-one/users/u1/make-admin", nil)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"message":"Failed to make user admin"}`, rr.Body.String())
	})

	s.T().Run("remove-admin is symmetric", func(t *testing.T) {
		f := s.newFixture(t)
		f.fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req backend.Request) (*backend.Response, error) {
				assert.Equal(t, "/admin/users/u1/remove-admin", req.Path)
				return ok(`{"_id":"u1","is_admin":false}`), nil
			})

		rr := testutil.DoRequest(f.router, withCookie(httptest.NewRequest(http.MethodPost, "/api/special-one/users/u1/remove-admin", nil)))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, strings.Contains(rr.Body.String(), "User removed from admin"))
		events := f.events(t)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionUserDemoted, events[0].Action)
	})
}

func (s *AdminHandlerSuite) TestListAudit() {
	s.T().Run("returns recent events", func(t *testing.T) {
		f := s.newFixture(t)
		require.NoError(t, f.store.Append(context.Background(), audit.Event{Action: audit.ActionUserDeleted, TargetUserID: "u1"}))

		rr := testutil.DoRequest(f.router, withCookie(httptest.NewRequest(http.MethodGet, "/api/special-one/audit?limit=5", nil)))

		assert.Equal(t, http.StatusOK, rr.Code)
		got := testutil.UnmarshalResponse[AuditListResponse](t, rr)
		require.Len(t, got.Data, 1)
		assert.Equal(t, "u1", got.Data[0].TargetUserID)
	})

	s.T().Run("rejects a bad limit", func(t *testing.T) {
		f := s.newFixture(t)
		rr := testutil.DoRequest(f.router, withCookie(httptest.NewRequest(http.MethodGet, "/api/special-one/audit?limit=-1", nil)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
