package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

// TestContext drives a running gateway over HTTP and remembers the last
// response so assertion steps can inspect it.
type TestContext struct {
	BaseURL string
	HTTP    *http.Client

	cookieName string
	token      string
	clientIP   string

	lastStatus  int
	lastHeaders http.Header
	lastBody    []byte
}

// NewTestContext reads E2E_BASE_URL and E2E_COOKIE_NAME, falling back to a
// local gateway on :8080.
func NewTestContext() *TestContext {
	base := strings.TrimRight(os.Getenv("E2E_BASE_URL"), "/")
	if base == "" {
		base = defaultBaseURL
	}
	cookie := os.Getenv("E2E_COOKIE_NAME")
	if cookie == "" {
		cookie = "token"
	}
	return &TestContext{
		BaseURL:    base,
		HTTP:       &http.Client{Timeout: 10 * time.Second},
		cookieName: cookie,
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.token = ""
	tc.clientIP = ""
	tc.lastStatus = 0
	tc.lastHeaders = nil
	tc.lastBody = nil
}

func (tc *TestContext) SetToken(token string) { tc.token = token }
func (tc *TestContext) SetClientIP(ip string) { tc.clientIP = ip }
func (tc *TestContext) GetLastResponseStatus() int { return tc.lastStatus }
func (tc *TestContext) GetLastResponseBody() []byte { return tc.lastBody }

func (tc *TestContext) GetLastResponseHeader(name string) string {
	if tc.lastHeaders == nil {
		return ""
	}
	return tc.lastHeaders.Get(name)
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) POST(path string, body interface{}) error {
	return tc.do(http.MethodPost, path, body)
}

// GetResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(tc.lastBody, &m); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	v, ok := m[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response %s", field, tc.lastBody)
	}
	return v, nil
}

func (tc *TestContext) do(method, path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.token != "" {
		req.AddCookie(&http.Cookie{Name: tc.cookieName, Value: tc.token})
	}
	if tc.clientIP != "" {
		req.Header.Set("X-Forwarded-For", tc.clientIP)
	}

	resp, err := tc.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.lastStatus = resp.StatusCode
	tc.lastHeaders = resp.Header
	return nil
}
