// Package api is the console's client for the gateway's own routes. It
// authenticates the same way the site does: the session token rides in the
// session cookie.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/agenghermawan/clandestineproject/internal/admin"
)

const defaultTimeout = 20 * time.Second

// Error is a non-2xx answer from the gateway.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned %d", e.Status)
	}
	return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Message)
}

// SearchQuery holds the leak search parameters. Empty fields are omitted.
type SearchQuery struct {
	Q    string
	Type string
	Page int
	Size int
}

type Client struct {
	baseURL    string
	cookieName string
	token      string
	http       *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithCookieName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.cookieName = name
		}
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		cookieName: "token",
		token:      token,
		http:       &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListUsers fetches one page of users.
func (c *Client) ListUsers(ctx context.Context, page, size int, search string) (*admin.UsersPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	q.Set("search", search)

	var out admin.UsersPage
	if err := c.do(ctx, http.MethodGet, "/api/special-one/users", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*admin.User, error) {
	var out admin.UserEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/special-one/users/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) CreateUser(ctx context.Context, in admin.UserInput) (*admin.User, error) {
	var out admin.UserEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/special-one/create-user", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/special-one/users/"+url.PathEscape(id), nil, nil, nil)
}

// MakeAdmin promotes a user and returns the gateway's confirmation message.
func (c *Client) MakeAdmin(ctx context.Context, id string) (string, error) {
	return c.roleChange(ctx, id, "/make-admin")
}

// RemoveAdmin demotes a user and returns the gateway's confirmation message.
func (c *Client) RemoveAdmin(ctx context.Context, id string) (string, error) {
	return c.roleChange(ctx, id, "/remove-admin")
}

func (c *Client) roleChange(ctx context.Context, id, suffix string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	path := "/api/special-one/users/" + url.PathEscape(id) + suffix
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Search runs a leak search and returns the backend's result document as is.
func (c *Client) Search(ctx context.Context, sq SearchQuery) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("q", sq.Q)
	if sq.Type != "" {
		q.Set("type", sq.Type)
	}
	if sq.Page > 0 {
		q.Set("page", strconv.Itoa(sq.Page))
	}
	if sq.Size > 0 {
		q.Set("size", strconv.Itoa(sq.Size))
	}

	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/leaks", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: c.cookieName, Value: c.token})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// errorMessage picks the human text out of either gateway error shape.
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
