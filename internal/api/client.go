// Package api is the single chokepoint for backend communication.
//
// Every request goes through the same interceptor chain: the session token,
// if one is stored, is attached as "Authorization: Bearer <token>", and a
// request id is propagated in X-Request-ID. There are no retries, no caching
// and no default timeout; callers bound a call through its context.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/calmora/calmora-cli/internal/logging"
	"github.com/calmora/calmora-cli/internal/metrics"
	"github.com/calmora/calmora-cli/internal/requestid"
	"github.com/calmora/calmora-cli/internal/session"
)

const acceptHeader = "application/json, text/plain, */*"

// RequestEditor mutates an outgoing request before it is sent.
type RequestEditor func(ctx context.Context, req *http.Request) error

type Client struct {
	baseURL   string
	client    *http.Client
	store     session.Store
	logger    *logging.Logger
	metrics   *metrics.Metrics
	userAgent string
	timeout   time.Duration
	editors   []RequestEditor
}

type Option func(*Client)

// WithHTTPClient replaces the transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout bounds every request. Zero keeps the default of no timeout.
// It applies to a copy of the transport client regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithRequestEditor appends an editor that runs after the built-in ones.
func WithRequestEditor(fn RequestEditor) Option {
	return func(c *Client) {
		c.editors = append(c.editors, fn)
	}
}

// New creates a client for baseURL that reads the bearer token from store.
func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		store:   store,
		logger:  logging.Discard(),
	}
	c.editors = []RequestEditor{c.authorize}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.client
		hc.Timeout = c.timeout
		c.client = &hc
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Store returns the session store the client reads from.
func (c *Client) Store() session.Store {
	return c.store
}

// Get sends GET base+path with optional query parameters and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, JSON(body), out)
}

// Put sends body using the variant the caller chose: JSON or Multipart.
func (c *Client) Put(ctx context.Context, path string, body Body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, nil, body, out)
}

// Delete sends DELETE with no body.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, out)
}

// Download sends GET and streams the raw response body to w.
func (c *Client) Download(ctx context.Context, path string, query url.Values, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	dst := &writeTracker{w: w}
	n, err := io.Copy(dst, resp.Body)
	if dst.err != nil {
		return n, fmt.Errorf("failed to write download: %w", dst.err)
	}
	if err != nil {
		return n, &NetworkError{Method: http.MethodGet, URL: resp.Request.URL.String(), Err: err}
	}
	return n, nil
}

// writeTracker remembers the destination's error so a local write failure
// is not reported as a transport failure.
type writeTracker struct {
	w   io.Writer
	err error
}

func (t *writeTracker) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}

// ClearSession deletes the stored token. No network call is made.
func (c *Client) ClearSession(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	c.metrics.ObserveSession("clear")
	return nil
}

// SaveSession stores a token issued by the backend.
func (c *Client) SaveSession(ctx context.Context, token string) error {
	if err := c.store.Set(ctx, token); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	c.metrics.ObserveSession("set")
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body Body, out any) error {
	resp, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, URL: resp.Request.URL.String(), Err: err}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

// do builds, intercepts and sends a request. On success the caller owns resp.Body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body Body) (*http.Response, error) {
	ctx, reqID := requestid.Ensure(ctx)

	var (
		reader      io.Reader = http.NoBody
		contentType string
	)
	if body != nil {
		r, ct, err := body.encode()
		if err != nil {
			return nil, err
		}
		reader, contentType = r, ct
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set(requestid.Header, reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	for _, edit := range c.editors {
		if err := edit(ctx, req); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(method, path, 0, elapsed)
		c.logger.WarnContext(ctx, "api request failed",
			logging.Method(method), logging.Path(path), logging.Duration(elapsed), logging.Error(err))
		return nil, &NetworkError{Method: method, URL: req.URL.String(), Err: err}
	}

	c.metrics.ObserveRequest(method, path, resp.StatusCode, elapsed)
	c.logger.DebugContext(ctx, "api request",
		logging.Method(method), logging.Path(path), logging.Status(resp.StatusCode), logging.Duration(elapsed))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		return nil, &RequestError{Method: method, Path: path, Status: resp.StatusCode, Body: data}
	}
	return resp, nil
}

// authorize is the built-in interceptor that attaches the stored bearer token.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	token, err := c.store.Get(ctx)
	if errors.Is(err, session.ErrNoToken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
