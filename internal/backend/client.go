// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Configuration constants for the backend client.
const (
	// DefaultTimeout bounds a whole request when no timeout is configured.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the client to the backend.
	DefaultUserAgent = "minigram/1.0"

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 10 * 1024 * 1024

	// HeaderRequestID correlates client and server logs.
	HeaderRequestID = "X-Request-ID"
)

// sharedHTTPClient pools connections across Client instances.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// TokenSource supplies the bearer token for authenticated calls.
// session.Store satisfies it.
type TokenSource interface {
	CurrentToken() (string, bool)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one backend. It is safe for concurrent use; its only
// state is fixed configuration.
type Client struct {
	baseURL    *url.URL
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     *zap.Logger
}

// NewClient creates a client for baseURL. tokens may be nil, in which case
// no call carries an Authorization header.
func NewClient(baseURL *url.URL, tokens TokenSource) *Client {
	u := *baseURL
	return &Client{
		baseURL:    &u,
		tokens:     tokens,
		httpClient: sharedHTTPClient,
		userAgent:  DefaultUserAgent,
		logger:     zap.NewNop(),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithTimeout sets the overall per-request timeout. Zero means no timeout;
// the caller's context still applies.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	hc := *c.httpClient
	hc.Timeout = timeout
	c.httpClient = &hc
	return c
}

// WithRateLimit throttles outgoing requests to rps per second with the given
// burst. rps <= 0 removes the limit.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	if rps <= 0 {
		c.limiter = nil
		return c
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// WithUserAgent sets the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// WithLogger sets the request logger.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// BaseURL returns a copy of the configured base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// call describes one backend exchange.
type call struct {
	op       string
	method   string
	segments []string
	query    url.Values
	auth     bool
	body     any
}

// endpointURL appends escaped path segments to the base URL path.
func (c *Client) endpointURL(segments []string, query url.Values) (*url.URL, error) {
	u := *c.baseURL
	u.RawQuery = ""
	u.Fragment = ""

	var b strings.Builder
	b.WriteString(strings.TrimSuffix(u.EscapedPath(), "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}

	escaped := b.String()
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return nil, err
	}
	u.Path = unescaped
	u.RawPath = escaped
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u, nil
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	u, err := c.endpointURL(cl.segments, cl.query)
	if err != nil {
		return nil, fmt.Errorf("%w: build %s URL: %v", ErrInvalidResponse, cl.op, err)
	}

	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", cl.op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s request: %v", ErrInvalidResponse, cl.op, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(HeaderRequestID, uuid.NewString())
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.auth && c.tokens != nil {
		if token, ok := c.tokens.CurrentToken(); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// do executes cl and decodes a successful body into out. out may be nil,
// in which case the body is discarded.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limit wait: %w", cl.op, err)
		}
	}

	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return err
	}

	c.logRequest(req)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", cl.op, err)
	}
	defer resp.Body.Close()

	c.logResponse(req, resp, time.Since(start))

	body, err := readResponse(resp)
	if resp.StatusCode >= http.StatusBadRequest {
		// An unreadable error body still carries the status.
		if err != nil {
			c.logger.Debug("backend error body unreadable", zap.String("op", cl.op), zap.Error(err))
			body = nil
		}
		return newStatusError(resp.StatusCode, body)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, cl.op, err)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Op: cl.op, Err: err}
	}
	return nil
}

// readResponse reads the body up to MaxResponseSize.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// logRequest logs method and path only. Headers carry the bearer token and
// bodies carry phone numbers and message text.
func (c *Client) logRequest(req *http.Request) {
	c.logger.Debug("backend request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", req.Header.Get(HeaderRequestID)),
	)
}

func (c *Client) logResponse(req *http.Request, resp *http.Response, d time.Duration) {
	c.logger.Debug("backend response",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", req.Header.Get(HeaderRequestID)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", d),
	)
}
