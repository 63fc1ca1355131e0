// Package postman is a small client for the asset endpoints of the Postman
// API: listing, reading, creating and replacing environments and
// collections.
package postman

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Postman API.
const DefaultBaseURL = "https://api.getpostman.com"

const apiKeyHeader = "X-Api-Key"

// Client performs authenticated JSON calls against the remote API.
type Client struct {
	baseURL     string
	apiKey      string
	workspace   string
	httpClient  *http.Client
	timeout     time.Duration
	tokenSource oauth2.TokenSource
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithAPIKey sets the key sent in the X-Api-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// WithTokenSource authenticates with OAuth2 bearer tokens instead of, or in
// addition to, the API key.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		c.tokenSource = ts
	}
}

// WithWorkspace scopes list and create calls to a workspace.
func WithWorkspace(id string) Option {
	return func(c *Client) {
		c.workspace = strings.TrimSpace(id)
	}
}

// WithRateLimit caps outgoing calls to perSecond requests per second.
// A value <= 0 disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithTimeout bounds every call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New constructs a Client pointing at the provided API base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	c := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Inf, 1),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.timeout > 0 || c.tokenSource != nil {
		// Copy so a caller-provided client is not mutated.
		hc := *c.httpClient
		if c.timeout > 0 {
			hc.Timeout = c.timeout
		}
		if c.tokenSource != nil {
			base := hc.Transport
			if base == nil {
				base = http.DefaultTransport
			}
			hc.Transport = &oauth2.Transport{Source: c.tokenSource, Base: base}
		}
		c.httpClient = &hc
	}

	return c, nil
}

// BaseURL returns the normalised API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// do performs one request/response exchange. body is JSON-encoded when
// non-nil; a 2xx response is decoded into v when v is non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, v any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: op, Method: method, URL: endpoint, Err: err}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request body: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Method: method, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Method: method, URL: endpoint, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("remote call",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(op, method, resp.StatusCode, data)
	}

	if v == nil {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &APIError{
			Op:      op,
			Status:  resp.StatusCode,
			Code:    CodeInvalidResponse,
			Message: fmt.Sprintf("failed to decode response: %v", err),
		}
	}
	return nil
}

// workspaceQuery returns the query scoping a call to the configured workspace.
func (c *Client) workspaceQuery() url.Values {
	if c.workspace == "" {
		return nil
	}
	return url.Values{"workspace": []string{c.workspace}}
}
