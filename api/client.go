// Package api is the HTTP client for the Stitch memory service.
//
// Each service method builds a URL, attaches the userId/apiKey query
// parameters the service expects, sends JSON and returns the decoded reply.
// The client keeps no state between calls and never retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stitch-ai/stitch-go-sdk/core"
)

// Version is reported in the User-Agent header.
const Version = "0.3.0"

// Client talks to the memory service. Endpoint groups hang off it.
type Client struct {
	cfg    core.Config
	http   *http.Client
	logger zerolog.Logger

	Git         *GitService
	Memory      *MemoryService
	Spaces      *SpaceService
	Marketplace *MarketplaceService
	User        *UserService
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With().Str("component", "api").Logger()
	}
}

// New creates a client. The config is validated and defaulted.
func New(cfg core.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:    cfg,
		http:   cfg.HTTPClient,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Git = &GitService{c: c}
	c.Memory = &MemoryService{c: c}
	c.Spaces = &SpaceService{c: c}
	c.Marketplace = &MarketplaceService{c: c}
	c.User = &UserService{c: c}
	return c, nil
}

// BaseURL returns the resolved service root.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// request describes one API call.
type request struct {
	method string
	path   string
	query  map[string]string
	body   interface{}
}

// auth returns the userId/apiKey pair most endpoints require.
// An empty userID falls back to the configured default.
func (c *Client) auth(userID string) map[string]string {
	return map[string]string{
		"userId": c.user(userID),
		"apiKey": c.cfg.APIKey,
	}
}

func (c *Client) user(userID string) string {
	if userID == "" {
		return c.cfg.UserID
	}
	return userID
}

// with merges extra query parameters, skipping empty values.
func with(params map[string]string, extra map[string]string) map[string]string {
	if params == nil {
		params = map[string]string{}
	}
	for k, v := range extra {
		if v != "" {
			params[k] = v
		}
	}
	return params
}

// do sends the request and decodes the reply. Non-2xx statuses become *Error.
func (c *Client) do(ctx context.Context, r request) (*core.Response, error) {
	u, err := url.Parse(c.cfg.BaseURL + r.path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	if len(r.query) > 0 {
		q := u.Query()
		for k, v := range r.query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stitch-go-sdk/"+Version)
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", r.method).Str("path", r.path).Str("request_id", requestID).Msg("request failed")
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, r.method, r.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	c.logger.Debug().
		Str("method", r.method).
		Str("path", r.path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Method:     r.method,
			Path:       r.path,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			RequestID:  requestID,
		}
	}

	decoded, err := core.NewResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, r.method, r.path, err)
	}
	return decoded, nil
}

// segment escapes one path element.
func segment(s string) string {
	return url.PathEscape(s)
}
