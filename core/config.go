package core

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public demo deployment of the memory service.
const DefaultBaseURL = "https://api-demo.stitch-ai.co"

// DefaultTimeout bounds a single API round trip when no HTTPClient is given.
const DefaultTimeout = 30 * time.Second

// ErrMissingAPIKey is returned when a client is built without credentials.
var ErrMissingAPIKey = errors.New("api key is required")

// Config holds the explicit settings a client is constructed with.
// Nothing here is read from the environment; the CLI resolves env vars,
// .env files and config files and passes the result in.
type Config struct {
	// BaseURL of the memory service. Default: DefaultBaseURL.
	BaseURL string

	// APIKey authenticates every call that the service scopes to a user.
	APIKey string

	// UserID is the wallet address used when a call does not name one.
	UserID string

	// HTTPClient overrides the transport (tests, proxies).
	HTTPClient *http.Client

	// Timeout applies only when HTTPClient is nil. Default: DefaultTimeout.
	Timeout time.Duration
}

// Validate checks required fields and fills defaults in place.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return nil
}
