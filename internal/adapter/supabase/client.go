package supabase

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Paths are the endpoint paths relative to the project URL
type Paths struct {
	Snapshot  string
	Valuation string
	Dividend  string
	Registry  string
}

// DefaultPaths returns the endpoints of the fundamentals project
func DefaultPaths() Paths {
	return Paths{
		Snapshot:  "/functions/v1/ingest-fundamental-data",
		Valuation: "/rest/v1/fii_metrics",
		Dividend:  "/rest/v1/fii_dividends",
		Registry:  "/rest/v1/fii_registry",
	}
}

// Client talks to the Supabase project that stores fund fundamentals.
// It implements domain.Dispatcher and domain.RegistryRepository.
type Client struct {
	baseURL      string
	anonKey      string
	ingestAPIKey string
	paths        Paths
	batchSize    int
	httpClient   *http.Client
	logger       *zap.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client for the project at baseURL.
// anonKey authenticates the REST tables; ingestAPIKey authenticates the edge function.
func NewClient(baseURL, anonKey, ingestAPIKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		anonKey:      anonKey,
		ingestAPIKey: ingestAPIKey,
		paths:        DefaultPaths(),
		batchSize:    500,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       zap.NewNop(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBatchSize caps the number of history rows per request.
func WithBatchSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithPaths overrides the endpoint paths. Empty fields keep their defaults.
func WithPaths(p Paths) ClientOption {
	return func(c *Client) {
		if p.Snapshot != "" {
			c.paths.Snapshot = p.Snapshot
		}
		if p.Valuation != "" {
			c.paths.Valuation = p.Valuation
		}
		if p.Dividend != "" {
			c.paths.Dividend = p.Dividend
		}
		if p.Registry != "" {
			c.paths.Registry = p.Registry
		}
	}
}

