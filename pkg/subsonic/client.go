package subsonic

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"
)

// Config holds client configuration. BaseURL, Username, and Password are
// required; everything else has a sensible default. Configuration is
// always passed explicitly at construction, never read from ambient
// global state, so multiple clients against different servers cannot
// cross-contaminate.
type Config struct {
	BaseURL  string // Required: server base address, e.g. "https://music.example.com"
	Username string // Required
	Password string // Required; never logged, hashed per-request

	ClientName      string // Client identifier sent with every request (default "mixtape")
	ProtocolVersion string // Protocol version string (default "1.16.1")

	Concurrency      int           // Worker pool size (default 5)
	BreakerThreshold int           // Consecutive failures before the circuit opens (default 3)
	BreakerTimeout   time.Duration // Open-state recovery timeout (default 30s)
	RetryMaxAttempts int           // Network attempts per logical call (default 3)
	RetryBaseDelay   time.Duration // First backoff delay (default 2s)
	RetryMaxDelay    time.Duration // Backoff cap (default 60s)

	RequestTimeout time.Duration // Per-request HTTP timeout (default 2m)
	HTTPClient     *http.Client  // Optional override, used for testing
	Logger         Logger        // Optional debug logger
}

// Logger is an optional interface for debug logging. The zerolog logger
// used elsewhere in this repository adapts to it trivially.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Defaults applied by NewClient.
const (
	DefaultClientName      = "mixtape"
	DefaultProtocolVersion = "1.16.1"
	DefaultConcurrency     = 5

	DefaultBreakerThreshold = 3
	DefaultBreakerTimeout   = 30 * time.Second

	DefaultRetryMaxAttempts = 3
	DefaultRetryBaseDelay   = 2 * time.Second
	DefaultRetryMaxDelay    = 60 * time.Second

	DefaultRequestTimeout = 2 * time.Minute
)

// Client is a session against one Subsonic-compatible server.
//
// All mutable session state (credential mode, circuit breaker counters,
// detected capabilities) lives on the client instance. A Client is safe
// for concurrent use; every outbound call is dispatched through its
// bounded worker pool.
type Client struct {
	cfg       Config
	creds     *credentials
	transport *transport
	breaker   *breaker
	retry     *retryPolicy
	sched     *scheduler
	caps      *capabilityState
	logger    Logger
}

// NewClient validates cfg, applies defaults, and constructs a client.
// No network I/O happens here; call Ping to probe the server.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, ErrInvalidConfig
	}

	if cfg.ClientName == "" {
		cfg.ClientName = DefaultClientName
	}
	if cfg.ProtocolVersion == "" {
		cfg.ProtocolVersion = DefaultProtocolVersion
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = DefaultBreakerThreshold
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = DefaultBreakerTimeout
	}
	if cfg.RetryMaxAttempts <= 0 {
		cfg.RetryMaxAttempts = DefaultRetryMaxAttempts
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = DefaultRetryMaxDelay
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(cfg.RequestTimeout, cfg.Concurrency)
	}

	creds := &credentials{username: cfg.Username, password: cfg.Password}

	c := &Client{
		cfg:   cfg,
		creds: creds,
		transport: &transport{
			httpClient: httpClient,
			baseURL:    cfg.BaseURL,
			version:    cfg.ProtocolVersion,
			clientName: cfg.ClientName,
			creds:      creds,
			logger:     cfg.Logger,
		},
		breaker: newBreaker(cfg.BreakerThreshold, cfg.BreakerTimeout),
		retry:   newRetryPolicy(cfg.RetryMaxAttempts, cfg.RetryBaseDelay, cfg.RetryMaxDelay),
		sched:   newScheduler(cfg.Concurrency),
		caps:    &capabilityState{},
		logger:  cfg.Logger,
	}
	return c, nil
}

// Close shuts down the worker pool and releases idle connections.
func (c *Client) Close() {
	c.sched.close()
	c.transport.httpClient.CloseIdleConnections()
}

// call dispatches one envelope request through the scheduler. Inside the
// worker the circuit breaker wraps the retry policy, which wraps the
// transport, in that order.
func (c *Client) call(ctx context.Context, pri Priority, endpoint string, params url.Values) (*subsonicResponse, error) {
	var (
		resp    *subsonicResponse
		callErr error
	)

	err := c.sched.do(ctx, pri, func(ctx context.Context) {
		callErr = c.guarded(ctx, func(ctx context.Context) (*Error, Disposition) {
			r, perr, disp := c.transport.get(ctx, endpoint, params)
			if perr != nil {
				return c.interceptAuth(perr, disp)
			}
			resp = r
			return nil, 0
		})
	})
	if err != nil {
		return nil, err
	}
	if callErr != nil {
		return nil, callErr
	}
	return resp, nil
}

// guarded runs op under the breaker + retry composition and keeps the
// breaker's failure counter honest: a NotFound (skip) outcome means the
// server answered and is healthy, so it does not count as a failure.
func (c *Client) guarded(ctx context.Context, op attempt) error {
	if err := c.breaker.allow(); err != nil {
		return err
	}

	err := c.retry.do(ctx, op)
	if err == nil || isSkip(err) {
		c.breaker.success()
	} else {
		c.breaker.failure()
	}
	return err
}

// interceptAuth handles the token-auth-unsupported fallback. The first
// 41/42 switches the session to legacy password auth and reissues the
// call without consuming the retry budget; if the server rejects legacy
// auth too, the error is terminal.
func (c *Client) interceptAuth(perr *Error, disp Disposition) (*Error, Disposition) {
	if disp != FallbackAuth {
		return perr, disp
	}
	if !c.creds.fallback() {
		return perr, Fatal
	}
	c.caps.setLegacyAuth()
	c.logDebugf("subsonic: server rejected token auth (code %d), falling back to password auth", perr.Code)
	return perr, FallbackAuth
}

// isSkip reports whether err is a NotFound protocol error, which during
// enumeration means "skip this item" rather than "abort".
func isSkip(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Kind == KindNotFound
}

func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
