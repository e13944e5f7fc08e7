// Package api is the typed REST client for the admin backend: one request
// path (doRequest) with throttling, request logging and the error taxonomy,
// plus generic per-resource calls and the auth endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/learnhub/learnadmin/internal/config"
	"github.com/learnhub/learnadmin/internal/constants"
	apihttp "github.com/learnhub/learnadmin/internal/http"
	"github.com/learnhub/learnadmin/internal/logging"
	"github.com/learnhub/learnadmin/internal/ratelimit"
)

// retryLogger implements the retryablehttp.LeveledLogger interface on zerolog.
type retryLogger struct {
	logger *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

// apiMetrics tracks API usage statistics
type apiMetrics struct {
	sync.Mutex
	totalCalls  int64
	failures    int64
	callsByPath map[string]int64
}

// Stats is a snapshot of the client's call counters.
type Stats struct {
	TotalCalls  int64
	Failures    int64
	CallsByPath map[string]int64
}

// Client is the admin API client. It is safe for concurrent use.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	limiter    *ratelimit.RateLimiter
	logger     *logging.Logger
	metrics    *apiMetrics
}

type options struct {
	auth       *apihttp.AuthHooks
	logger     *logging.Logger
	httpClient *nethttp.Client
	baseURL    string
}

// Option customises NewClient.
type Option func(*options)

// WithAuth attaches the session's bearer token and 401 refresh hooks.
func WithAuth(hooks *apihttp.AuthHooks) Option {
	return func(o *options) { o.auth = hooks }
}

// WithLogger sets the logger (default: no-op).
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBaseURL overrides cfg.BaseURL (e.g. from --api-url).
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithHTTPClient replaces the transport stack built from cfg. The retry and
// throttling layers still apply.
func WithHTTPClient(c *nethttp.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// NewClient creates a new API client
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := logging.OrNop(o.logger)

	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("API base URL is empty: set backend.base_url or pass --api-url")
	}

	httpClient := o.httpClient
	if httpClient == nil {
		var err error
		httpClient, err = apihttp.NewClient(apihttp.Options{Config: cfg, Auth: o.auth, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
		}
	}

	// Transport errors only, and only when max_retries > 0.
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = constants.RetryWaitMin
	retryClient.RetryWaitMax = constants.RetryWaitMax
	retryClient.CheckRetry = transportOnlyRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = &retryLogger{logger: logger}

	standard := retryClient.StandardClient()
	standard.Timeout = httpClient.Timeout

	limiter := ratelimit.NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst)
	limiter.SetLogger(logger)

	return &Client{
		httpClient: standard,
		baseURL:    baseURL,
		limiter:    limiter,
		logger:     logger,
		metrics:    &apiMetrics{callsByPath: make(map[string]int64)},
	}, nil
}

// transportOnlyRetryPolicy never retries a response, only failed round trips
// that retryablehttp considers recoverable.
func transportOnlyRetryPolicy(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// BaseURL returns the backend base URL in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Stats returns a snapshot of the call counters.
func (c *Client) Stats() Stats {
	c.metrics.Lock()
	defer c.metrics.Unlock()
	byPath := make(map[string]int64, len(c.metrics.callsByPath))
	for k, v := range c.metrics.callsByPath {
		byPath[k] = v
	}
	return Stats{TotalCalls: c.metrics.totalCalls, Failures: c.metrics.failures, CallsByPath: byPath}
}

// doRequest performs an HTTP request with throttling and logging. The caller
// owns the response body. Transport failures come back as *TransportError.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*nethttp.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	c.metrics.Lock()
	c.metrics.totalCalls++
	c.metrics.callsByPath[method+" "+path]++
	c.metrics.Unlock()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.countFailure()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("API call failed")
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", req.Header.Get(apihttp.HeaderRequestID)).
		Msg("API call")

	if resp.StatusCode == nethttp.StatusTooManyRequests {
		c.handleThrottle(method, path, resp)
	}

	return resp, nil
}

// handleThrottle pauses the limiter for the server's Retry-After.
func (c *Client) handleThrottle(method, path string, resp *nethttp.Response) {
	wait := time.Second
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			wait = time.Duration(secs) * time.Second
		} else if t, err := nethttp.ParseTime(ra); err == nil {
			wait = time.Until(t)
		}
	}
	c.limiter.SetCooldown(wait)
	c.logger.Warn().Str("method", method).Str("path", path).Dur("retry_after", wait).Msg("Throttled by server")
}

func (c *Client) countFailure() {
	c.metrics.Lock()
	c.metrics.failures++
	c.metrics.Unlock()
}

// call performs a request and decodes the response. unwrap is the gjson path
// of the payload inside the response ("" for the whole body). A nil out
// discards the body. Non-2xx responses become *APIError.
func (c *Client) call(ctx context.Context, method, path string, body interface{}, unwrap string, out interface{}) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countFailure()
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.countFailure()
		return newAPIError(method, path, resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}

	payload, err := Unwrap(data, unwrap)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrUnexpectedShape, err)
	}
	return nil
}
