// Package constants holds tunables shared across the client, config and CLI.
package constants

import (
	"time"
)

// HTTP transport settings
const (
	// HTTPDialTimeout bounds TCP connection establishment.
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive is the keep-alive period for API connections.
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPIdleConnTimeout closes idle pooled connections.
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout bounds the TLS handshake.
	HTTPTLSHandshakeTimeout = 15 * time.Second

	// HTTPExpectContinueTimeout for HTTP 100-continue.
	HTTPExpectContinueTimeout = 1 * time.Second

	// ProxyWarmupTimeout bounds the optional proxy warmup request.
	ProxyWarmupTimeout = 15 * time.Second

	// DefaultProxyPort is used when a proxy host is configured without a port.
	DefaultProxyPort = 8080
)

// Retry settings for go-retryablehttp.
// The admin console has no retry policy by default: every failure is
// terminal for the user action. MaxRetries can be raised in config, in
// which case only transport errors are retried.
const (
	DefaultMaxRetries = 0
	RetryWaitMin      = 500 * time.Millisecond
	RetryWaitMax      = 5 * time.Second
)

// Client-side request throttling (token bucket).
const (
	// DefaultRequestsPerSecond is the refill rate of the API limiter.
	DefaultRequestsPerSecond = 5.0

	// DefaultBurst is the bucket capacity.
	DefaultBurst = 20.0

	// RateLimitWarnThreshold - waits longer than this are logged.
	RateLimitWarnThreshold = 2 * time.Second

	// RateLimitWarnInterval - minimum gap between two throttle warnings.
	RateLimitWarnInterval = 10 * time.Second
)

// List view defaults
const (
	// DefaultPageSize matches the admin dashboard tables.
	DefaultPageSize = 10

	// MaxPageSize caps --page-size.
	MaxPageSize = 500
)

// Event bus
const (
	// EventBusDefaultBuffer is the per-subscriber channel buffer.
	EventBusDefaultBuffer = 100
)

// Notifications
const (
	// NotificationMaxMessageLen truncates long backend messages in toasts.
	NotificationMaxMessageLen = 160
)

// Auth
const (
	// TokenExpirySkew treats tokens expiring within this window as expired.
	TokenExpirySkew = 30 * time.Second
)
