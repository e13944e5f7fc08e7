// Package http builds the *http.Client used for every backend call:
// proxy-aware transport, optional HTTP/2, request identification and the
// bearer-token round tripper with its single refresh-and-retry.
package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"
	"strings"

	"golang.org/x/net/http2"

	"github.com/learnhub/learnadmin/internal/config"
	"github.com/learnhub/learnadmin/internal/logging"
)

// Options configures NewClient.
type Options struct {
	Config *config.Config

	// Auth, when non-nil, attaches the bearer token and handles 401.
	Auth *AuthHooks

	Logger *logging.Logger
}

// NewClient creates the HTTP client for the admin API.
//
// Layering, outermost first:
//   - requestIDTransport: X-Request-ID, User-Agent, Accept
//   - AuthTransport (when opts.Auth is set)
//   - proxy transport from ConfigureTransport, HTTP/2 enabled when direct
//
// A nil Config uses defaults. Timeout comes from request_timeout_seconds
// (0 means none; per-call deadlines come from the caller's context).
func NewClient(opts Options) (*nethttp.Client, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	logger := logging.OrNop(opts.Logger)

	base, err := ConfigureTransport(cfg, logger)
	if err != nil {
		return nil, err
	}

	if tr, ok := base.(*nethttp.Transport); ok {
		configureHTTP2(tr, cfg, logger)
	}

	var rt nethttp.RoundTripper = base
	if opts.Auth != nil {
		rt = &AuthTransport{Base: rt, Hooks: *opts.Auth, Logger: logger}
	}
	rt = &requestIDTransport{base: rt}

	client := &nethttp.Client{
		Transport: rt,
		Timeout:   cfg.RequestTimeout,
	}

	if needsWarmup(cfg) {
		if err := warmupProxy(client, cfg); err != nil {
			logger.Warn().Err(err).Msg("Proxy warmup failed")
		}
	}

	return client, nil
}

// configureHTTP2 enables HTTP/2 on direct connections. Proxies often break
// HTTP/2 multiplexing, so it stays off whenever a proxy is active unless
// FORCE_HTTP2=true. DISABLE_HTTP2=true forces HTTP/1.1 everywhere.
func configureHTTP2(tr *nethttp.Transport, cfg *config.Config, logger *logging.Logger) {
	if os.Getenv("DISABLE_HTTP2") == "true" {
		disableHTTP2(tr)
		return
	}

	if proxyActive(cfg) && os.Getenv("FORCE_HTTP2") != "true" {
		disableHTTP2(tr)
		return
	}

	tr.ForceAttemptHTTP2 = true
	if err := http2.ConfigureTransport(tr); err != nil {
		logger.Debug().Err(err).Msg("HTTP/2 not configured, using HTTP/1.1")
	}
}

func disableHTTP2(tr *nethttp.Transport) {
	tr.ForceAttemptHTTP2 = false
	tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
}

func proxyActive(cfg *config.Config) bool {
	switch strings.ToLower(cfg.ProxyMode) {
	case "no-proxy", "":
		return false
	case "system":
		return os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" ||
			os.Getenv("http_proxy") != "" || os.Getenv("https_proxy") != ""
	default:
		return cfg.ProxyHost != ""
	}
}
