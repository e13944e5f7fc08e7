// Package config provides configuration management for learnadmin.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/learnhub/learnadmin/internal/constants"
)

// Config is the on-disk configuration of the admin console.
//
// Config file location:
//   - Windows: %APPDATA%\learnadmin\config
//   - Unix: ~/.config/learnadmin/config
//
// INI format:
//
//	[backend]
//	base_url = https://api.example.com
//	request_timeout_seconds = 0
//	max_retries = 0
//	requests_per_second = 5
//	burst = 20
//
//	[proxy]
//	mode = no-proxy
//	host =
//	port = 8080
//	user =
//	password =
//	no_proxy =
//	warmup = false
//
//	[display]
//	page_size = 10
//	color = true
//
//	[notifications]
//	desktop = false
type Config struct {
	// Backend connection settings
	BaseURL           string
	RequestTimeout    time.Duration // 0 = no client-side timeout
	MaxRetries        int
	RequestsPerSecond float64
	Burst             float64

	// Proxy settings
	ProxyMode     string // "no-proxy", "system", "basic", "ntlm"
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string
	NoProxy       string // Comma-separated list of hosts to bypass proxy
	ProxyWarmup   bool

	// Display settings
	PageSize int
	Color    bool

	// DesktopNotifications mirrors toasts to the OS notification center.
	DesktopNotifications bool
}

// Validation errors
var (
	ErrMissingBaseURL   = errors.New("base_url is required")
	ErrInvalidBaseURL   = errors.New("base_url must be an absolute http(s) URL")
	ErrInvalidPageSize  = fmt.Errorf("page_size must be between 1 and %d", constants.MaxPageSize)
	ErrInvalidProxyMode = errors.New("proxy mode must be one of no-proxy, system, basic, ntlm")
	ErrInvalidRate      = errors.New("requests_per_second and burst must be positive")
	ErrInvalidRetries   = errors.New("max_retries must be between 0 and 10")
)

// Keys accepted by Set, in "section.key" form.
var settableKeys = []string{
	"backend.base_url",
	"backend.request_timeout_seconds",
	"backend.max_retries",
	"backend.requests_per_second",
	"backend.burst",
	"proxy.mode",
	"proxy.host",
	"proxy.port",
	"proxy.user",
	"proxy.password",
	"proxy.no_proxy",
	"proxy.warmup",
	"display.page_size",
	"display.color",
	"notifications.desktop",
}

// SettableKeys returns the keys accepted by Set.
func SettableKeys() []string {
	out := make([]string, len(settableKeys))
	copy(out, settableKeys)
	return out
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:           "http://localhost:5000/api",
		MaxRetries:        constants.DefaultMaxRetries,
		RequestsPerSecond: constants.DefaultRequestsPerSecond,
		Burst:             constants.DefaultBurst,
		ProxyMode:         "no-proxy",
		ProxyPort:         constants.DefaultProxyPort,
		PageSize:          constants.DefaultPageSize,
		Color:             true,
	}
}

// Load reads configuration from an INI file.
// If the file doesn't exist, returns a config with default values and no error.
// If the file exists but is invalid, returns an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	backend := iniFile.Section("backend")
	cfg.BaseURL = backend.Key("base_url").MustString(cfg.BaseURL)
	cfg.RequestTimeout = time.Duration(backend.Key("request_timeout_seconds").MustInt(0)) * time.Second
	cfg.MaxRetries = backend.Key("max_retries").MustInt(cfg.MaxRetries)
	cfg.RequestsPerSecond = backend.Key("requests_per_second").MustFloat64(cfg.RequestsPerSecond)
	cfg.Burst = backend.Key("burst").MustFloat64(cfg.Burst)

	proxy := iniFile.Section("proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(cfg.ProxyPort)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.ProxyPassword = proxy.Key("password").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	display := iniFile.Section("display")
	cfg.PageSize = display.Key("page_size").MustInt(cfg.PageSize)
	cfg.Color = display.Key("color").MustBool(true)

	cfg.DesktopNotifications = iniFile.Section("notifications").Key("desktop").MustBool(false)

	return cfg, nil
}

// Save writes configuration to an INI file.
// Creates parent directories if they don't exist. The proxy password is
// stored in the file, so the file is written with owner-only permissions.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	path, err := ExpandPath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	backend, err := iniFile.NewSection("backend")
	if err != nil {
		return fmt.Errorf("failed to create backend section: %w", err)
	}
	backend.Key("base_url").SetValue(cfg.BaseURL)
	backend.Key("request_timeout_seconds").SetValue(strconv.Itoa(int(cfg.RequestTimeout / time.Second)))
	backend.Key("max_retries").SetValue(strconv.Itoa(cfg.MaxRetries))
	backend.Key("requests_per_second").SetValue(strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64))
	backend.Key("burst").SetValue(strconv.FormatFloat(cfg.Burst, 'f', -1, 64))

	proxy, err := iniFile.NewSection("proxy")
	if err != nil {
		return fmt.Errorf("failed to create proxy section: %w", err)
	}
	proxy.Key("mode").SetValue(cfg.ProxyMode)
	proxy.Key("host").SetValue(cfg.ProxyHost)
	proxy.Key("port").SetValue(strconv.Itoa(cfg.ProxyPort))
	proxy.Key("user").SetValue(cfg.ProxyUser)
	proxy.Key("password").SetValue(cfg.ProxyPassword)
	proxy.Key("no_proxy").SetValue(cfg.NoProxy)
	proxy.Key("warmup").SetValue(strconv.FormatBool(cfg.ProxyWarmup))

	display, err := iniFile.NewSection("display")
	if err != nil {
		return fmt.Errorf("failed to create display section: %w", err)
	}
	display.Key("page_size").SetValue(strconv.Itoa(cfg.PageSize))
	display.Key("color").SetValue(strconv.FormatBool(cfg.Color))

	notifications, err := iniFile.NewSection("notifications")
	if err != nil {
		return fmt.Errorf("failed to create notifications section: %w", err)
	}
	notifications.Key("desktop").SetValue(strconv.FormatBool(cfg.DesktopNotifications))

	// Temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks that the configuration can be used to build a client.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidBaseURL
	}
	if cfg.PageSize < 1 || cfg.PageSize > constants.MaxPageSize {
		return ErrInvalidPageSize
	}
	switch strings.ToLower(cfg.ProxyMode) {
	case "", "no-proxy", "system", "basic", "ntlm":
	default:
		return ErrInvalidProxyMode
	}
	if cfg.RequestsPerSecond <= 0 || cfg.Burst <= 0 {
		return ErrInvalidRate
	}
	if cfg.MaxRetries < 0 || cfg.MaxRetries > 10 {
		return ErrInvalidRetries
	}
	return nil
}

// Set assigns a single "section.key" value, parsing it to the field's type.
func (cfg *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	var err error
	switch strings.ToLower(key) {
	case "backend.base_url":
		cfg.BaseURL = strings.TrimSuffix(value, "/")
	case "backend.request_timeout_seconds":
		var secs int
		secs, err = strconv.Atoi(value)
		cfg.RequestTimeout = time.Duration(secs) * time.Second
	case "backend.max_retries":
		cfg.MaxRetries, err = strconv.Atoi(value)
	case "backend.requests_per_second":
		cfg.RequestsPerSecond, err = strconv.ParseFloat(value, 64)
	case "backend.burst":
		cfg.Burst, err = strconv.ParseFloat(value, 64)
	case "proxy.mode":
		cfg.ProxyMode = strings.ToLower(value)
	case "proxy.host":
		cfg.ProxyHost = value
	case "proxy.port":
		cfg.ProxyPort, err = strconv.Atoi(value)
	case "proxy.user":
		cfg.ProxyUser = value
	case "proxy.password":
		cfg.ProxyPassword = value
	case "proxy.no_proxy":
		cfg.NoProxy = value
	case "proxy.warmup":
		cfg.ProxyWarmup, err = strconv.ParseBool(value)
	case "display.page_size":
		cfg.PageSize, err = strconv.Atoi(value)
	case "display.color":
		cfg.Color, err = strconv.ParseBool(value)
	case "notifications.desktop":
		cfg.DesktopNotifications, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(settableKeys, ", "))
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	return nil
}
