package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.PageSize != 10 {
		t.Errorf("expected default PageSize to be 10, got %d", cfg.PageSize)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("expected default MaxRetries to be 0, got %d", cfg.MaxRetries)
	}
	if cfg.ProxyMode != "no-proxy" {
		t.Errorf("expected default ProxyMode to be no-proxy, got %s", cfg.ProxyMode)
	}
	if !cfg.Color {
		t.Error("expected Color to default to true")
	}
	if cfg.DesktopNotifications {
		t.Error("expected DesktopNotifications to default to false")
	}
	require.NoError(t, cfg.Validate())
}

func TestSaveAndLoadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config")

	cfg := &Config{
		BaseURL:              "https://api.example.com/v1",
		RequestTimeout:       45 * time.Second,
		MaxRetries:           2,
		RequestsPerSecond:    2.5,
		Burst:                8,
		ProxyMode:            "basic",
		ProxyHost:            "proxy.corp",
		ProxyPort:            3128,
		ProxyUser:            "alice",
		ProxyPassword:        "s3cret",
		NoProxy:              "localhost,10.0.0.0/8",
		ProxyWarmup:          true,
		PageSize:             25,
		Color:                false,
		DesktopNotifications: true,
	}

	require.NoError(t, Save(cfg, configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("[backend\nbase_url"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults", func(c *Config) {}, nil},
		{"empty base url", func(c *Config) { c.BaseURL = "  " }, ErrMissingBaseURL},
		{"relative base url", func(c *Config) { c.BaseURL = "/api" }, ErrInvalidBaseURL},
		{"ftp base url", func(c *Config) { c.BaseURL = "ftp://host/api" }, ErrInvalidBaseURL},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, ErrInvalidPageSize},
		{"huge page size", func(c *Config) { c.PageSize = 100000 }, ErrInvalidPageSize},
		{"bad proxy", func(c *Config) { c.ProxyMode = "socks" }, ErrInvalidProxyMode},
		{"zero rate", func(c *Config) { c.RequestsPerSecond = 0 }, ErrInvalidRate},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }, ErrInvalidRetries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSet(t *testing.T) {
	cfg := NewConfig()

	require.NoError(t, cfg.Set("backend.base_url", "https://api.example.com/"))
	assert.Equal(t, "https://api.example.com", cfg.BaseURL)

	require.NoError(t, cfg.Set("display.page_size", "50"))
	assert.Equal(t, 50, cfg.PageSize)

	require.NoError(t, cfg.Set("backend.request_timeout_seconds", "30"))
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)

	require.NoError(t, cfg.Set("PROXY.MODE", "NTLM"))
	assert.Equal(t, "ntlm", cfg.ProxyMode)

	assert.Error(t, cfg.Set("display.page_size", "ten"))
	assert.Error(t, cfg.Set("display.unknown", "1"))
}

func TestResolveBaseURL(t *testing.T) {
	cfg := NewConfig()
	cfg.BaseURL = "https://from-config.example.com/"

	t.Setenv(EnvBaseURL, "")
	url, source := ResolveBaseURL("", cfg)
	assert.Equal(t, "https://from-config.example.com", url)
	assert.Equal(t, "config", source)

	t.Setenv(EnvBaseURL, "https://from-env.example.com")
	url, source = ResolveBaseURL("", cfg)
	assert.Equal(t, "https://from-env.example.com", url)
	assert.Equal(t, "environment", source)

	url, source = ResolveBaseURL("https://from-flag.example.com/", cfg)
	assert.Equal(t, "https://from-flag.example.com", url)
	assert.Equal(t, "flag", source)
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(EnvConfig, "/tmp/env-config")
	assert.Equal(t, "/explicit", ResolveConfigPath("/explicit"))
	assert.Equal(t, "/tmp/env-config", ResolveConfigPath(""))
}

func TestAccessTokenOverride(t *testing.T) {
	t.Setenv(EnvToken, "  abc.def.ghi \n")
	assert.Equal(t, "abc.def.ghi", AccessTokenOverride())
}
