// Package config provides configuration management for learnadmin.
package config

import (
	"os"
	"strings"
)

// Environment variables consulted during resolution.
const (
	EnvBaseURL = "LEARNADMIN_API_URL"
	EnvToken   = "LEARNADMIN_TOKEN"
	EnvConfig  = "LEARNADMIN_CONFIG"
)

// ResolveBaseURL returns the backend base URL and where it came from.
//
// Priority (highest to lowest):
//  1. flag value (e.g. --api-url)
//  2. LEARNADMIN_API_URL environment variable
//  3. config file / defaults (cfg.BaseURL)
//
// The source is "flag", "environment" or "config".
func ResolveBaseURL(flagValue string, cfg *Config) (string, string) {
	if flagValue != "" {
		return strings.TrimSuffix(flagValue, "/"), "flag"
	}
	if env := os.Getenv(EnvBaseURL); env != "" {
		return strings.TrimSuffix(env, "/"), "environment"
	}
	return strings.TrimSuffix(cfg.BaseURL, "/"), "config"
}

// ResolveConfigPath returns the config file path to use.
// An explicit path wins, then LEARNADMIN_CONFIG, then the default location.
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env
	}
	path, err := DefaultConfigPath()
	if err != nil {
		return ""
	}
	return path
}

// AccessTokenOverride returns a token from LEARNADMIN_TOKEN, if set.
// An override token bypasses the credential store and cannot be refreshed.
func AccessTokenOverride() string {
	return strings.TrimSpace(os.Getenv(EnvToken))
}
