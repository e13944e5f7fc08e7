// Package auth owns the admin session: persisted tokens, the logged-in /
// logged-out state and the refresh flow the HTTP transport calls into.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/learnhub/learnadmin/internal/models"
)

// Store keys.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyEmail        = "email"
)

// ErrNoCredentials is returned when nothing is stored.
var ErrNoCredentials = errors.New("not logged in")

// Store persists the token pair under the credentials directory, one file
// per key, readable only by the current user.
type Store struct {
	d *diskv.Diskv
}

// NewStore opens (or creates) the credential store at dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("credential store directory is empty")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}
	return &Store{d: diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    func(string) []string { return []string{} },
		FilePerm:     0600,
		PathPerm:     0700,
		CacheSizeMax: 0,
	})}, nil
}

// Tokens returns the stored token pair, or ErrNoCredentials.
func (s *Store) Tokens() (models.AuthTokens, error) {
	access := s.read(keyAccessToken)
	if access == "" {
		return models.AuthTokens{}, ErrNoCredentials
	}
	return models.AuthTokens{
		AccessToken:  access,
		RefreshToken: s.read(keyRefreshToken),
	}, nil
}

// AccessToken returns the stored access token or "".
func (s *Store) AccessToken() string {
	return s.read(keyAccessToken)
}

// RefreshToken returns the stored refresh token or "".
func (s *Store) RefreshToken() string {
	return s.read(keyRefreshToken)
}

// Email returns the email used at the last login, or "".
func (s *Store) Email() string {
	return s.read(keyEmail)
}

// SaveTokens stores a new token pair. An empty refresh token keeps the
// previous one, since some refresh responses only rotate the access token.
func (s *Store) SaveTokens(t models.AuthTokens) error {
	if t.AccessToken == "" {
		return errors.New("refusing to store an empty access token")
	}
	if err := s.d.WriteString(keyAccessToken, t.AccessToken); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	if t.RefreshToken != "" {
		if err := s.d.WriteString(keyRefreshToken, t.RefreshToken); err != nil {
			return fmt.Errorf("failed to store refresh token: %w", err)
		}
	}
	return nil
}

// SaveEmail remembers the login email for `whoami` and the next prompt.
func (s *Store) SaveEmail(email string) error {
	return s.d.WriteString(keyEmail, email)
}

// Clear removes both tokens. The remembered email is kept.
func (s *Store) Clear() error {
	var errs []error
	for _, key := range []string{keyAccessToken, keyRefreshToken} {
		if !s.d.Has(key) {
			continue
		}
		if err := s.d.Erase(key); err != nil {
			errs = append(errs, fmt.Errorf("failed to erase %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) read(key string) string {
	if !s.d.Has(key) {
		return ""
	}
	return strings.TrimSpace(s.d.ReadString(key))
}
