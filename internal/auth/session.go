package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/learnhub/learnadmin/internal/events"
	apihttp "github.com/learnhub/learnadmin/internal/http"
	"github.com/learnhub/learnadmin/internal/logging"
	"github.com/learnhub/learnadmin/internal/models"
)

// Refresher exchanges a refresh token for a new token pair.
// *api.Client implements it.
type Refresher interface {
	RefreshSession(ctx context.Context, refreshToken string) (*models.AuthTokens, error)
}

// ErrRefreshUnavailable is returned when a 401 cannot be recovered from
// because no refresh token (or refresher) is available.
var ErrRefreshUnavailable = errors.New("session expired, please log in again")

// ReasonTokenRejected is the auth-state reason published when the backend
// answers 401, before any refresh attempt.
const ReasonTokenRejected = "access token rejected"

// Session is the single owner of authentication state for a process.
// It is safe for concurrent use.
type Session struct {
	store     *Store
	bus       *events.EventBus
	logger    *logging.Logger
	override  string // token from the environment, never persisted
	refresher Refresher

	mu       sync.Mutex
	loggedIn bool

	// refreshMu serializes refresh calls.
	refreshMu sync.Mutex
}

// NewSession creates a session over store. override, when non-empty, is used
// as the access token instead of the stored one and cannot be refreshed.
// bus and logger may be nil.
func NewSession(store *Store, override string, bus *events.EventBus, logger *logging.Logger) *Session {
	s := &Session{
		store:    store,
		bus:      bus,
		logger:   logging.OrNop(logger),
		override: override,
	}
	s.loggedIn = s.Token() != ""
	return s
}

// SetRefresher installs the refresh call. It is set after construction
// because the API client itself is built on top of the session's hooks.
func (s *Session) SetRefresher(r Refresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresher = r
}

// Hooks returns the callbacks for the bearer-token transport.
func (s *Session) Hooks() *apihttp.AuthHooks {
	return &apihttp.AuthHooks{
		Token:         s.Token,
		Unauthorized:  func() { s.setLoggedIn(false, ReasonTokenRejected) },
		Refresh:       s.Refresh,
		RefreshFailed: s.forceLogout,
	}
}

// Token returns the access token to send, or "".
func (s *Session) Token() string {
	if s.override != "" {
		return s.override
	}
	if s.store == nil {
		return ""
	}
	return s.store.AccessToken()
}

// LoggedIn reports the current session state.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// Claims decodes the current access token.
func (s *Session) Claims() (*Claims, error) {
	return ParseClaims(s.Token())
}

// Store returns the underlying credential store.
func (s *Session) Store() *Store {
	return s.store
}

// Login stores the tokens returned by a successful login.
func (s *Session) Login(result *models.LoginResult, email string) error {
	if s.store == nil {
		return errors.New("no credential store configured")
	}
	if err := s.store.SaveTokens(result.Tokens); err != nil {
		return err
	}
	if email == "" {
		email = result.User.Email
	}
	if email != "" {
		if err := s.store.SaveEmail(email); err != nil {
			s.logger.Debug().Err(err).Msg("Failed to remember login email")
		}
	}
	s.setLoggedIn(true, "login")
	return nil
}

// Logout clears stored credentials.
func (s *Session) Logout(reason string) error {
	var err error
	if s.store != nil {
		err = s.store.Clear()
	}
	s.setLoggedIn(false, reason)
	return err
}

// Refresh performs at most one refresh call and stores the result.
// Concurrent callers are serialized: a caller that finds the refresh token
// already rotated by another caller reuses the new tokens without calling
// the backend.
func (s *Session) Refresh(ctx context.Context) error {
	if s.override != "" {
		return fmt.Errorf("%w (token from environment cannot be refreshed)", ErrRefreshUnavailable)
	}
	if s.store == nil {
		return ErrRefreshUnavailable
	}

	seen := s.store.RefreshToken()

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.Lock()
	refresher := s.refresher
	s.mu.Unlock()

	refreshToken := s.store.RefreshToken()
	if refreshToken != "" && refreshToken != seen {
		s.logger.Debug().Msg("Session already refreshed")
		s.setLoggedIn(true, "token refreshed")
		return nil
	}
	if refresher == nil || refreshToken == "" {
		return ErrRefreshUnavailable
	}

	tokens, err := refresher.RefreshSession(apihttp.WithoutRefresh(ctx), refreshToken)
	if err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}
	if err := s.store.SaveTokens(*tokens); err != nil {
		return err
	}

	s.logger.Debug().Msg("Session refreshed")
	s.setLoggedIn(true, "token refreshed")
	return nil
}

// forceLogout runs when a refresh fails: credentials are cleared so the
// next command asks for a fresh login.
func (s *Session) forceLogout(cause error) {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		return
	}
	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to clear stored credentials")
		}
	}
	// The 401 already flipped the state, so publish unconditionally: this
	// event carries the reason the session ended.
	s.mu.Lock()
	s.loggedIn = false
	s.mu.Unlock()
	if s.bus != nil {
		s.bus.PublishAuthState(events.AuthLoggedOut, cause.Error())
	}
}

func (s *Session) setLoggedIn(v bool, reason string) {
	s.mu.Lock()
	changed := s.loggedIn != v
	s.loggedIn = v
	s.mu.Unlock()

	if !changed || s.bus == nil {
		return
	}
	state := events.AuthLoggedOut
	if v {
		state = events.AuthLoggedIn
	}
	s.bus.PublishAuthState(state, reason)
}
