package api

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"

	"github.com/tidwall/gjson"

	apihttp "github.com/learnhub/learnadmin/internal/http"
	"github.com/learnhub/learnadmin/internal/models"
	"github.com/learnhub/learnadmin/internal/validation"
)

// Auth endpoint paths.
const (
	PathLogin   = "/auth/login"
	PathRefresh = "/auth/refresh-token"
	PathLogout  = "/auth/logout"
)

// Token responses are not uniform across backend versions.
var (
	accessTokenPaths  = []string{"accessToken", "token", "access_token", "data.accessToken", "data.token"}
	refreshTokenPaths = []string{"refreshToken", "refresh_token", "data.refreshToken"}
	userPaths         = []string{"user", "data.user", "admin"}
)

// Login exchanges credentials for a token pair. A 401 here is returned as
// an *APIError without attempting a refresh.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.call(apihttp.WithoutRefresh(ctx), nethttp.MethodPost, PathLogin, req, "", &raw); err != nil {
		return nil, err
	}

	tokens, err := parseTokens(raw)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", PathLogin, err)
	}

	result := &models.LoginResult{Tokens: *tokens}
	if u := firstExisting(raw, userPaths); u.IsObject() {
		if err := json.Unmarshal([]byte(u.Raw), &result.User); err != nil {
			c.logger.Debug().Err(err).Msg("Ignoring undecodable user in login response")
		}
	}
	return result, nil
}

// RefreshSession implements auth.Refresher.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	body := map[string]string{"refreshToken": refreshToken}

	var raw json.RawMessage
	if err := c.call(apihttp.WithoutRefresh(ctx), nethttp.MethodPost, PathRefresh, body, "", &raw); err != nil {
		return nil, err
	}

	tokens, err := parseTokens(raw)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", PathRefresh, err)
	}
	return tokens, nil
}

// Logout invalidates the refresh token server-side. Local credentials are
// cleared by the session regardless of the outcome.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refreshToken": refreshToken}
	return c.call(apihttp.WithoutRefresh(ctx), nethttp.MethodPost, PathLogout, body, "", nil)
}

func parseTokens(raw []byte) (*models.AuthTokens, error) {
	access := firstExisting(raw, accessTokenPaths)
	if access.Type != gjson.String || access.Str == "" {
		return nil, fmt.Errorf("%w: no access token in response", ErrUnexpectedShape)
	}
	return &models.AuthTokens{
		AccessToken:  access.Str,
		RefreshToken: firstExisting(raw, refreshTokenPaths).String(),
	}, nil
}

func firstExisting(raw []byte, paths []string) gjson.Result {
	for _, p := range paths {
		if r := gjson.GetBytes(raw, p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}
