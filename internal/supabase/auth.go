package supabase

import (
	"context"
	"fmt"
	"net/http"
)

// AuthUser is the identity part of an auth response.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthSession is a token pair issued by the auth endpoints.
type AuthSession struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	ExpiresAt    int64    `json:"expires_at"`
	User         AuthUser `json:"user"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInWithPassword exchanges email and password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*AuthSession, error) {
	req := c.newRequest(ctx, "").
		SetQueryParam("grant_type", "password").
		SetBody(credentials{Email: email, Password: password}).
		SetResult(&AuthSession{})

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/v1/token", req, false)
	if err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	return resp.Result().(*AuthSession), nil
}

// signUpResponse is either a full session or, when email confirmation is
// required, the bare user object.
type signUpResponse struct {
	AuthSession
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignUp registers a new account. The returned session has empty tokens when
// the backend requires email confirmation first.
func (c *Client) SignUp(ctx context.Context, email, password string) (*AuthSession, error) {
	req := c.newRequest(ctx, "").
		SetBody(credentials{Email: email, Password: password}).
		SetResult(&signUpResponse{})

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/v1/signup", req, false)
	if err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}

	result := resp.Result().(*signUpResponse)
	session := result.AuthSession
	if session.User.ID == "" {
		session.User = AuthUser{ID: result.ID, Email: result.Email}
	}
	return &session, nil
}

// RefreshSession trades a refresh token for a new session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*AuthSession, error) {
	req := c.newRequest(ctx, "").
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&AuthSession{})

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/v1/token", req, false)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	return resp.Result().(*AuthSession), nil
}

// GetUser resolves the user behind an access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	req := c.newRequest(ctx, accessToken).
		SetResult(&AuthUser{})

	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/v1/user", req, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return resp.Result().(*AuthUser), nil
}

// SignOut revokes the session behind the access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req := c.newRequest(ctx, accessToken)
	if _, err := c.doRequest(ctx, http.MethodPost, "/auth/v1/logout", req, false); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}
