// Package auth issues and resolves user sessions. A Session is an explicit
// value handed to every operation that needs an owner; nothing here keeps a
// current user in package state.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrSessionExpired      = errors.New("session expired, sign in again")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrConfirmationPending = errors.New("account created, confirm your email before signing in")
	ErrSignUpRejected      = errors.New("sign up rejected")
)

// expirySkew treats tokens this close to expiry as already expired.
const expirySkew = 30 * time.Second

// User identifies the owner of a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is issued at sign in or sign up and invalidated at sign out or
// expiry.
type Session struct {
	User         User      `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the session carries a user and an access token.
func (s Session) Valid() bool {
	return s.User.ID != "" && s.AccessToken != ""
}

// Expired reports whether the access token is at or past its expiry at now.
// An unknown expiry is read from the token's exp claim.
func (s Session) Expired(now time.Time) bool {
	exp := s.ExpiresAt
	if exp.IsZero() {
		exp = tokenExpiry(s.AccessToken)
	}
	if exp.IsZero() {
		return false
	}
	return !now.Add(expirySkew).Before(exp)
}

// tokenExpiry reads exp from a JWT without verifying it. Verification is the
// provider's job.
func tokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Provider is an identity backend.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (Session, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, session Session) error
	Refresh(ctx context.Context, refreshToken string) (Session, error)
	// User resolves the owner of an access token.
	User(ctx context.Context, accessToken string) (User, error)
}

// Restore re-attaches a persisted session after a restart. An unexpired access
// token is checked against the provider; otherwise the refresh token is used.
// Any authentication failure is reported as ErrSessionExpired so callers can
// fall back to the signed-out state.
func Restore(ctx context.Context, p Provider, session Session, now time.Time) (Session, error) {
	if session.AccessToken == "" && session.RefreshToken == "" {
		return Session{}, ErrNotAuthenticated
	}

	if session.AccessToken != "" && !session.Expired(now) {
		user, err := p.User(ctx, session.AccessToken)
		if err == nil {
			session.User = user
			if session.ExpiresAt.IsZero() {
				session.ExpiresAt = tokenExpiry(session.AccessToken)
			}
			return session, nil
		}
		if !isAuthFailure(err) {
			return Session{}, err
		}
	}

	if session.RefreshToken == "" {
		return Session{}, ErrSessionExpired
	}
	refreshed, err := p.Refresh(ctx, session.RefreshToken)
	if err != nil {
		if isAuthFailure(err) {
			return Session{}, ErrSessionExpired
		}
		return Session{}, err
	}
	return refreshed, nil
}

func isAuthFailure(err error) bool {
	return errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrInvalidCredentials)
}

// SaveSession writes the session to path, readable by the owner only.
func SaveSession(path string, session Session) error {
	b, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// LoadSession reads a session saved by SaveSession. A missing file yields
// ErrNotAuthenticated.
func LoadSession(path string) (Session, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNotAuthenticated
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to read session file: %w", err)
	}
	var session Session
	if err := json.Unmarshal(b, &session); err != nil {
		return Session{}, fmt.Errorf("failed to decode session file: %w", err)
	}
	return session, nil
}

// ClearSession removes the session file if present.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
