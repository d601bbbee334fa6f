package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trading-journal-go/internal/supabase"

	"go.uber.org/zap"
)

// RemoteProvider delegates identity to the hosted auth API.
type RemoteProvider struct {
	client *supabase.Client
	logger *zap.Logger
	now    func() time.Time
}

var _ Provider = (*RemoteProvider)(nil)

func NewRemoteProvider(client *supabase.Client, logger *zap.Logger) *RemoteProvider {
	return &RemoteProvider{client: client, logger: logger.Named("auth"), now: time.Now}
}

func (p *RemoteProvider) SignUp(ctx context.Context, email, password string) (Session, error) {
	resp, err := p.client.SignUp(ctx, normalizeEmail(email), password)
	if err != nil {
		if s := supabase.StatusOf(err); s >= 400 && s < 500 {
			return Session{}, fmt.Errorf("%w: %w", ErrSignUpRejected, err)
		}
		return Session{}, err
	}

	session := p.toSession(resp)
	if session.AccessToken == "" {
		p.logger.Info("Sign up awaiting email confirmation", zap.String("user_id", session.User.ID))
		return session, ErrConfirmationPending
	}
	p.logger.Info("User signed up", zap.String("user_id", session.User.ID))
	return session, nil
}

func (p *RemoteProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	resp, err := p.client.SignInWithPassword(ctx, normalizeEmail(email), password)
	if err != nil {
		switch supabase.StatusOf(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusUnprocessableEntity:
			return Session{}, ErrInvalidCredentials
		}
		p.logger.Warn("Sign in failed", zap.Error(err))
		return Session{}, err
	}
	return p.toSession(resp), nil
}

func (p *RemoteProvider) SignOut(ctx context.Context, session Session) error {
	if session.AccessToken == "" {
		return nil
	}
	if err := p.client.SignOut(ctx, session.AccessToken); err != nil {
		// An already invalid token means the session is gone anyway.
		if s := supabase.StatusOf(err); s == http.StatusUnauthorized || s == http.StatusForbidden || s == http.StatusNotFound {
			return nil
		}
		return err
	}
	return nil
}

func (p *RemoteProvider) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	resp, err := p.client.RefreshSession(ctx, refreshToken)
	if err != nil {
		if s := supabase.StatusOf(err); s >= 400 && s < 500 {
			return Session{}, ErrSessionExpired
		}
		return Session{}, err
	}
	return p.toSession(resp), nil
}

func (p *RemoteProvider) User(ctx context.Context, accessToken string) (User, error) {
	if accessToken == "" {
		return User{}, ErrNotAuthenticated
	}
	resp, err := p.client.GetUser(ctx, accessToken)
	if err != nil {
		switch supabase.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return User{}, ErrSessionExpired
		}
		return User{}, err
	}
	return User{ID: resp.ID, Email: resp.Email}, nil
}

func (p *RemoteProvider) toSession(resp *supabase.AuthSession) Session {
	s := Session{
		User:         User{ID: resp.User.ID, Email: resp.User.Email},
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	switch {
	case resp.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		s.ExpiresAt = p.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
