package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trading-journal-go/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 6
	refreshTokenTTL   = 30 * 24 * time.Hour
)

// userRecord is an account of the local provider.
type userRecord struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

// refreshRecord is an outstanding refresh token. Tokens are single use.
type refreshRecord struct {
	Token     string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (refreshRecord) TableName() string { return "refresh_tokens" }

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LocalProvider keeps accounts in the local database and signs HS256 access
// tokens.
type LocalProvider struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider migrates the account tables and returns the provider.
func NewLocalProvider(db *gorm.DB, cfg config.Auth, logger *zap.Logger) (*LocalProvider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("local auth requires a jwt secret")
	}
	if err := db.AutoMigrate(&userRecord{}, &refreshRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate auth tables: %w", err)
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &LocalProvider{
		db:     db,
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		logger: logger.Named("auth"),
		now:    time.Now,
	}, nil
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Session{}, fmt.Errorf("%w: email is required", ErrSignUpRejected)
	}
	if len(password) < minPasswordLength {
		return Session{}, fmt.Errorf("%w: password must be at least %d characters", ErrSignUpRejected, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := userRecord{ID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Session{}, fmt.Errorf("%w: email already registered", ErrSignUpRejected)
		}
		return Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	p.logger.Info("User signed up", zap.String("user_id", user.ID))
	return p.issue(ctx, user)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	var user userRecord
	err := p.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	return p.issue(ctx, user)
}

// SignOut revokes every refresh token of the session's user. Access tokens
// already handed out stay valid until they expire.
func (p *LocalProvider) SignOut(ctx context.Context, session Session) error {
	if session.User.ID == "" {
		return nil
	}
	if err := p.db.WithContext(ctx).Where("user_id = ?", session.User.ID).Delete(&refreshRecord{}).Error; err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// Refresh exchanges a refresh token for a new session. The token is spent
// even when it turns out to be expired.
func (p *LocalProvider) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	var (
		session Session
		expired bool
	)
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec refreshRecord
		err := tx.Where("token = ?", refreshToken).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionExpired
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&rec).Error; err != nil {
			return err
		}
		if !p.now().Before(rec.ExpiresAt) {
			expired = true
			return nil
		}

		var user userRecord
		if err := tx.First(&user, "id = ?", rec.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				expired = true
				return nil
			}
			return err
		}
		session, err = p.issueTx(tx, user)
		return err
	})
	if expired || errors.Is(err, ErrSessionExpired) {
		return Session{}, ErrSessionExpired
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to refresh session: %w", err)
	}
	return session, nil
}

func (p *LocalProvider) User(ctx context.Context, accessToken string) (User, error) {
	if accessToken == "" {
		return User{}, ErrNotAuthenticated
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return User{}, ErrSessionExpired
		}
		return User{}, ErrNotAuthenticated
	}

	var user userRecord
	err = p.db.WithContext(ctx).First(&user, "id = ?", claims.Subject).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrNotAuthenticated
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to look up user: %w", err)
	}
	return User{ID: user.ID, Email: user.Email}, nil
}

func (p *LocalProvider) issue(ctx context.Context, user userRecord) (Session, error) {
	return p.issueTx(p.db.WithContext(ctx), user)
}

func (p *LocalProvider) issueTx(tx *gorm.DB, user userRecord) (Session, error) {
	now := p.now()
	expiresAt := now.Add(p.ttl)

	claims := accessClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh := refreshRecord{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(refreshTokenTTL),
	}
	if err := tx.Create(&refresh).Error; err != nil {
		return Session{}, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return Session{
		User:         User{ID: user.ID, Email: user.Email},
		AccessToken:  access,
		RefreshToken: refresh.Token,
		// jwt NumericDate has second precision
		ExpiresAt: expiresAt.Truncate(time.Second),
	}, nil
}
