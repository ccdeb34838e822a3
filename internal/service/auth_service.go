package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gym_timer/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTokenTTL = 12 * time.Hour
	tokenIssuer     = "gymtimer"

	// devSigningKey is only used when no key is configured.
	devSigningKey = "gymtimer-dev-signing-key"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrEmptyUsername   = errors.New("username is empty")
	ErrEmptyPassword   = errors.New("password is empty")
)

// AuthConfig holds token signing settings.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// Claims is the JWT payload issued on sign-in.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// AuthService registers users and issues HS256 tokens for them.
type AuthService struct {
	users repository.Authorization
	key   []byte
	ttl   time.Duration
	now   func() time.Time
}

func NewAuthService(users repository.Authorization, cfg AuthConfig) *AuthService {
	key := cfg.SigningKey
	if key == "" {
		key = devSigningKey
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{users: users, key: []byte(key), ttl: ttl, now: time.Now}
}

// SignUp stores a new user with a bcrypt hash of password.
func (s *AuthService) SignUp(username, password string) (int, error) {
	if strings.TrimSpace(username) == "" {
		return 0, ErrEmptyUsername
	}
	if strings.TrimSpace(password) == "" {
		return 0, ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.users.Create(username, string(hash))
}

// GenerateToken checks the credentials and signs a token for the user.
func (s *AuthService) GenerateToken(username, password string) (string, error) {
	u, err := s.users.GetByUsername(username)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidPassword
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: u.ID,
	})
	return token.SignedString(s.key)
}

// ParseToken validates signature, issuer and expiry and returns the user id.
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(accessToken, &claims,
		func(*jwt.Token) (interface{}, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
