package service

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"strings"
	"testing"
	"time"

	"gym_timer/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// memUsers is an in-memory repository.Authorization.
type memUsers struct {
	byName  map[string]*models.User
	nextID  int
	err     error
	creates int
}

func newMemUsers() *memUsers {
	return &memUsers{byName: map[string]*models.User{}, nextID: 1}
}

func (m *memUsers) Create(username, hash string) (int, error) {
	m.creates++
	if m.err != nil {
		return 0, m.err
	}
	u := &models.User{ID: m.nextID, Username: username, PasswordHash: hash}
	m.byName[username] = u
	m.nextID++
	return u.ID, nil
}

func (m *memUsers) GetByUsername(username string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byName[username], nil
}

func signWith(t *testing.T, method jwt.SigningMethod, key interface{}, claims *Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestAuthService_SignUpThenSignIn(t *testing.T) {
	users := newMemUsers()
	svc := NewAuthService(users, AuthConfig{SigningKey: "test-key"})

	id, err := svc.SignUp("coach", "squat-day")
	if err != nil || id != 1 {
		t.Fatalf("SignUp = %d, %v", id, err)
	}
	stored := users.byName["coach"].PasswordHash
	if stored == "squat-day" || bcrypt.CompareHashAndPassword([]byte(stored), []byte("squat-day")) != nil {
		t.Fatalf("password not stored as a bcrypt hash: %q", stored)
	}

	token, err := svc.GenerateToken("coach", "squat-day")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	uid, err := svc.ParseToken(token)
	if err != nil || uid != id {
		t.Fatalf("ParseToken = %d, %v; want %d", uid, err, id)
	}
}

func TestAuthService_SignUpRejects(t *testing.T) {
	boom := errors.New("disk full")
	cases := []struct {
		name     string
		username string
		password string
		repoErr  error
		want     error
		creates  int
	}{
		{"blank username", "  ", "secret1", nil, ErrEmptyUsername, 0},
		{"blank password", "coach", " \t", nil, ErrEmptyPassword, 0},
		{"repository failure", "coach", "secret1", boom, boom, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := newMemUsers()
			users.err = tc.repoErr
			_, err := NewAuthService(users, AuthConfig{}).SignUp(tc.username, tc.password)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if users.creates != tc.creates {
				t.Fatalf("Create called %d times, want %d", users.creates, tc.creates)
			}
		})
	}
}

func TestAuthService_GenerateTokenRejects(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right-one"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("database is locked")

	cases := []struct {
		name     string
		username string
		password string
		repoErr  error
		want     error
	}{
		{"unknown user", "ghost", "right-one", nil, ErrUserNotFound},
		{"wrong password", "coach", "wrong-one", nil, ErrInvalidPassword},
		{"repository failure", "coach", "right-one", boom, boom},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := newMemUsers()
			users.byName["coach"] = &models.User{ID: 4, Username: "coach", PasswordHash: string(hash)}
			users.err = tc.repoErr

			token, err := NewAuthService(users, AuthConfig{}).GenerateToken(tc.username, tc.password)
			if !errors.Is(err, tc.want) || token != "" {
				t.Fatalf("GenerateToken = %q, %v; want error %v", token, err, tc.want)
			}
		})
	}
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	const key = "test-key"
	now := time.Now()
	valid := func() *Claims {
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
			UserID: 9,
		}
	}
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	foreign := valid()
	foreign.Issuer = "someone-else"

	cases := map[string]string{
		"malformed":      "not-a-jwt",
		"other key":      signWith(t, jwt.SigningMethodHS256, []byte("other-key"), valid()),
		"expired":        signWith(t, jwt.SigningMethodHS256, []byte(key), expired),
		"wrong issuer":   signWith(t, jwt.SigningMethodHS256, []byte(key), foreign),
		"non-HMAC alg":   signWith(t, jwt.SigningMethodRS256, rsaKey, valid()),
		"HS512":          signWith(t, jwt.SigningMethodHS512, []byte(key), valid()),
	}

	svc := NewAuthService(newMemUsers(), AuthConfig{SigningKey: key})
	if uid, err := svc.ParseToken(signWith(t, jwt.SigningMethodHS256, []byte(key), valid())); err != nil || uid != 9 {
		t.Fatalf("control token: %d, %v", uid, err)
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestAuthService_TokenTTLFollowsConfig(t *testing.T) {
	users := newMemUsers()
	svc := NewAuthService(users, AuthConfig{SigningKey: "k", TokenTTL: time.Hour})
	if _, err := svc.SignUp("coach", "secret1"); err != nil {
		t.Fatal(err)
	}

	issued := time.Date(2025, time.April, 1, 6, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, err := svc.GenerateToken("coach", "secret1")
	if err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return issued.Add(59 * time.Minute) }
	if _, err := svc.ParseToken(token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}
	svc.now = func() time.Time { return issued.Add(61 * time.Minute) }
	if _, err := svc.ParseToken(token); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("want expiry error, got %v", err)
	}
}

func TestNewAuthService_Defaults(t *testing.T) {
	svc := NewAuthService(newMemUsers(), AuthConfig{})
	if string(svc.key) != devSigningKey || svc.ttl != DefaultTokenTTL {
		t.Fatalf("defaults not applied: key=%q ttl=%v", svc.key, svc.ttl)
	}
}
