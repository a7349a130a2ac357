// Package auth implements the single shared admin login: a password check
// that issues HS256 tokens, and the matching verification.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Subject is the only principal.
const Subject = "admin"

const issuer = "shelf"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Token is the login response.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticator checks the admin password and signs tokens.
type Authenticator struct {
	password [32]byte
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// New creates an authenticator. Empty password or secret always refuse.
func New(password, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		password: sha256.Sum256([]byte(password)),
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login returns a signed token when password matches.
func (a *Authenticator) Login(password string) (Token, error) {
	if len(a.secret) == 0 || password == "" {
		return Token{}, ErrInvalidCredentials
	}
	given := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(given[:], a.password[:]) != 1 {
		return Token{}, ErrInvalidCredentials
	}

	now := a.now()
	expires := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   Subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Token{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return Token{Token: signed, ExpiresAt: expires.UTC()}, nil
}

// Verify parses a token and checks signature, expiry, issuer and subject.
func (a *Authenticator) Verify(raw string) (*jwt.RegisteredClaims, error) {
	if len(a.secret) == 0 || raw == "" {
		return nil, ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(Subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
