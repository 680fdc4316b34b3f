package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrEmptySecret   = errors.New("token secret must not be empty")
	ErrTokenIssuance = errors.New("failed to issue tokens")
)

// Principal is the identity carried by a valid session token.
type Principal struct {
	UserID uint
	Email  string
}

// Outcome is the result of validating a token pair.
// The zero value is a rejection and carries no principal.
type Outcome struct {
	Principal     Principal
	Authenticated bool
}

// Rejected is the single outcome for every failed check.
var Rejected = Outcome{}

// TokenPair is what a successful login hands back to the client.
// Session travels in an HttpOnly cookie; AntiForgery must be echoed in a header.
type TokenPair struct {
	AntiForgery string
	Session     string
	ExpiresAt   time.Time
}

// SessionClaims is the signed payload of a session token.
type SessionClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	CSRF   string `json:"csrf"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates session token pairs. It holds no state
// besides the signing secret and clock, so it is safe for concurrent use.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		m.now = now
	}
}

// NewTokenManager creates a manager signing with secret (HMAC-SHA256).
func NewTokenManager(secret []byte, opts ...TokenOption) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	m := &TokenManager{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Now returns the manager's current time.
func (m *TokenManager) Now() time.Time {
	return m.now()
}

// Issue mints a fresh anti-forgery value and a session token embedding it.
func (m *TokenManager) Issue(userID uint, email string, expiry time.Time) (TokenPair, error) {
	csrf, err := uuid.NewRandom()
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: anti-forgery value: %v", ErrTokenIssuance, err)
	}

	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		CSRF:   csrf.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: sign: %v", ErrTokenIssuance, err)
	}

	return TokenPair{
		AntiForgery: claims.CSRF,
		Session:     signed,
		ExpiresAt:   expiry,
	}, nil
}

// Authenticate checks the signature and expiry of session and that
// antiForgery matches the value embedded in it. Any failure yields Rejected.
func (m *TokenManager) Authenticate(antiForgery, session string) (out Outcome) {
	if antiForgery == "" || session == "" {
		return Rejected
	}

	defer func() {
		if r := recover(); r != nil {
			out = Rejected
		}
	}()

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(session, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || claims.UserID == 0 {
		return Rejected
	}

	if claims.CSRF == "" || subtle.ConstantTimeCompare([]byte(claims.CSRF), []byte(antiForgery)) != 1 {
		return Rejected
	}

	return Outcome{
		Principal:     Principal{UserID: claims.UserID, Email: claims.Email},
		Authenticated: true,
	}
}

func (m *TokenManager) keyFunc(*jwt.Token) (any, error) {
	return m.secret, nil
}
