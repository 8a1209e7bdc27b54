// Package token signs and verifies the HS256 bearer tokens shared by the
// credential issuer and the token gate.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bank-demo/internal/domain"
)

// Claims is the payload carried by every bearer token.
type Claims struct {
	Identity string `json:"identity"`
	jwt.RegisteredClaims
}

// Issued is a freshly signed token together with its validity window.
type Issued struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies tokens with one shared secret.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewCodec creates a codec for the given HS256 secret.
func NewCodec(secret, issuer string) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	return &Codec{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// WithClock returns a copy of the codec that reads time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	if now != nil {
		cp.now = now
	}
	return &cp
}

// Now returns the codec's current time.
func (c *Codec) Now() time.Time {
	return c.now()
}

// Sign issues a token for identity that expires ttl from now.
func (c *Codec) Sign(identity string, ttl time.Duration) (*Issued, error) {
	if identity == "" {
		return nil, fmt.Errorf("sign token: identity is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("sign token: ttl must be positive, got %s", ttl)
	}

	now := c.now()
	claims := Claims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			Issuer:    c.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Issued{
		Token:     signed,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks the signature and expiry of tokenString and returns its claims.
// Failures are *domain.AuthError values of kind InvalidToken or TokenExpired;
// TokenExpired is only reported once the signature has been verified.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) && claims.ExpiresAt != nil {
			expired := domain.ErrTokenExpired(claims.ExpiresAt.Time)
			expired.Cause = err
			return nil, expired
		}
		return nil, invalidToken(err)
	}
	if claims.Identity == "" {
		return nil, invalidToken(errors.New("identity claim is missing"))
	}
	return claims, nil
}

func invalidToken(cause error) *domain.AuthError {
	return &domain.AuthError{
		Kind:    domain.KindInvalidToken,
		Message: "invalid token",
		Cause:   cause,
	}
}
