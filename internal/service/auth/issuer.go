// Package auth implements the credential issuer: it checks an identity and
// secret against the principal store and signs a bearer token on success.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"bank-demo/internal/domain"
	"bank-demo/internal/metrics"
	"bank-demo/internal/token"
)

// DefaultTokenTTL is used when the configured lifetime is not positive.
const DefaultTokenTTL = 24 * time.Hour

// invalidCredentialsMessage is shared by the unknown-identity and wrong-secret paths.
const invalidCredentialsMessage = "invalid identity or secret"

// dummySecret is compared against when the identity is unknown.
var dummySecret = sha256.Sum256([]byte("bank-demo-no-such-principal"))

// IssuerService exchanges credentials for signed tokens. It keeps no session state.
type IssuerService struct {
	principals domain.PrincipalLookup
	codec      *token.Codec
	ttl        time.Duration
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewIssuerService creates an issuer. m may be nil; a nil logger falls back to slog.Default().
func NewIssuerService(principals domain.PrincipalLookup, codec *token.Codec, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *IssuerService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IssuerService{principals: principals, codec: codec, ttl: ttl, metrics: m, logger: logger}
}

// TTL returns the lifetime given to issued tokens.
func (s *IssuerService) TTL() time.Duration {
	return s.ttl
}

// Issue validates identity and secret and returns a token for identity.
// Unknown identities and wrong secrets produce the same InvalidCredentials error.
func (s *IssuerService) Issue(ctx context.Context, identity, secret string) (*token.Issued, error) {
	if identity == "" || secret == "" {
		err := domain.ErrValidation(domain.KindMissingFields, "identity and secret are required")
		s.metrics.ObserveAuthFailure(err)
		return nil, err
	}

	expected := dummySecret
	known := false
	p, err := s.principals.GetByIdentity(ctx, identity)
	switch {
	case err == nil:
		expected = sha256.Sum256([]byte(p.Secret))
		known = true
	case domain.IsKind(err, domain.KindNotFound):
	default:
		return nil, fmt.Errorf("lookup principal: %w", err)
	}

	given := sha256.Sum256([]byte(secret))
	match := subtle.ConstantTimeCompare(given[:], expected[:]) == 1
	if !known || !match {
		err := domain.ErrAuth(domain.KindInvalidCredentials, invalidCredentialsMessage)
		s.metrics.ObserveAuthFailure(err)
		s.logger.InfoContext(ctx, "login rejected", "identity", identity)
		return nil, err
	}

	issued, err := s.codec.Sign(identity, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.metrics.ObserveTokenIssued()
	s.logger.InfoContext(ctx, "token issued", "identity", identity, "expires_at", issued.ExpiresAt)
	return issued, nil
}
