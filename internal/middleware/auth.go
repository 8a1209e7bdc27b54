// Package middleware provides the bearer-token gate and the ambient HTTP
// middleware (request IDs, request logging, panic recovery).
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"bank-demo/internal/domain"
	"bank-demo/internal/metrics"
	"bank-demo/internal/token"
)

const bearerScheme = "Bearer"

// TokenVerifier checks a raw bearer token and returns its claims.
// Implemented by token.Codec.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// ErrorWriter renders an error response. The API layer owns status mapping
// and JSON shaping, so the gate delegates to it.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Gate verifies bearer tokens in front of protected operations.
// It reads only the verifier's immutable secret and is safe for concurrent use.
type Gate struct {
	verifier TokenVerifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewGate creates a gate. m may be nil; a nil logger falls back to slog.Default().
func NewGate(verifier TokenVerifier, m *metrics.Metrics, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{verifier: verifier, metrics: m, logger: logger}
}

// Authenticate checks a raw Authorization header value and returns the
// verified identity. Failures are *domain.AuthError values of kind NoToken,
// MalformedHeader, InvalidToken or TokenExpired.
func (g *Gate) Authenticate(header string) (string, error) {
	if header == "" {
		return "", domain.ErrAuth(domain.KindNoToken, "authorization header is required")
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != bearerScheme || parts[1] == "" {
		return "", domain.ErrAuth(domain.KindMalformedHeader, "authorization header must be 'Bearer <token>'")
	}

	claims, err := g.verifier.Verify(parts[1])
	if err != nil {
		return "", err
	}
	return claims.Identity, nil
}

// Middleware authenticates every request and stores the identity in the
// request context. Rejected requests never reach next.
func (g *Gate) Middleware(writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				identity string
				err      error
			)
			headers := r.Header.Values("Authorization")
			switch len(headers) {
			case 0:
				identity, err = g.Authenticate("")
			case 1:
				identity, err = g.Authenticate(headers[0])
			default:
				err = domain.ErrAuth(domain.KindMalformedHeader, "authorization header must be sent once")
			}
			if err != nil {
				g.metrics.ObserveAuthFailure(err)
				g.logger.DebugContext(r.Context(), "request rejected by token gate",
					"kind", domain.KindOf(err),
					"path", r.URL.Path,
					"request_id", RequestIDFromContext(r.Context()),
					"error", errorCause(err),
				)
				w.Header().Set("WWW-Authenticate", bearerScheme)
				writeErr(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithIdentity(r.Context(), identity)))
		})
	}
}

// errorCause returns the underlying verification failure for logging.
func errorCause(err error) string {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) && authErr.Cause != nil {
		return authErr.Cause.Error()
	}
	return err.Error()
}
