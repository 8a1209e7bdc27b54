package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"bank-demo/internal/domain"
	"bank-demo/internal/middleware"
)

const internalErrorMessage = "internal server error"

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code           int          `json:"code"`
	Error          string       `json:"error"`
	Message        string       `json:"message"`
	CurrentBalance *json.Number `json:"currentBalance,omitempty"`
	ExpiredAt      string       `json:"expiredAt,omitempty"`
}

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	switch domain.KindOf(err) {
	case domain.KindMissingFields, domain.KindInvalidAmount, domain.KindNonPositiveAmount,
		domain.KindInvalidBody, domain.KindInsufficientFunds:
		return http.StatusBadRequest
	case domain.KindInvalidCredentials, domain.KindNoToken, domain.KindMalformedHeader,
		domain.KindInvalidToken, domain.KindTokenExpired:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorResponder turns errors into JSON responses. Internal detail is only
// exposed outside production.
type errorResponder struct {
	logger     *slog.Logger
	production bool
}

func (e *errorResponder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	body := ErrorResponse{
		Code:    status,
		Error:   string(domain.KindOf(err)),
		Message: err.Error(),
	}

	var insufficient *domain.InsufficientFundsError
	if errors.As(err, &insufficient) {
		balance := json.Number(insufficient.Balance.String())
		body.CurrentBalance = &balance
	}
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		if authErr.ExpiredAt != nil {
			body.ExpiredAt = authErr.ExpiredAt.UTC().Format(time.RFC3339)
		}
		if status == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
	}

	if status == http.StatusInternalServerError {
		e.logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
		body.Error = string(domain.KindInternal)
		if e.production {
			body.Message = internalErrorMessage
		}
	}

	writeJSON(w, status, body)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Code:    http.StatusNotFound,
		Error:   string(domain.KindNotFound),
		Message: "route not found",
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Code:    http.StatusMethodNotAllowed,
		Error:   "MethodNotAllowed",
		Message: "method " + r.Method + " not allowed on " + r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
