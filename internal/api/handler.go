// Package api exposes the issuer and ledger over HTTP+JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"bank-demo/internal/domain"
	"bank-demo/internal/service/ledger"
	"bank-demo/internal/token"
)

const maxBodyBytes = 1 << 20

// CredentialIssuer exchanges an identity and secret for a signed token.
type CredentialIssuer interface {
	Issue(ctx context.Context, identity, secret string) (*token.Issued, error)
}

// Ledger is the account contract used by the protected endpoints.
type Ledger interface {
	Balance(ctx context.Context, identity string) (*domain.Account, error)
	Credit(ctx context.Context, identity string, amount decimal.Decimal) (*domain.Account, error)
	Debit(ctx context.Context, identity string, amount decimal.Decimal) (*domain.Account, error)
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// AmountRequest is the body of POST /deposit and POST /withdraw.
// The amount may be a JSON number or a numeric string.
type AmountRequest struct {
	Amount json.RawMessage `json:"amount"`
}

// BalanceResponse reports an account balance, with a message after mutations.
type BalanceResponse struct {
	Identity string      `json:"identity"`
	Balance  json.Number `json:"balance"`
	Message  string      `json:"message,omitempty"`
}

// Handler implements the HTTP endpoints.
type Handler struct {
	issuer CredentialIssuer
	ledger Ledger
	errors *errorResponder
}

// NewHandler creates a handler. A nil logger falls back to slog.Default().
func NewHandler(issuer CredentialIssuer, l Ledger, logger *slog.Logger, production bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		issuer: issuer,
		ledger: l,
		errors: &errorResponder{logger: logger, production: production},
	}
}

// WriteError renders err as a JSON error response.
func (h *Handler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	h.errors.writeError(w, r, err)
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	issued, err := h.issuer.Issue(r.Context(), req.Identity, req.Secret)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Balance handles GET /balance.
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	identity, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, r, domain.ErrAuth(domain.KindNoToken, "authorization header is required"))
		return
	}

	acct, err := h.ledger.Balance(r.Context(), identity)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse(acct, ""))
}

// Deposit handles POST /deposit.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.Credit, "Deposit successful")
}

// Withdraw handles POST /withdraw.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.Debit, "Withdrawal successful")
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type ledgerOp func(ctx context.Context, identity string, amount decimal.Decimal) (*domain.Account, error)

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op ledgerOp, message string) {
	identity, ok := domain.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, r, domain.ErrAuth(domain.KindNoToken, "authorization header is required"))
		return
	}

	var req AmountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}
	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	acct, err := op(r.Context(), identity, amount)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse(acct, message))
}

func balanceResponse(acct *domain.Account, message string) BalanceResponse {
	return BalanceResponse{
		Identity: acct.Owner,
		Balance:  json.Number(acct.Balance.String()),
		Message:  message,
	}
}

// decodeJSON reads a JSON object into v. An empty body decodes as {}.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.ErrValidation(domain.KindInvalidBody, "request body must be a JSON object")
	}
	if dec.More() {
		return domain.ErrValidation(domain.KindInvalidBody, "request body must contain a single JSON object")
	}
	return nil
}
