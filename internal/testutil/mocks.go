// Package testutil provides shared mock implementations of the interfaces
// consumed by the issuer, the token gate and the HTTP handlers.
package testutil

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"bank-demo/internal/domain"
	"bank-demo/internal/token"
)

// === Principal Lookup Mock ===

// MockPrincipalLookup implements domain.PrincipalLookup for testing.
type MockPrincipalLookup struct {
	GetByIdentityFn func(ctx context.Context, identity string) (*domain.Principal, error)

	mu    sync.Mutex
	calls []string
}

// GetByIdentity implements the interface method for testing.
func (m *MockPrincipalLookup) GetByIdentity(ctx context.Context, identity string) (*domain.Principal, error) {
	m.mu.Lock()
	m.calls = append(m.calls, identity)
	m.mu.Unlock()
	if m.GetByIdentityFn != nil {
		return m.GetByIdentityFn(ctx, identity)
	}
	panic("unexpected call to MockPrincipalLookup.GetByIdentity")
}

// Calls returns the identities looked up so far.
func (m *MockPrincipalLookup) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// === Token Verifier Mock ===

// MockTokenVerifier implements middleware.TokenVerifier for testing.
type MockTokenVerifier struct {
	VerifyFn func(tokenString string) (*token.Claims, error)
}

// Verify implements the interface method for testing.
func (m *MockTokenVerifier) Verify(tokenString string) (*token.Claims, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(tokenString)
	}
	panic("unexpected call to MockTokenVerifier.Verify")
}

// === Ledger Mock ===

// MockLedger implements api.Ledger for testing.
type MockLedger struct {
	BalanceFn func(ctx context.Context, identity string) (*domain.Account, error)
	CreditFn  func(ctx context.Context, identity string, amount decimal.Decimal) (*domain.Account, error)
	DebitFn   func(ctx context.Context, identity string, amount decimal.Decimal) (*domain.Account, error)
}

// Balance implements the interface method for testing.
func (m *MockLedger) Balance(ctx context.Context, identity string) (*domain.Account, error) {
	if m.BalanceFn != nil {
		return m.BalanceFn(ctx, identity)
	}
	panic("unexpected call to MockLedger.Balance")
}

// Credit implements the interface method for testing.
func (m *MockLedger) Credit(ctx context.Context, identity string, amount decimal.Decimal) (*domain.Account, error) {
	if m.CreditFn != nil {
		return m.CreditFn(ctx, identity, amount)
	}
	panic("unexpected call to MockLedger.Credit")
}

// Debit implements the interface method for testing.
func (m *MockLedger) Debit(ctx context.Context, identity string, amount decimal.Decimal) (*domain.Account, error) {
	if m.DebitFn != nil {
		return m.DebitFn(ctx, identity, amount)
	}
	panic("unexpected call to MockLedger.Debit")
}
