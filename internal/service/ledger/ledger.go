// Package ledger holds account balances and applies credit and debit
// operations under per-account locks.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"bank-demo/internal/domain"
	"bank-demo/internal/metrics"
)

// account is one ledger entry. mu serializes every read-modify-write of balance.
type account struct {
	mu      sync.Mutex
	owner   string
	balance decimal.Decimal
}

func (a *account) snapshot() *domain.Account {
	return &domain.Account{Owner: a.owner, Balance: a.balance}
}

// LedgerService owns the identity-keyed account store.
// The map lock is held only for lookups and inserts; balance changes take the
// account's own lock so operations on different accounts never contend.
type LedgerService struct {
	mu       sync.RWMutex
	accounts map[string]*account
	metrics  *metrics.Metrics
}

// NewLedgerService creates an empty ledger. m may be nil.
func NewLedgerService(m *metrics.Metrics) *LedgerService {
	return &LedgerService{accounts: make(map[string]*account), metrics: m}
}

// Open creates the account for identity with an initial balance.
func (s *LedgerService) Open(_ context.Context, identity string, initial decimal.Decimal) (*domain.Account, error) {
	if identity == "" {
		return nil, domain.ErrValidation(domain.KindMissingFields, "account owner is required")
	}
	if initial.IsNegative() {
		return nil, domain.ErrValidation(domain.KindInvalidAmount, "initial balance must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[identity]; ok {
		return nil, domain.ErrConflict("account for %q already exists", identity)
	}
	a := &account{owner: identity, balance: initial}
	s.accounts[identity] = a
	return a.snapshot(), nil
}

// Balance returns the current balance of identity's account.
func (s *LedgerService) Balance(_ context.Context, identity string) (acct *domain.Account, err error) {
	defer func() { s.metrics.ObserveLedger("read", err) }()

	a, err := s.lookup(identity)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot(), nil
}

// Credit adds amount to identity's account. amount must be positive.
func (s *LedgerService) Credit(_ context.Context, identity string, amount decimal.Decimal) (acct *domain.Account, err error) {
	defer func() { s.metrics.ObserveLedger("credit", err) }()

	if err := requirePositive(amount); err != nil {
		return nil, err
	}
	a, err := s.lookup(identity)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balance = a.balance.Add(amount)
	return a.snapshot(), nil
}

// Debit subtracts amount from identity's account. amount must be positive and
// must not exceed the balance; on InsufficientFunds the balance is unchanged.
func (s *LedgerService) Debit(_ context.Context, identity string, amount decimal.Decimal) (acct *domain.Account, err error) {
	defer func() { s.metrics.ObserveLedger("debit", err) }()

	if err := requirePositive(amount); err != nil {
		return nil, err
	}
	a, err := s.lookup(identity)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.balance.LessThan(amount) {
		return nil, &domain.InsufficientFundsError{Balance: a.balance, Requested: amount}
	}
	a.balance = a.balance.Sub(amount)
	return a.snapshot(), nil
}

func (s *LedgerService) lookup(identity string) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[identity]
	if !ok {
		return nil, domain.ErrNotFound("account for %q not found", identity)
	}
	return a, nil
}

func requirePositive(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return domain.ErrValidation(domain.KindNonPositiveAmount, "amount must be greater than zero")
	}
	return nil
}

// Bounds on a single amount. Exponent notation is accepted, so the scale and
// magnitude are checked on the parsed value, not on the text.
const (
	maxAmountLength        = 64
	maxAmountScale         = 18
	maxAmountIntegerDigits = 30
)

// ParseAmount converts a raw JSON amount into a decimal. Both JSON numbers
// and numeric strings are accepted; absent, null, empty, non-finite and
// out-of-range values are InvalidAmount. The sign is not checked here.
func ParseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, domain.ErrValidation(domain.KindInvalidAmount, "amount is required")
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, domain.ErrValidation(domain.KindInvalidAmount, "amount must be a number")
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return decimal.Zero, domain.ErrValidation(domain.KindInvalidAmount, "amount is required")
		}
	}

	if len(text) > maxAmountLength {
		return decimal.Zero, domain.ErrValidation(domain.KindInvalidAmount, "amount is too long")
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, domain.ErrValidation(domain.KindInvalidAmount, "amount must be a number")
	}
	if d.Exponent() < -maxAmountScale {
		return decimal.Zero, domain.ErrValidation(domain.KindInvalidAmount, "amount must have at most %d decimal places", maxAmountScale)
	}
	if int(d.Exponent())+d.NumDigits() > maxAmountIntegerDigits {
		return decimal.Zero, domain.ErrValidation(domain.KindInvalidAmount, "amount must have at most %d integer digits", maxAmountIntegerDigits)
	}
	return d, nil
}
