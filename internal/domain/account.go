package domain

import "github.com/shopspring/decimal"

// Account is a point-in-time view of one ledger entry.
type Account struct {
	Owner   string
	Balance decimal.Decimal
}
