package domain

import "context"

// Principal is an identity capable of authenticating.
// Secret is a plain comparison value; it is never hashed or persisted.
type Principal struct {
	Identity string
	Secret   string
}

// Validate checks that the principal record is usable.
func (p Principal) Validate() error {
	if p.Identity == "" {
		return ErrValidation(KindMissingFields, "principal identity is required")
	}
	if p.Secret == "" {
		return ErrValidation(KindMissingFields, "principal secret is required")
	}
	return nil
}

// PrincipalLookup resolves a principal record by identity.
// Implemented by repository.PrincipalRepo.
type PrincipalLookup interface {
	GetByIdentity(ctx context.Context, identity string) (*Principal, error)
}
