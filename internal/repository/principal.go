// Package repository holds the in-memory principal store.
package repository

import (
	"context"
	"sync"

	"bank-demo/internal/domain"
)

// PrincipalRepo maps identities to principal records. Records are written at
// startup and read concurrently afterwards.
type PrincipalRepo struct {
	mu         sync.RWMutex
	principals map[string]domain.Principal
}

func NewPrincipalRepo() *PrincipalRepo {
	return &PrincipalRepo{principals: make(map[string]domain.Principal)}
}

// Create registers a principal. Identities are unique.
func (r *PrincipalRepo) Create(_ context.Context, p domain.Principal) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.principals[p.Identity]; ok {
		return domain.ErrConflict("principal %q already exists", p.Identity)
	}
	r.principals[p.Identity] = p
	return nil
}

func (r *PrincipalRepo) GetByIdentity(_ context.Context, identity string) (*domain.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.principals[identity]
	if !ok {
		return nil, domain.ErrNotFound("principal %q not found", identity)
	}
	return &p, nil
}
