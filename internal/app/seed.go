package app

import (
	"context"
	"fmt"

	"bank-demo/internal/config"
	"bank-demo/internal/domain"
	"bank-demo/internal/repository"
	"bank-demo/internal/service/ledger"
)

// seedDemo registers the configured demo principal and opens its account
// with the configured starting balance.
func seedDemo(ctx context.Context, cfg *config.Config, principals *repository.PrincipalRepo, l *ledger.LedgerService) error {
	p := domain.Principal{Identity: cfg.DemoIdentity, Secret: cfg.DemoSecret}
	if err := principals.Create(ctx, p); err != nil {
		return fmt.Errorf("create principal %s: %w", p.Identity, err)
	}
	if _, err := l.Open(ctx, cfg.DemoIdentity, cfg.DemoBalance); err != nil {
		return fmt.Errorf("open account %s: %w", cfg.DemoIdentity, err)
	}
	return nil
}
