// Package app provides application-level wiring and dependency injection
// for the bank-demo server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"bank-demo/internal/api"
	"bank-demo/internal/config"
	"bank-demo/internal/metrics"
	"bank-demo/internal/middleware"
	"bank-demo/internal/repository"
	"bank-demo/internal/service/auth"
	"bank-demo/internal/service/ledger"
	"bank-demo/internal/token"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg    *config.Config
	Logger *slog.Logger
	// Registry receives the application collectors. When nil a fresh registry
	// with Go runtime and process collectors is created.
	Registry *prometheus.Registry
}

// App holds the fully-wired application.
type App struct {
	Handler    http.Handler
	Ledger     *ledger.LedgerService
	Issuer     *auth.IssuerService
	Principals *repository.PrincipalRepo
	Codec      *token.Codec
	Metrics    *metrics.Metrics
}

// New wires the token codec, principal store, services and router from deps,
// then seeds the configured demo principal and account.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m := metrics.New(reg)

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.TokenIssuer)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	principals := repository.NewPrincipalRepo()
	ledgerSvc := ledger.NewLedgerService(m)
	issuerSvc := auth.NewIssuerService(principals, codec, cfg.TokenTTL, m, logger)

	if err := seedDemo(ctx, cfg, principals, ledgerSvc); err != nil {
		return nil, fmt.Errorf("seed demo account: %w", err)
	}

	handler := api.NewHandler(issuerSvc, ledgerSvc, logger, cfg.IsProduction())
	router := api.NewRouter(api.RouterConfig{
		Handler:        handler,
		Gate:           middleware.NewGate(codec, m, logger),
		Metrics:        m,
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	return &App{
		Handler:    router,
		Ledger:     ledgerSvc,
		Issuer:     issuerSvc,
		Principals: principals,
		Codec:      codec,
		Metrics:    m,
	}, nil
}
