package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"bank-demo/internal/metrics"
	"bank-demo/internal/middleware"
)

// RouterConfig collects what NewRouter needs.
type RouterConfig struct {
	Handler        *Handler
	Gate           *middleware.Gate
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter builds the chi router: public login, health and metrics routes,
// and the balance operations behind the token gate.
func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handler

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(cfg.Logger, cfg.Metrics))
	r.Use(middleware.Recoverer(cfg.Logger, h.WriteError))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "WWW-Authenticate"},
		MaxAge:         300,
	}))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Post("/login", h.Login)
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(cfg.Gate.Middleware(h.WriteError))
		r.Get("/balance", h.Balance)
		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
	})

	return r
}
