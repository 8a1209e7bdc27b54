// Package logging builds the process logger: slog with a JSON handler in
// production, a text handler in development, and secret redaction on top.
package logging

import (
	"io"
	"log/slog"

	"bank-demo/internal/config"
)

// New returns a logger writing to w at the configured level.
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var base slog.Handler
	if cfg.IsProduction() {
		base = slog.NewJSONHandler(w, opts)
	} else {
		base = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewRedactingHandler(base))
}
