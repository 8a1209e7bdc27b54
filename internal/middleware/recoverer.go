package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recoverer turns a panic in next into an error passed to writeErr, after
// logging the panic value and stack. http.ErrAbortHandler is re-raised so the
// server can abort the connection as usual. If next already sent headers the
// panic is only logged, since a second status line cannot be written.
func Recoverer(logger *slog.Logger, writeErr ErrorWriter) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww, ok := w.(chimw.WrapResponseWriter)
			if !ok {
				ww = chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel value comparison
					panic(rec)
				}
				committed := ww.Status() != 0
				logger.ErrorContext(r.Context(), "panic serving request",
					"panic", fmt.Sprint(rec),
					"path", r.URL.Path,
					"request_id", RequestIDFromContext(r.Context()),
					"response_committed", committed,
					"stack", string(debug.Stack()),
				)
				if committed {
					return
				}
				writeErr(ww, r, fmt.Errorf("panic: %v", rec))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
