package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bank-demo/internal/app"
	"bank-demo/internal/config"
)

const testJWTSecret = "cli-test-secret"

// isolateEnv points HOME at a temp dir and clears BANK_* variables so no real
// config leaks into a test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("BANK_HOST", "")
	t.Setenv("BANK_TOKEN", "")
	t.Setenv("BANK_OUTPUT", "")
	return home
}

// newBankServer starts the real application behind httptest.
func newBankServer(t *testing.T) *httptest.Server {
	t.Helper()
	a, err := app.New(context.Background(), app.Deps{
		Cfg: &config.Config{
			JWTSecret:          testJWTSecret,
			TokenTTL:           time.Hour,
			TokenIssuer:        "bank-demo",
			DemoIdentity:       "john_doe",
			DemoSecret:         "password123",
			DemoBalance:        decimal.NewFromInt(5000),
			CORSAllowedOrigins: []string{"*"},
		},
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler)
	t.Cleanup(srv.Close)
	return srv
}

// runCLI executes a fresh root command and returns what it printed.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}
