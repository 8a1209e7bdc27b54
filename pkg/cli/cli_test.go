package cli

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_LoginAndTransact(t *testing.T) {
	isolateEnv(t)
	srv := newBankServer(t)

	out, err := runCLI(t, "", "login", "--host", srv.URL, "--identity", "john_doe", "--secret", "password123")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as john_doe")

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	p, err := cfg.ActiveProfile("")
	require.NoError(t, err)
	assert.Equal(t, srv.URL, p.Host)
	assert.Equal(t, "john_doe", p.Identity)
	require.NotEmpty(t, p.Token)

	// Host and token now come from the profile.
	out, err = runCLI(t, "", "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "IDENTITY")
	assert.Contains(t, out, "5000")

	out, err = runCLI(t, "", "deposit", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "Deposit successful")
	assert.Contains(t, out, "6000")

	out, err = runCLI(t, "", "withdraw", "500", "-o", "json")
	require.NoError(t, err)
	var res BalanceResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, json.Number("5500"), res.Balance)
	assert.Equal(t, "Withdrawal successful", res.Message)

	_, err = runCLI(t, "", "withdraw", "50000")
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	assert.Equal(t, "InsufficientFunds", apiErr.Code)
	assert.Equal(t, "5500", apiErr.CurrentBalance)
}

func TestCLI_LoginSecretFromStdin(t *testing.T) {
	isolateEnv(t)
	srv := newBankServer(t)

	out, err := runCLI(t, "password123\n", "login", "--host", srv.URL, "--identity", "john_doe", "--no-save")
	require.NoError(t, err)
	assert.Regexp(t, `^[\w-]+\.[\w-]+\.[\w-]+\n$`, out)

	_, err = LoadUserConfig()
	assert.Error(t, err, "--no-save must not write a config file")
}

func TestCLI_LoginRejected(t *testing.T) {
	isolateEnv(t)
	srv := newBankServer(t)

	_, err := runCLI(t, "", "login", "--host", srv.URL, "--identity", "john_doe", "--secret", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	assert.Equal(t, "InvalidCredentials", apiErr.Code)

	_, err = runCLI(t, "", "login", "--host", srv.URL, "--identity", "john_doe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret is required")
}

func TestCLI_Unauthenticated(t *testing.T) {
	isolateEnv(t)
	srv := newBankServer(t)

	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"no token", []string{"balance", "--host", srv.URL}, "NoToken"},
		{"garbage token", []string{"balance", "--host", srv.URL, "--token", "garbage"}, "InvalidToken"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestCLI_AmountValidatedLocally(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"not a number", []string{"deposit", "abc"}, "must be a number"},
		{"zero", []string{"withdraw", "0"}, "greater than zero"},
		{"negative", []string{"deposit", "--", "-5"}, "greater than zero"},
		{"missing", []string{"deposit"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCLI_Precedence(t *testing.T) {
	isolateEnv(t)
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {Host: "http://profile.example", Token: "profile-token", Output: "json"},
		},
	}))

	resolveWith := func(args ...string) (*globalOptions, error) {
		t.Helper()
		opts := &globalOptions{output: "table"}
		flags := pflag.NewFlagSet("bank", pflag.ContinueOnError)
		flags.StringVar(&opts.host, "host", defaultHost, "")
		flags.StringVar(&opts.token, "token", "", "")
		flags.Var(&opts.output, "output", "")
		flags.StringVar(&opts.profile, "profile", "", "")
		require.NoError(t, flags.Parse(args))
		return opts, opts.resolve(flags)
	}

	opts, err := resolveWith()
	require.NoError(t, err)
	assert.Equal(t, "http://profile.example", opts.host)
	assert.Equal(t, "profile-token", opts.token)
	assert.Equal(t, "json", opts.output.String())

	t.Setenv("BANK_HOST", "http://env.example/")
	t.Setenv("BANK_TOKEN", "env-token")
	opts, err = resolveWith()
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", opts.host)
	assert.Equal(t, "env-token", opts.token)

	opts, err = resolveWith("--host", "http://flag.example", "--token", "flag-token", "--output", "table")
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example", opts.host)
	assert.Equal(t, "flag-token", opts.token)
	assert.Equal(t, "table", opts.output.String())
	assert.Equal(t, "http://flag.example", opts.client.BaseURL)

	t.Setenv("BANK_OUTPUT", "yaml")
	_, err = resolveWith()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BANK_OUTPUT")

	_, err = resolveWith("--profile", "missing", "--output", "table")
	require.NoError(t, err, "unknown profiles resolve to defaults")
}

func TestCLI_RejectsUnexpectedArgs(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"version", []string{"version", "extra"}},
		{"balance", []string{"balance", "extra"}},
		{"login", []string{"login", "--identity", "x", "--secret", "y", "extra"}},
		{"config view", []string{"config", "view", "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			require.Error(t, err)
		})
	}
}

func TestCLI_InvalidOutputFlag(t *testing.T) {
	isolateEnv(t)
	_, err := runCLI(t, "", "version", "--output", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestCLI_Version(t *testing.T) {
	isolateEnv(t)

	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bank version dev")

	out, err = runCLI(t, "", "version", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"dev","commit":"none"}`, out)
}
