package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetHost(t *testing.T) {
	isolateEnv(t)

	out, err := runCLI(t, "", "config", "set-host", "http://bank.local:9090/")
	require.NoError(t, err)
	assert.Contains(t, out, `Profile "default" host set to http://bank.local:9090`)

	_, err = runCLI(t, "", "config", "set-host", "https://staging.example", "--profile", "staging")
	require.NoError(t, err)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://bank.local:9090", cfg.Profiles["default"].Host)
	assert.Equal(t, "https://staging.example", cfg.Profiles["staging"].Host)

	for _, bad := range []string{"bank.local", "ftp://bank.local", "http://bank.local/api", "http://"} {
		_, err := runCLI(t, "", "config", "set-host", bad)
		assert.Error(t, err, bad)
	}
}

func TestConfigUseProfile(t *testing.T) {
	isolateEnv(t)

	_, err := runCLI(t, "", "config", "use-profile", "staging")
	require.Error(t, err)

	_, err = runCLI(t, "", "config", "set-host", "https://staging.example", "--profile", "staging")
	require.NoError(t, err)

	out, err := runCLI(t, "", "config", "use-profile", "staging", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","active_profile":"staging"}`, out)

	_, err = runCLI(t, "", "config", "use-profile", "nope")
	assert.EqualError(t, err, `profile "nope" not found`)

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.CurrentProfile)
}

func TestConfigView(t *testing.T) {
	isolateEnv(t)

	_, err := runCLI(t, "", "config", "view")
	require.Error(t, err)

	token := "eyJhbGciOiJIUzI1NiJ9.payload.signature"
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {Host: "http://localhost:8080", Token: token},
			"staging": {Host: "https://staging.example"},
		},
	}))

	out, err := runCLI(t, "", "config", "view")
	require.NoError(t, err)
	assert.Contains(t, out, "eyJh****ture")
	assert.NotContains(t, out, token)

	out, err = runCLI(t, "", "config", "view", "--reveal")
	require.NoError(t, err)
	assert.Contains(t, out, token)

	out, err = runCLI(t, "", "config", "view", "--profile", "staging", "-o", "json")
	require.NoError(t, err)
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "https://staging.example", p.Host)

	_, err = runCLI(t, "", "config", "view", "--profile", "missing")
	assert.Error(t, err)
}

func TestMaskSecret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "****"},
		{"exactly10c", "****"},
		{"abcdefghijklmnop", "abcd****mnop"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, maskSecret(tt.in), tt.in)
	}
}
