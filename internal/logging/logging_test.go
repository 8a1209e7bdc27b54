package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-demo/internal/config"
)

func TestRedactingHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil)))

	logger.With("jwt_secret", "bound-secret").Info("login",
		"identity", "john_doe",
		"secret", "password123",
		"Authorization", "Bearer abc",
		slog.Group("request", "token", "abc", "path", "/login"),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "john_doe", entry["identity"])
	assert.Equal(t, Redacted, entry["secret"])
	assert.Equal(t, Redacted, entry["Authorization"])
	assert.Equal(t, Redacted, entry["jwt_secret"])

	group, ok := entry["request"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, Redacted, group["token"])
	assert.Equal(t, "/login", group["path"])
	assert.NotContains(t, buf.String(), "password123")
}

func TestNewRedactingHandler_Nil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewRedactingHandler(nil))
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      *config.Config
		wantJSON bool
		debugOn  bool
	}{
		{name: "development text", cfg: &config.Config{Env: "development", LogLevel: "debug"}, debugOn: true},
		{name: "production json", cfg: &config.Config{Env: "production", LogLevel: "warn"}, wantJSON: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(tt.cfg, &buf)
			logger.Debug("debug line")
			logger.Warn("warn line", "password", "hunter2")

			out := buf.String()
			assert.Equal(t, tt.debugOn, bytes.Contains(buf.Bytes(), []byte("debug line")))
			assert.Contains(t, out, "warn line")
			assert.NotContains(t, out, "hunter2")
			if tt.wantJSON {
				assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
			} else {
				assert.Contains(t, out, "level=WARN")
			}
		})
	}
}
