package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestInitialize_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	err := Initialize(Config{Level: "info", Format: "json", OutputPath: path, MaxSize: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close() })

	Get().Info("hello", "key", "value")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.NotNil(t, FromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestDetach_KeepsRequestIDWithoutCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(WithRequestID(context.Background(), "req-2"))
	detached := Detach(parent)
	cancel()

	assert.NoError(t, detached.Err())
	assert.Equal(t, "req-2", RequestIDFromContext(detached))
}
