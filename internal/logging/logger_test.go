package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONWithProfileFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "inboxd.log")

	logger, err := New(path, "work", zapcore.InfoLevel)
	require.NoError(t, err)
	logger.Info("hello", zap.String("k", "v"))
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(data, &line), "exactly one JSON line: %s", data)
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "work", line["profile"])
	assert.Equal(t, "v", line["k"])
	assert.EqualValues(t, os.Getpid(), line["pid"])
	assert.Contains(t, line, "ts")
}
