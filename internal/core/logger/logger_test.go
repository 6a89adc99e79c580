package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithRotateWritesJSONFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "api.log")
	l, cleanup := NewWithRotate("info", true, file, 1, 1, 1, false)

	l.Debug("dropped")
	l.Info("sweet purchased", zap.String("sweet_id", "s-1"))
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `"msg":"sweet purchased"`)
	assert.Contains(t, out, `"sweet_id":"s-1"`)
	assert.False(t, strings.Contains(out, "dropped"))
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := New("loud", true)
	defer cleanup()
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
}
