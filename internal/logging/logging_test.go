package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwutils/nwget/internal/dist"
)

var _ dist.Logger = (*Logger)(nil)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info")
	require.NoError(t, err)

	l.Debug("hidden", "key", "value")
	assert.Empty(t, buf.String())

	l.Info("downloaded", "url", "https://dl.nwjs.io/v0.105.0/SHASUMS256.txt", "size", "1.2 kB")
	out := buf.String()
	assert.Contains(t, out, "level=info")
	assert.Contains(t, out, "msg=downloaded")
	assert.Contains(t, out, "url=https://dl.nwjs.io/v0.105.0/SHASUMS256.txt")
	assert.Contains(t, out, "size=1.2 kB")
}

func TestLoggerDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "debug")
	require.NoError(t, err)

	l.Debug("download progress", "completed", "10 MB")
	assert.Contains(t, buf.String(), "level=debug")
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "")
	require.NoError(t, err)

	l.With("version", "0.105.0").Warn("using cached artifact")
	assert.Contains(t, buf.String(), "version=0.105.0")
	assert.Contains(t, buf.String(), "level=warning")
}

func TestLoggerOddKeys(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "error")
	require.NoError(t, err)

	l.Error("failed", "path")
	assert.Contains(t, buf.String(), "!BADKEY=path")
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "chatty")
	assert.Error(t, err)
}
