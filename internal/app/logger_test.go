package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	_, err = ParseLevel("verbose")
	assert.EqualError(t, err, `invalid log level "verbose"`)
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "json", "info")
	logger.Debug("hidden")
	logger.Info("saved", slog.Int64("id", 7))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "saved", record["msg"])
	assert.EqualValues(t, 7, record["id"])
	assert.Contains(t, record, "source")
}

func TestOpenLogFile(t *testing.T) {
	w, err := OpenLogFile("")
	require.NoError(t, err)
	_, err = w.Write([]byte("dropped"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "backoffice.log")
	w, err = OpenLogFile(path)
	require.NoError(t, err)
	NewLogger(w, "pretty", "info").Info("hello")
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello")
}
