package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/nftgen/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// captureStderr captures output written to os.Stderr during the execution of fn.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	originalStderr := os.Stderr

	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	done := make(chan string, 1)
	go func() {
		buf, _ := io.ReadAll(r)
		done <- string(buf)
	}()

	fn()

	require.NoError(t, w.Close())
	output := <-done
	require.NoError(t, r.Close())
	os.Stderr = originalStderr

	return output
}

func newBufferedLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestNew_WritesToStderr(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	output := captureStderr(t, func() {
		logger.New().Info("test initialization")
	})
	assert.Contains(t, output, "test initialization")
}

func TestLogger_Levels(t *testing.T) {
	lg, buf := newBufferedLogger(t)

	lg.Info("cache hit")
	lg.Warn("cache unavailable")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "cache hit", lines[0])
	assert.Equal(t, "! cache unavailable", lines[1])
}

func TestLogger_ErrorChain(t *testing.T) {
	lg, buf := newBufferedLogger(t)

	err := zerr.Wrap(zerr.Wrap(errors.New("disk full"), "failed to write payload"), "failed to cache bundle")
	lg.Error(err)

	assert.Equal(t,
		"✗ Error: failed to cache bundle\n\n  Caused by:\n    → failed to write payload\n    → disk full\n",
		buf.String())
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newBufferedLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newBufferedLogger(t)
	lg.SetJSON(true)

	lg.Error(errors.New("boom"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "operation failed", record["msg"])
	assert.Equal(t, "boom", record["error"])

	// Switching output keeps JSON mode.
	other := &bytes.Buffer{}
	lg.SetOutput(other)
	lg.Info("still json")
	assert.True(t, json.Valid(other.Bytes()))
}

func TestPrettyHandler_Attrs(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}
	lg := slog.New(logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	lg.With("marker", "order123").Info("hit", "fingerprint", "ab12")
	lg.WithGroup("cache").Info("swept", "removed", 2)
	lg.Debug("filtered")

	assert.Equal(t, "hit marker=order123 fingerprint=ab12\nswept cache.removed=2\n", buf.String())
}
