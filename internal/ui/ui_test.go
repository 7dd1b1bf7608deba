package ui

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	l, err := NewLogger(LogOptions{Console: &buf})
	require.NoError(t, err)

	l.Debugf("hidden %d\n", 1)
	l.Infof("Downloaded %s.", "Foo")
	l.Warnf("%s already exists.", "Foo")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Downloaded Foo.")
	assert.Contains(t, out, "Foo already exists.")
}

func TestLoggerDebug(t *testing.T) {
	var buf bytes.Buffer

	l, err := NewLogger(LogOptions{Debug: true, Console: &buf})
	require.NoError(t, err)

	l.Debugf("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestLoggerFileSinkIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "log.txt")

	l, err := NewLogger(LogOptions{File: path, Console: io.Discard})
	require.NoError(t, err)

	l.Infof("CAPTCHA completed")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &rec))
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "CAPTCHA completed", rec["message"])
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Errorf("nothing")
	assert.NoError(t, l.Close())
}

func TestStatsSummary(t *testing.T) {
	var s Stats
	s.TotalImages.Add(3)
	s.TotalBytes.Add(2048)
	s.TotalSkipped.Add(1)

	assert.Equal(t, "3 images (2.00 KB), 1 skipped, 0 links in 2s", s.Summary(1600*time.Millisecond))
}

func TestShorten(t *testing.T) {
	assert.Equal(t, "abc", shorten("abc", 5))
	assert.Equal(t, "나혼자…", shorten("나혼자만레벨업", 4))
}
