package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/brogergvhs/tokihunter/internal/browser"
	"github.com/brogergvhs/tokihunter/internal/browser/browsertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureLog struct {
	debug []string
	warn  []string
}

func (c *captureLog) Debugf(format string, args ...any) {
	c.debug = append(c.debug, fmt.Sprintf(format, args...))
}

func (c *captureLog) Warnf(format string, args ...any) {
	c.warn = append(c.warn, fmt.Sprintf(format, args...))
}

func newManager(t *testing.T, sess *browsertest.Session) (*Manager, *captureLog, string) {
	t.Helper()

	jar := filepath.Join(t.TempDir(), ".session.json")
	log := &captureLog{}
	l := &browsertest.Launcher{Session: sess}

	return NewManager(l, jar, browser.LaunchOptions{UserAgent: "ua"}, log), log, jar
}

func TestOpenOverridesHeadless(t *testing.T) {
	l := &browsertest.Launcher{}
	m := NewManager(l, "jar", browser.LaunchOptions{Headless: true, UserAgent: "ua"}, &captureLog{})

	_, err := m.Open(context.Background(), false)
	require.NoError(t, err)

	launched := l.Launched()
	require.Len(t, launched, 1)
	assert.False(t, launched[0].Headless)
	assert.Equal(t, "ua", launched[0].UserAgent)
}

func TestOpenSurfacesLaunchFailure(t *testing.T) {
	boom := errors.New("no chrome")
	m := NewManager(&browsertest.Launcher{Err: boom}, "jar", browser.LaunchOptions{}, &captureLog{})

	_, err := m.Open(context.Background(), true)
	assert.ErrorIs(t, err, boom)
}

func TestLoadCookiesMissingJar(t *testing.T) {
	sess := browsertest.NewSession(browsertest.NewPage(""))
	m, log, _ := newManager(t, sess)

	assert.Equal(t, NotFound, m.LoadCookies(context.Background(), sess))
	assert.False(t, sess.CookiesLoaded())
	assert.Empty(t, log.warn)
}

func TestCookieRoundTrip(t *testing.T) {
	sess := browsertest.NewSession(browsertest.NewPage(""))
	sess.Cookies = []byte(`[{"name":"PHPSESSID","value":"x"}]`)
	m, _, jar := newManager(t, sess)

	assert.Equal(t, OK, m.SaveCookies(context.Background(), sess))

	data, err := os.ReadFile(jar)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"PHPSESSID","value":"x"}]`, string(data))

	next := browsertest.NewSession(browsertest.NewPage(""))
	assert.Equal(t, OK, m.LoadCookies(context.Background(), next))
	assert.True(t, next.CookiesLoaded())
}

func TestTeardownAfterWindowClosed(t *testing.T) {
	sess := browsertest.NewSession(browsertest.NewPage(""))
	sess.Kill()
	m, log, jar := newManager(t, sess)

	saved, closed := m.Teardown(context.Background(), sess)

	assert.Equal(t, AlreadyClosed, saved)
	assert.Equal(t, AlreadyClosed, closed)
	assert.True(t, saved.Benign())
	assert.Empty(t, log.warn)
	assert.NoFileExists(t, jar)
}

func TestFailedOutcomeIsLogged(t *testing.T) {
	sess := browsertest.NewSession(browsertest.NewPage(""))
	sess.SaveErr = errors.New("disk full")
	m, log, _ := newManager(t, sess)

	assert.Equal(t, Failed, m.SaveCookies(context.Background(), sess))
	require.Len(t, log.warn, 1)
	assert.Contains(t, log.warn[0], "disk full")

	assert.Equal(t, OK, m.Close(context.Background(), sess))
	assert.Equal(t, AlreadyClosed, m.Close(context.Background(), sess))
}

func TestTeardownIgnoresCancellation(t *testing.T) {
	sess := browsertest.NewSession(browsertest.NewPage(""))
	m, _, jar := newManager(t, sess)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	saved, closed := m.Teardown(ctx, sess)
	assert.Equal(t, OK, saved)
	assert.Equal(t, OK, closed)
	assert.FileExists(t, jar)
}
