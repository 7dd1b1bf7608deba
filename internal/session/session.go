// Package session owns the lifecycle of a browser session: opening it,
// restoring and persisting its cookie jar, and closing it. Apart from Open,
// nothing here returns an error; callers get an Outcome instead.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/brogergvhs/tokihunter/internal/browser"
)

type Outcome int

const (
	OK Outcome = iota
	NotFound
	AlreadyClosed
	Failed
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case NotFound:
		return "not-found"
	case AlreadyClosed:
		return "already-closed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Benign reports whether o needs no attention.
func (o Outcome) Benign() bool {
	return o != Failed
}

type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type Manager struct {
	launcher   browser.Launcher
	cookieFile string
	opts       browser.LaunchOptions
	log        Logger
}

func NewManager(l browser.Launcher, cookieFile string, opts browser.LaunchOptions, log Logger) *Manager {
	return &Manager{
		launcher:   l,
		cookieFile: cookieFile,
		opts:       opts,
		log:        log,
	}
}

// Open launches a browser. headless overrides the configured launch
// options.
func (m *Manager) Open(ctx context.Context, headless bool) (browser.Session, error) {
	opts := m.opts
	opts.Headless = headless

	m.log.Debugf("launching browser (headless=%t)", headless)

	s, err := m.launcher.Launch(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}

	return s, nil
}

func (m *Manager) LoadCookies(ctx context.Context, s browser.Session) Outcome {
	return m.report("load cookies", classify(s.LoadCookies(ctx, m.cookieFile)))
}

func (m *Manager) SaveCookies(ctx context.Context, s browser.Session) Outcome {
	return m.report("save cookies", classify(s.SaveCookies(ctx, m.cookieFile)))
}

func (m *Manager) Close(ctx context.Context, s browser.Session) Outcome {
	return m.report("close browser", classify(s.Stop(ctx)))
}

// Teardown saves the cookie jar, then closes the session.
func (m *Manager) Teardown(ctx context.Context, s browser.Session) (saved, closed Outcome) {
	// a cancelled run still gets to persist what the browser learned
	ctx = context.WithoutCancel(ctx)

	return m.SaveCookies(ctx, s), m.Close(ctx, s)
}

type classified struct {
	outcome Outcome
	err     error
}

func classify(err error) classified {
	switch {
	case err == nil:
		return classified{outcome: OK}
	case errors.Is(err, fs.ErrNotExist):
		return classified{outcome: NotFound, err: err}
	case browser.IsClosed(err):
		return classified{outcome: AlreadyClosed, err: err}
	default:
		return classified{outcome: Failed, err: err}
	}
}

func (m *Manager) report(op string, c classified) Outcome {
	switch c.outcome {
	case OK:
		m.log.Debugf("%s: ok", op)
	case Failed:
		m.log.Warnf("%s failed: %v", op, c.err)
	default:
		m.log.Debugf("%s: %s (%v)", op, c.outcome, c.err)
	}

	return c.outcome
}
