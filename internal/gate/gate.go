// Package gate waits for a page to get past the portal's CAPTCHA checkpoint
// and reach the page an operation wants.
package gate

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/brogergvhs/tokihunter/internal/browser"
)

const DefaultInterval = time.Second

var ErrGateTimeout = errors.New("gave up waiting for page")

type State int

const (
	Waiting State = iota
	SessionDead
	Ready
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case SessionDead:
		return "session-dead"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stopper reports whether the browser behind a page is gone.
type Stopper interface {
	Stopped() bool
}

type Page interface {
	URL(ctx context.Context) (string, error)
	WaitForReadyState(ctx context.Context, state string) error
}

// Predicate decides from the current URL whether the page is ready.
type Predicate func(url string) bool

// Patterns classifies URLs of one portal.
type Patterns struct {
	captcha *regexp.Regexp
	comic   *regexp.Regexp
}

func NewPatterns(captchaURL, comicURL string) Patterns {
	return Patterns{
		captcha: regexp.MustCompile("^" + regexp.QuoteMeta(captchaURL)),
		comic:   regexp.MustCompile("^" + regexp.QuoteMeta(comicURL) + `/\d+`),
	}
}

// Passed is false while the page sits on the CAPTCHA endpoint.
func (p Patterns) Passed(url string) bool {
	return !p.captcha.MatchString(url)
}

// OnComic reports whether url points at a numbered comic page.
func (p Patterns) OnComic(url string) bool {
	return p.comic.MatchString(url)
}

func (p Patterns) CaptchaPassed() Predicate {
	return p.Passed
}

func (p Patterns) ComicReady() Predicate {
	return func(url string) bool {
		return p.Passed(url) && p.OnComic(url)
	}
}

// Spec parameterises one Wait.
type Spec struct {
	Ready    Predicate
	Interval time.Duration
	// MaxPolls bounds the number of URL reads; zero waits forever.
	MaxPolls int
	// Settle is slept once after the page became ready.
	Settle time.Duration
	// AwaitLoad additionally waits for document.readyState "complete".
	AwaitLoad bool

	// Sleep replaces the context-aware sleep, for tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Wait polls p until the session dies or the ready predicate holds. A dead
// session is reported as SessionDead with a nil error.
func Wait(ctx context.Context, s Stopper, p Page, spec Spec) (State, error) {
	if spec.Ready == nil {
		return Waiting, errors.New("gate: nil ready predicate")
	}

	interval := spec.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	sleep := spec.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	for polls := 0; ; polls++ {
		if s.Stopped() {
			return SessionDead, nil
		}

		if spec.MaxPolls > 0 && polls >= spec.MaxPolls {
			return Waiting, fmt.Errorf("%w after %d polls", ErrGateTimeout, polls)
		}

		url, err := p.URL(ctx)
		if err != nil {
			if browser.IsClosed(err) && ctx.Err() == nil {
				return SessionDead, nil
			}
			if ctx.Err() != nil {
				return Waiting, ctx.Err()
			}
			return Waiting, fmt.Errorf("read page url: %w", err)
		}

		if spec.Ready(url) {
			break
		}

		if err := sleep(ctx, interval); err != nil {
			return Waiting, err
		}
	}

	if spec.Settle > 0 {
		if err := sleep(ctx, spec.Settle); err != nil {
			return Waiting, err
		}
	}

	if spec.AwaitLoad {
		if err := p.WaitForReadyState(ctx, "complete"); err != nil {
			if browser.IsClosed(err) && ctx.Err() == nil {
				return SessionDead, nil
			}
			return Waiting, fmt.Errorf("wait for load: %w", err)
		}
	}

	return Ready, nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
