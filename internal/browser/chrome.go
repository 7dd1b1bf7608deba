package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/inspector"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

const defaultDownloadTimeout = time.Minute

// Chrome launches local Chrome/Chromium processes through chromedp.
type Chrome struct {
	log Logger
}

func NewChrome(log Logger) *Chrome {
	return &Chrome{log: log}
}

func (c *Chrome) allocatorOptions(opts LaunchOptions) []chromedp.ExecAllocatorOption {
	out := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	out = append(out,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("window-size", "1280,1024"),
	)

	if !opts.Headless {
		// undo chromedp.Headless, which DefaultExecAllocatorOptions includes
		out = append(out,
			chromedp.Flag("headless", false),
			chromedp.Flag("hide-scrollbars", false),
			chromedp.Flag("mute-audio", false),
		)
	}

	if opts.UserAgent != "" {
		out = append(out, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		out = append(out, chromedp.ExecPath(opts.ExecPath))
	}

	return out
}

// Launch starts a browser and attaches to its first tab. The returned
// session outlives ctx; it ends with Stop or when the browser goes away.
func (c *Chrome) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), c.allocatorOptions(opts)...)

	var ctxOpts []chromedp.ContextOption
	if c.log != nil {
		ctxOpts = append(ctxOpts,
			chromedp.WithLogf(c.cdpLog),
			chromedp.WithErrorf(c.cdpError),
		)
	}
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, ctxOpts...)

	s := &ChromeSession{
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		downloads:   newDownloadTracker(),
		timeout:     opts.DownloadTimeout,
	}
	if s.timeout <= 0 {
		s.timeout = defaultDownloadTimeout
	}

	// the first Run allocates the browser
	if err := s.run(ctx); err != nil {
		s.release()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	tabID := chromedp.FromContext(tabCtx).Target.TargetID
	chromedp.ListenBrowser(tabCtx, func(ev any) {
		switch e := ev.(type) {
		case *target.EventTargetDestroyed:
			if e.TargetID == tabID {
				s.stopped.Store(true)
			}
		default:
			s.downloads.handle(ev)
		}
	})
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if _, ok := ev.(*inspector.EventDetached); ok {
			s.stopped.Store(true)
		}
	})

	return s, nil
}

func (c *Chrome) cdpLog(format string, args ...any) {
	if !strings.Contains(format, "unhandled") {
		c.log.Debugf(format, args...)
	}
}

func (c *Chrome) cdpError(format string, args ...any) {
	if !strings.Contains(format, "unhandled") && !strings.Contains(format, "event") {
		c.log.Errorf(format, args...)
	}
}

// ChromeSession is a Session backed by one chromedp tab.
type ChromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	once        sync.Once

	stopped   atomic.Bool
	downloads *downloadTracker
	timeout   time.Duration
}

func (s *ChromeSession) Stopped() bool {
	return s.stopped.Load() || s.ctx.Err() != nil
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) (Page, error) {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}

	return &ChromePage{s: s}, nil
}

// Stop closes the browser gracefully. It returns ErrClosed when the
// browser was already gone.
func (s *ChromeSession) Stop(_ context.Context) error {
	if s.Stopped() {
		s.release()
		return ErrClosed
	}

	err := chromedp.Cancel(s.ctx)
	s.stopped.Store(true)
	s.release()

	if err != nil && IsClosed(err) {
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}

	return err
}

func (s *ChromeSession) release() {
	s.once.Do(func() {
		s.cancel()
		s.allocCancel()
	})
}

// run executes actions on the tab while honouring both the caller's ctx and
// the lifetime of the tab itself.
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if s.Stopped() {
		return ErrClosed
	}

	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}

	if s.ctx.Err() != nil {
		s.stopped.Store(true)
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return err
}
