// Package browser defines what the rest of tokihunter needs from a browser
// automation engine and provides a Chrome implementation of it on top of
// chromedp.
package browser

import (
	"context"
	"time"
)

// LaunchOptions configures a single browser process.
type LaunchOptions struct {
	Headless        bool
	ExecPath        string
	UserAgent       string
	DownloadTimeout time.Duration
}

type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Session, error)
}

// Session is one running browser. Stopped reports whether the underlying
// transport is gone, e.g. the user closed the window.
type Session interface {
	Navigate(ctx context.Context, url string) (Page, error)
	LoadCookies(ctx context.Context, path string) error
	SaveCookies(ctx context.Context, path string) error
	Stop(ctx context.Context) error
	Stopped() bool
}

// Page is the tab a Session navigated. Its URL changes on its own while
// redirects happen.
type Page interface {
	URL(ctx context.Context) (string, error)
	Select(ctx context.Context, selector string) (Node, error)
	SelectAll(ctx context.Context, selector string) ([]Node, error)
	SetDownloadPath(ctx context.Context, dir string) error
	DownloadFile(ctx context.Context, src, filename string) error
	WaitForReadyState(ctx context.Context, state string) error
}

// Logger receives chromedp's own diagnostics.
type Logger interface {
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
}
