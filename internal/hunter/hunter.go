// Package hunter runs the three tokihunter operations (solving the CAPTCHA,
// downloading a comic page and saving a listing) on top of one shared
// browse-and-wait flow.
package hunter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brogergvhs/tokihunter/internal/browser"
	"github.com/brogergvhs/tokihunter/internal/config"
	"github.com/brogergvhs/tokihunter/internal/downloader"
	"github.com/brogergvhs/tokihunter/internal/extract"
	"github.com/brogergvhs/tokihunter/internal/gate"
	"github.com/brogergvhs/tokihunter/internal/history"
	"github.com/brogergvhs/tokihunter/internal/session"
)

type Kind int

const (
	Captcha Kind = iota
	Download
	Search
)

func (k Kind) String() string {
	switch k {
	case Captcha:
		return "captcha"
	case Download:
		return "download"
	case Search:
		return "search"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Request is one command line invocation.
type Request struct {
	Captcha  bool
	Search   bool
	Headless bool
	URL      string
}

func (r Request) wants(k Kind) bool {
	switch k {
	case Captcha:
		return r.Captcha
	case Download:
		return r.URL != "" && !r.Search
	case Search:
		return r.URL != "" && r.Search
	}

	return false
}

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

type Deps struct {
	Config   *config.Config
	Launcher browser.Launcher
	Log      Logger

	// History and Progress are optional.
	History  Recorder
	Progress func(title string) downloader.Progress

	// Sleep and Rand replace real delays and jitter in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	Rand  func() float64
}

// Report describes the outcome of one operation.
type Report struct {
	Kind   Kind
	URL    string
	Title  string
	Path   string
	Status history.Status
	Detail string

	Items   int
	Saved   int
	Skipped int
	Bytes   int64
	Links   int

	Started  time.Time
	Finished time.Time
}

type Runner struct {
	cfg      *config.Config
	sessions *session.Manager
	extract  *extract.Extractor
	dl       *downloader.Downloader
	patterns gate.Patterns
	history  Recorder
	progress func(title string) downloader.Progress
	sleep    func(ctx context.Context, d time.Duration) error
	log      Logger
}

func New(d Deps) *Runner {
	cfg := d.Config

	launch := browser.LaunchOptions{
		Headless:        cfg.Headless,
		ExecPath:        cfg.ChromePath,
		UserAgent:       cfg.UserAgent,
		DownloadTimeout: cfg.DownloadTimeout,
	}

	return &Runner{
		cfg:      cfg,
		sessions: session.NewManager(d.Launcher, cfg.CookieFile, launch, d.Log),
		extract:  extract.New(cfg.Site.Selectors),
		dl: downloader.New(downloader.Options{
			Ext:   cfg.ImageExt,
			Delay: cfg.ImageDelay,
			Rand:  d.Rand,
			Sleep: d.Sleep,
		}, d.Log),
		patterns: gate.NewPatterns(cfg.Site.CaptchaURL(), cfg.Site.ComicURL()),
		history:  d.History,
		progress: d.Progress,
		sleep:    d.Sleep,
		log:      d.Log,
	}
}

// Run chains captcha, download and search. Each runs only when req asks
// for it; the first error stops the chain.
func (r *Runner) Run(ctx context.Context, req Request) ([]Report, error) {
	var reports []Report

	for _, k := range []Kind{Captcha, Download, Search} {
		if !req.wants(k) {
			continue
		}

		var (
			rep Report
			err error
		)
		switch k {
		case Captcha:
			rep, err = r.Captcha(ctx)
		case Download:
			rep, err = r.Download(ctx, req.URL, req.Headless)
		case Search:
			rep, err = r.Search(ctx, req.URL, req.Headless)
		}

		if err != nil {
			rep.Status = history.StatusFailed
			if errors.Is(err, context.Canceled) {
				rep.Status = history.StatusAborted
			}
			rep.Detail = err.Error()
		}
		r.record(ctx, rep)
		reports = append(reports, rep)

		if err != nil {
			return reports, fmt.Errorf("%s: %w", k, err)
		}
	}

	return reports, nil
}

func (r *Runner) gateSpec(k Kind) gate.Spec {
	spec := gate.Spec{
		Interval:  r.cfg.PollInterval,
		MaxPolls:  r.cfg.MaxPolls,
		AwaitLoad: r.cfg.AwaitLoad,
		Sleep:     r.sleep,
	}

	switch k {
	case Captcha:
		spec.Ready = r.patterns.CaptchaPassed()
		spec.AwaitLoad = false
	case Download:
		spec.Ready = r.patterns.ComicReady()
		spec.Settle = r.cfg.SettleDelay
	case Search:
		spec.Ready = r.patterns.ComicReady()
	}

	return spec
}

// visit opens a browser on url, waits for the gate and hands the ready page
// to fn. The session is torn down before visit returns. A browser that goes
// away on its own marks rep aborted and is not an error.
func (r *Runner) visit(
	ctx context.Context,
	k Kind,
	headless bool,
	url string,
	rep *Report,
	fn func(ctx context.Context, page browser.Page) error,
) error {
	s, err := r.sessions.Open(ctx, headless)
	if err != nil {
		return err
	}
	defer r.sessions.Teardown(ctx, s)

	r.sessions.LoadCookies(ctx, s)

	err = func() error {
		page, err := s.Navigate(ctx, url)
		if err != nil {
			return err
		}

		state, err := gate.Wait(ctx, s, page, r.gateSpec(k))
		if err != nil {
			return err
		}
		if state == gate.SessionDead {
			rep.Status = history.StatusAborted
			rep.Detail = "browser closed before the page was ready"
			r.log.Warnf("Browser closed while waiting for %s.", url)
			return nil
		}

		if fn == nil {
			return nil
		}
		return fn(ctx, page)
	}()

	if err != nil && ctx.Err() == nil && browser.IsClosed(err) {
		rep.Status = history.StatusAborted
		rep.Detail = err.Error()
		r.log.Warnf("Browser closed during %s: %v", k, err)
		return nil
	}

	return err
}

func (r *Runner) record(ctx context.Context, rep Report) {
	if r.history == nil {
		return
	}

	_, err := r.history.Record(context.WithoutCancel(ctx), history.Entry{
		Kind:       rep.Kind.String(),
		URL:        rep.URL,
		Title:      rep.Title,
		Items:      rep.Saved + rep.Links,
		Status:     rep.Status,
		StartedAt:  rep.Started,
		FinishedAt: rep.Finished,
		Detail:     rep.Detail,
	})
	if err != nil {
		r.log.Warnf("could not record history: %v", err)
	}
}

func newReport(k Kind, url string) Report {
	return Report{
		Kind:    k,
		URL:     url,
		Status:  history.StatusCompleted,
		Started: time.Now(),
	}
}
