// Package browsertest provides in-memory fakes of the browser contract.
// Pages are served from static HTML and a scripted sequence of URLs.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/brogergvhs/tokihunter/internal/browser"
)

// Launcher hands out the queued Sessions in order, then Session on every
// further Launch. It records the options used.
type Launcher struct {
	Sessions []*Session
	Session  *Session
	Err      error

	mu       sync.Mutex
	launched []browser.LaunchOptions
}

func (l *Launcher) Launch(_ context.Context, opts browser.LaunchOptions) (browser.Session, error) {
	l.mu.Lock()
	l.launched = append(l.launched, opts)
	l.mu.Unlock()

	if l.Err != nil {
		return nil, l.Err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.Sessions) > 0 {
		s := l.Sessions[0]
		l.Sessions = l.Sessions[1:]
		return s, nil
	}
	if l.Session == nil {
		l.Session = NewSession(NewPage(""))
	}

	return l.Session, nil
}

func (l *Launcher) Launched() []browser.LaunchOptions {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]browser.LaunchOptions(nil), l.launched...)
}

// Session is a fake browser. Cookies are the raw bytes written on SaveCookies.
type Session struct {
	Page    *Page
	Cookies []byte

	NavigateErr error
	LoadErr     error
	SaveErr     error
	StopErr     error

	mu        sync.Mutex
	stopped   bool
	navigated []string
	loaded    bool
	saves     int
	stops     int
}

func NewSession(p *Page) *Session {
	s := &Session{Page: p, Cookies: []byte("[]")}
	p.session = s

	return s
}

// Kill simulates the user closing the browser window.
func (s *Session) Kill() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *Session) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stopped
}

func (s *Session) Navigate(_ context.Context, url string) (browser.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, browser.ErrClosed
	}
	if s.NavigateErr != nil {
		return nil, s.NavigateErr
	}

	s.navigated = append(s.navigated, url)

	return s.Page, nil
}

func (s *Session) LoadCookies(_ context.Context, path string) error {
	if s.LoadErr != nil {
		return s.LoadErr
	}
	if s.Stopped() {
		return browser.ErrClosed
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Cookies = data
	s.loaded = true
	s.mu.Unlock()

	return nil
}

func (s *Session) SaveCookies(_ context.Context, path string) error {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}
	if s.Stopped() {
		return browser.ErrClosed
	}

	return os.WriteFile(path, s.Cookies, 0600)
}

func (s *Session) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stops++
	if s.StopErr != nil {
		return s.StopErr
	}
	if s.stopped {
		return browser.ErrClosed
	}
	s.stopped = true

	return nil
}

func (s *Session) Navigated() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.navigated...)
}

func (s *Session) CookiesLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loaded
}

func (s *Session) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saves
}

func (s *Session) Stops() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stops
}

// Page serves HTML and walks through URLs, one per URL call. The last URL
// repeats once the sequence is exhausted.
type Page struct {
	HTML string
	URLs []string

	// URLErr is returned by every URL call when set.
	URLErr error
	// OnURL runs after the n-th URL read (1-based).
	OnURL func(n int)

	// DownloadErrs fails downloads by source URL.
	DownloadErrs map[string]error
	// Partial leaves a .crdownload file behind for failed downloads.
	Partial bool
	Payload []byte

	session *Session

	mu         sync.Mutex
	reads      int
	dir        string
	downloads  []string
	readyWaits int
}

func NewPage(html string, urls ...string) *Page {
	return &Page{HTML: html, URLs: urls, Payload: []byte("\x89PNG")}
}

func (p *Page) URL(_ context.Context) (string, error) {
	p.mu.Lock()
	p.reads++
	n := p.reads
	p.mu.Unlock()

	if p.OnURL != nil {
		defer p.OnURL(n)
	}
	if p.URLErr != nil {
		return "", p.URLErr
	}
	if p.session != nil && p.session.Stopped() {
		return "", browser.ErrClosed
	}
	if len(p.URLs) == 0 {
		return "about:blank", nil
	}
	if n > len(p.URLs) {
		n = len(p.URLs)
	}

	return p.URLs[n-1], nil
}

func (p *Page) Select(_ context.Context, selector string) (browser.Node, error) {
	doc, err := browser.ParseDocument(p.HTML)
	if err != nil {
		return browser.Node{}, err
	}

	return browser.QueryOne(doc, selector)
}

func (p *Page) SelectAll(_ context.Context, selector string) ([]browser.Node, error) {
	doc, err := browser.ParseDocument(p.HTML)
	if err != nil {
		return nil, err
	}

	return browser.QueryAll(doc, selector), nil
}

func (p *Page) SetDownloadPath(_ context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	p.mu.Lock()
	p.dir = dir
	p.mu.Unlock()

	return nil
}

func (p *Page) DownloadFile(_ context.Context, src, filename string) error {
	p.mu.Lock()
	dir := p.dir
	p.mu.Unlock()

	if dir == "" {
		return errors.New("browsertest: download path not set")
	}
	if p.session != nil && p.session.Stopped() {
		return browser.ErrClosed
	}

	if err, ok := p.DownloadErrs[src]; ok {
		if p.Partial {
			_ = os.WriteFile(filepath.Join(dir, filename+".crdownload"), nil, 0644)
		}
		return fmt.Errorf("download %s: %w", src, err)
	}

	if err := os.WriteFile(filepath.Join(dir, filename), p.Payload, 0644); err != nil {
		return err
	}

	p.mu.Lock()
	p.downloads = append(p.downloads, filename)
	p.mu.Unlock()

	return nil
}

func (p *Page) WaitForReadyState(_ context.Context, _ string) error {
	p.mu.Lock()
	p.readyWaits++
	p.mu.Unlock()

	return nil
}

func (p *Page) URLReads() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.reads
}

func (p *Page) Downloads() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.downloads...)
}

func (p *Page) ReadyWaits() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.readyWaits
}
