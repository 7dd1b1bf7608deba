package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// LoadCookies restores a jar written by SaveCookies. A missing file is
// returned as-is so callers can test it with errors.Is(err, fs.ErrNotExist).
func (s *ChromeSession) LoadCookies(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var stored []*network.Cookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("decode cookie jar %s: %w", path, err)
	}

	params := CookieParams(stored, time.Now())
	if len(params) == 0 {
		return nil
	}

	return s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		c := chromedp.FromContext(ctx)
		return storage.SetCookies(params).Do(cdp.WithExecutor(ctx, c.Browser))
	}))
}

// SaveCookies writes every cookie of the browser to path as JSON.
func (s *ChromeSession) SaveCookies(ctx context.Context, path string) error {
	var cookies []*network.Cookie
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		c := chromedp.FromContext(ctx)

		var err error
		cookies, err = storage.GetCookies().Do(cdp.WithExecutor(ctx, c.Browser))
		return err
	}))
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// CookieParams converts stored cookies back into settable ones, dropping
// persistent cookies that expired since they were saved.
func CookieParams(cookies []*network.Cookie, now time.Time) []*network.CookieParam {
	out := make([]*network.CookieParam, 0, len(cookies))

	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}

		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
		}

		if !c.Session && c.Expires > 0 {
			exp := time.Unix(int64(c.Expires), 0)
			if !exp.After(now) {
				continue
			}
			ts := cdp.TimeSinceEpoch(exp)
			p.Expires = &ts
		}

		out = append(out, p)
	}

	return out
}
