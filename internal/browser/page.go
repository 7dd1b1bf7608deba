package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PuerkitoBio/goquery"
	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const readyStateTick = 100 * time.Millisecond

// ChromePage is the Page of a ChromeSession. DOM queries run against a
// fresh HTML snapshot of the document on every call.
type ChromePage struct {
	s *ChromeSession
}

func (p *ChromePage) URL(ctx context.Context) (string, error) {
	var loc string
	if err := p.s.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}

	return loc, nil
}

func (p *ChromePage) snapshot(ctx context.Context) (*goquery.Document, error) {
	var html string
	if err := p.s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	return ParseDocument(html)
}

func (p *ChromePage) Select(ctx context.Context, selector string) (Node, error) {
	doc, err := p.snapshot(ctx)
	if err != nil {
		return Node{}, err
	}

	return QueryOne(doc, selector)
}

func (p *ChromePage) SelectAll(ctx context.Context, selector string) ([]Node, error) {
	doc, err := p.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return QueryAll(doc, selector), nil
}

// SetDownloadPath makes the browser save downloads into dir under the name
// the page suggests.
func (p *ChromePage) SetDownloadPath(ctx context.Context, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}

	return p.s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		c := chromedp.FromContext(ctx)
		// the Browser executor keeps sessionId off the command
		return cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(abs).
			WithEventsEnabled(true).
			Do(cdp.WithExecutor(ctx, c.Browser))
	}))
}

// DownloadFile fetches src from inside the page, so the request carries the
// page's cookies and referer, and saves it as filename in the download
// path. It returns once the browser reports the download finished.
func (p *ChromePage) DownloadFile(ctx context.Context, src, filename string) error {
	script, err := downloadScript(src, filename)
	if err != nil {
		return err
	}

	done := p.s.downloads.expect(filename)
	defer p.s.downloads.forget(filename)

	var size float64
	if err := p.s.run(ctx, chromedp.Evaluate(script, &size, awaitPromise)); err != nil {
		return fmt.Errorf("download %s: %w", src, err)
	}

	timer := time.NewTimer(p.s.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("%w: %s", ErrDownloadTimeout, filename)
	case <-p.s.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ChromePage) WaitForReadyState(ctx context.Context, state string) error {
	for {
		var current string
		if err := p.s.run(ctx, chromedp.Evaluate(`document.readyState`, &current)); err != nil {
			return err
		}
		if current == state {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(readyStateTick):
		}
	}
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

func downloadScript(src, filename string) (string, error) {
	srcJS, err := json.Marshal(src)
	if err != nil {
		return "", err
	}
	nameJS, err := json.Marshal(filename)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`(async () => {
	const res = await fetch(%s);
	if (!res.ok) throw new Error("HTTP " + res.status);
	const blob = await res.blob();
	const a = document.createElement("a");
	a.href = URL.createObjectURL(blob);
	a.download = %s;
	document.body.appendChild(a);
	a.click();
	a.remove();
	return blob.size;
})()`, srcJS, nameJS), nil
}
