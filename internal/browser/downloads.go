package browser

import (
	"fmt"
	"sync"

	cdpbrowser "github.com/chromedp/cdproto/browser"
)

// downloadTracker matches browser download events to DownloadFile calls by
// suggested filename. Events arrive on chromedp's listener goroutine.
type downloadTracker struct {
	mu      sync.Mutex
	names   map[string]string     // GUID -> suggested filename
	waiting map[string]chan error // filename -> result
}

func newDownloadTracker() *downloadTracker {
	return &downloadTracker{
		names:   make(map[string]string),
		waiting: make(map[string]chan error),
	}
}

func (t *downloadTracker) expect(filename string) <-chan error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan error, 1)
	t.waiting[filename] = ch

	return ch
}

func (t *downloadTracker) forget(filename string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.waiting, filename)
}

func (t *downloadTracker) handle(ev any) {
	switch e := ev.(type) {
	case *cdpbrowser.EventDownloadWillBegin:
		t.mu.Lock()
		t.names[e.GUID] = e.SuggestedFilename
		t.mu.Unlock()

	case *cdpbrowser.EventDownloadProgress:
		var result error
		switch e.State {
		case cdpbrowser.DownloadProgressStateCompleted:
		case cdpbrowser.DownloadProgressStateCanceled:
			result = ErrDownloadFailed
		default:
			return
		}

		t.mu.Lock()
		name := t.names[e.GUID]
		delete(t.names, e.GUID)
		ch, ok := t.waiting[name]
		delete(t.waiting, name)
		t.mu.Unlock()

		if !ok {
			return
		}
		if result != nil {
			result = fmt.Errorf("%w: %s", result, name)
		}
		ch <- result
	}
}
