package downloader

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brogergvhs/tokihunter/internal/browser"
	"github.com/brogergvhs/tokihunter/internal/extract"
	"github.com/brogergvhs/tokihunter/internal/util"
)

const (
	DefaultExt   = "png"
	DefaultDelay = time.Second
)

// Fetcher saves one resource into the download directory of a page.
type Fetcher interface {
	DownloadFile(ctx context.Context, src, filename string) error
}

type Progress interface {
	SetTotal(total int)
	Update(done, total int, bytes int64)
	MarkDone()
}

type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type Options struct {
	Ext   string
	Delay time.Duration

	// Rand yields values in [0, 1) for the inter-item jitter.
	Rand  func() float64
	Sleep func(ctx context.Context, d time.Duration) error
}

// Downloader saves the images of one comic page, one at a time, pausing a
// jittered delay after each so the portal does not see a burst.
type Downloader struct {
	ext   string
	delay time.Duration
	rand  func() float64
	sleep func(ctx context.Context, d time.Duration) error
	log   Logger
}

func New(opts Options, log Logger) *Downloader {
	d := &Downloader{
		ext:   strings.TrimPrefix(opts.Ext, "."),
		delay: opts.Delay,
		rand:  opts.Rand,
		sleep: opts.Sleep,
		log:   log,
	}

	if d.ext == "" {
		d.ext = DefaultExt
	}
	if d.delay < 0 {
		d.delay = 0
	}
	if d.rand == nil {
		d.rand = rand.Float64
	}
	if d.sleep == nil {
		d.sleep = sleep
	}

	return d
}

func (d *Downloader) Ext() string {
	return d.ext
}

type Result struct {
	Saved   int
	Skipped int
	// Aborted is set when the browser went away mid-loop.
	Aborted bool
	Bytes   int64
	Files   []string
}

// DownloadImages saves items into dir as "<title> - NNNN.<ext>", numbered
// by position in items. Unresolved items and failed downloads are skipped
// without giving up their number. A closed browser ends the loop early and
// keeps what was saved so far; that is not an error.
func (d *Downloader) DownloadImages(
	ctx context.Context,
	f Fetcher,
	dir string,
	title string,
	items []extract.Item,
	ph Progress,
) (Result, error) {
	if ph == nil {
		ph = nopProgress{}
	}

	var res Result
	total := len(items)
	ph.SetTotal(total)
	defer ph.MarkDone()

	for i, item := range items {
		name := FileName(title, i, d.ext)

		switch {
		case !item.Resolved:
			d.log.Debugf("item %d has no source attribute, skipping", i)
			res.Skipped++

		default:
			err := f.DownloadFile(ctx, item.Source, name)
			if err != nil && ctx.Err() != nil {
				res.Aborted = true
				return res, ctx.Err()
			}
			if err != nil && browser.IsClosed(err) {
				d.log.Warnf("browser closed during download, keeping %d of %d images", res.Saved, total)
				res.Aborted = true
				return res, nil
			}
			if err != nil {
				d.log.Warnf("skipping %s: %v", name, err)
				res.Skipped++
				break
			}

			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil {
				res.Bytes += info.Size()
			}
			res.Saved++
			res.Files = append(res.Files, path)
			d.log.Debugf("saved %s", name)
		}

		ph.Update(i+1, total, res.Bytes)

		if err := d.sleep(ctx, Jitter(d.delay, d.rand())); err != nil {
			res.Aborted = true
			return res, err
		}
	}

	return res, nil
}

// Cleanup removes everything in dir that is not a finished image.
func (d *Downloader) Cleanup(dir string) error {
	removed, err := util.RemoveNonMatching(dir, d.ext)
	for _, f := range removed {
		d.log.Debugf("removed leftover %s", f)
	}
	if err != nil {
		return fmt.Errorf("cleanup %s: %w", dir, err)
	}

	return nil
}

func FileName(title string, index int, ext string) string {
	return fmt.Sprintf("%s - %04d.%s", title, index, ext)
}

// Jitter scales base by a factor in [0.5, 1.5) picked by r in [0, 1).
func Jitter(base time.Duration, r float64) time.Duration {
	return time.Duration(float64(base) * (0.5 + r))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nopProgress struct{}

func (nopProgress) SetTotal(int)           {}
func (nopProgress) Update(int, int, int64) {}
func (nopProgress) MarkDone()              {}
