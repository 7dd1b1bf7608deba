package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brogergvhs/tokihunter/internal/browser"
	"github.com/brogergvhs/tokihunter/internal/browser/browsertest"
	"github.com/brogergvhs/tokihunter/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLog struct{}

func (nopLog) Debugf(string, ...any) {}
func (nopLog) Warnf(string, ...any)  {}

type progressSpy struct {
	total int
	done  []int
	final bool
}

func (p *progressSpy) SetTotal(total int)          { p.total = total }
func (p *progressSpy) Update(done, _ int, _ int64) { p.done = append(p.done, done) }
func (p *progressSpy) MarkDone()                   { p.final = true }

func newTestDownloader(slept *[]time.Duration) *Downloader {
	return New(Options{
		Delay: time.Second,
		Rand:  func() float64 { return 0.25 },
		Sleep: func(ctx context.Context, d time.Duration) error {
			if slept != nil {
				*slept = append(*slept, d)
			}
			return ctx.Err()
		},
	}, nopLog{})
}

func items(srcs ...string) []extract.Item {
	out := make([]extract.Item, 0, len(srcs))
	for _, s := range srcs {
		if s == "" {
			out = append(out, extract.Item{})
			continue
		}
		out = append(out, extract.Item{Source: s, Resolved: true})
	}
	return out
}

func pageIn(t *testing.T, dir string) *browsertest.Page {
	t.Helper()

	p := browsertest.NewPage("")
	browsertest.NewSession(p)
	require.NoError(t, p.SetDownloadPath(context.Background(), dir))

	return p
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Foo - 0007.png", FileName("Foo", 7, "png"))
	assert.Equal(t, "Foo - 12345.png", FileName("Foo", 12345, "png"))
}

func TestJitterBounds(t *testing.T) {
	base := 500 * time.Millisecond

	assert.Equal(t, 250*time.Millisecond, Jitter(base, 0))
	assert.Equal(t, 500*time.Millisecond, Jitter(base, 0.5))

	for i := 0; i < 1000; i++ {
		d := Jitter(base, float64(i)/1000)
		assert.GreaterOrEqual(t, d, 250*time.Millisecond)
		assert.LessOrEqual(t, d, 750*time.Millisecond)
	}
}

func TestDownloadImagesNumbersByPosition(t *testing.T) {
	dir := t.TempDir()
	page := pageIn(t, dir)
	page.DownloadErrs = map[string]error{"https://cdn/3.jpg": errors.New("HTTP 404")}

	var slept []time.Duration
	spy := &progressSpy{}
	d := newTestDownloader(&slept)

	res, err := d.DownloadImages(context.Background(), page, dir, "Foo",
		items("https://cdn/0.jpg", "", "https://cdn/2.jpg", "https://cdn/3.jpg", "https://cdn/4.jpg"), spy)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Saved)
	assert.Equal(t, 2, res.Skipped)
	assert.False(t, res.Aborted)
	assert.Equal(t, []string{"Foo - 0000.png", "Foo - 0002.png", "Foo - 0004.png"}, page.Downloads())
	assert.Equal(t, int64(3*len("\x89PNG")), res.Bytes)

	assert.Equal(t, 5, spy.total)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, spy.done)
	assert.True(t, spy.final)

	require.Len(t, slept, 5)
	for _, s := range slept {
		assert.Equal(t, 750*time.Millisecond, s)
	}
}

func TestDownloadImagesAbortsOnClosedBrowser(t *testing.T) {
	dir := t.TempDir()
	page := pageIn(t, dir)
	page.DownloadErrs = map[string]error{"https://cdn/2.jpg": browser.ErrClosed}
	page.Partial = true

	d := newTestDownloader(nil)
	res, err := d.DownloadImages(context.Background(), page, dir, "Foo",
		items("https://cdn/0.jpg", "https://cdn/1.jpg", "https://cdn/2.jpg", "https://cdn/3.jpg"), nil)
	require.NoError(t, err)

	assert.True(t, res.Aborted)
	assert.Equal(t, 2, res.Saved)
	assert.Equal(t, []string{"Foo - 0000.png", "Foo - 0001.png"}, page.Downloads())

	require.NoError(t, d.Cleanup(dir))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDownloadImagesStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	page := pageIn(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	d := New(Options{
		Delay: time.Second,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}, nopLog{})

	res, err := d.DownloadImages(ctx, page, dir, "Foo", items("https://cdn/0.jpg", "https://cdn/1.jpg"), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, res.Aborted)
	assert.Equal(t, 1, res.Saved)
}

func TestDownloadImagesEmpty(t *testing.T) {
	dir := t.TempDir()
	res, err := newTestDownloader(nil).DownloadImages(context.Background(), pageIn(t, dir), dir, "Foo", nil, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Saved)
}

func TestWriteLinksOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "searches")

	_, err := WriteLinks(dir, "Foo", []string{"old"})
	require.NoError(t, err)

	path, err := WriteLinks(dir, "Foo", []string{"a", "b", "a"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Foo.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\na\n", string(data))
}

func TestWriteLinksEmpty(t *testing.T) {
	path, err := WriteLinks(t.TempDir(), "What?", nil)
	require.NoError(t, err)
	assert.Equal(t, "What_.txt", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func ExampleFileName() {
	fmt.Println(FileName("Foo", 7, "png"))
	// Output: Foo - 0007.png
}
