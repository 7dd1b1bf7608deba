package hunter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/brogergvhs/tokihunter/internal/browser"
	"github.com/brogergvhs/tokihunter/internal/downloader"
	"github.com/brogergvhs/tokihunter/internal/history"
	"github.com/brogergvhs/tokihunter/internal/util"
)

// Captcha opens a visible browser on the CAPTCHA endpoint and waits for a
// human to pass it. The cookies it earns are saved for later runs.
func (r *Runner) Captcha(ctx context.Context) (Report, error) {
	rep := newReport(Captcha, r.cfg.Site.CaptchaURL())

	err := r.visit(ctx, Captcha, false, rep.URL, &rep, nil)
	rep.Finished = time.Now()
	if err != nil {
		return rep, err
	}

	r.log.Infof("CAPTCHA completed")

	return rep, nil
}

// Download saves every image of the comic page at url into a folder named
// after the comic title. A folder that already exists is left untouched.
func (r *Runner) Download(ctx context.Context, url string, headless bool) (Report, error) {
	rep := newReport(Download, url)
	var started bool

	err := r.visit(ctx, Download, headless, url, &rep, func(ctx context.Context, page browser.Page) error {
		title, err := r.extract.Title(ctx, page)
		if err != nil {
			return err
		}
		rep.Title = title

		name := util.SanitizeTitle(title)
		dir := filepath.Join(r.cfg.DownloadDir, name)
		rep.Path = dir

		if _, err := os.Stat(dir); err == nil {
			r.log.Warnf("%s already exists.", title)
			r.log.Infof("Skipped downloading %s.", title)
			rep.Status = history.StatusSkipped
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("check %s: %w", dir, err)
		}

		if err := page.SetDownloadPath(ctx, dir); err != nil {
			return fmt.Errorf("set download path: %w", err)
		}
		started = true

		items, err := r.extract.Images(ctx, page)
		if err != nil {
			return err
		}
		rep.Items = len(items)

		var ph downloader.Progress
		if r.progress != nil {
			ph = r.progress(title)
		}

		res, err := r.dl.DownloadImages(ctx, page, dir, name, items, ph)
		rep.Saved = res.Saved
		rep.Skipped = res.Skipped
		rep.Bytes = res.Bytes
		if res.Aborted {
			rep.Status = history.StatusAborted
		}

		return err
	})

	if started {
		if cerr := r.dl.Cleanup(rep.Path); cerr != nil {
			r.log.Warnf("%v", cerr)
		}
		// an attempt that saved nothing must not block the next one
		if rep.Saved == 0 && util.RemoveIfEmpty(rep.Path) {
			r.log.Debugf("removed empty %s", rep.Path)
		}
	}

	rep.Finished = time.Now()
	if err != nil {
		return rep, err
	}

	if rep.Status == history.StatusCompleted && rep.Saved == 0 {
		rep.Status = history.StatusSkipped
		rep.Detail = "no images saved"
		r.log.Warnf("No images saved for %s.", rep.Title)
	}

	switch rep.Status {
	case history.StatusCompleted:
		if r.cfg.CBZ {
			r.pack(&rep)
		}
		r.log.Infof("Downloaded %s.", rep.Title)
	case history.StatusAborted:
		if rep.Title != "" {
			r.log.Warnf("Download of %s stopped early: %d of %d images saved.", rep.Title, rep.Saved, rep.Items)
		}
	}

	return rep, nil
}

func (r *Runner) pack(rep *Report) {
	out := rep.Path + ".cbz"

	pages, err := util.CreateCBZ(rep.Path, r.dl.Ext(), out)
	if err != nil {
		r.log.Warnf("could not pack %s: %v", rep.Title, err)
		return
	}

	r.log.Debugf("packed %d pages into %s", pages, out)
}

// Search stores the links of the listing page at url in a text file named
// after the listing title.
func (r *Runner) Search(ctx context.Context, url string, headless bool) (Report, error) {
	rep := newReport(Search, url)

	err := r.visit(ctx, Search, headless, url, &rep, func(ctx context.Context, page browser.Page) error {
		links, err := r.extract.Links(ctx, page)
		if err != nil {
			return err
		}

		title, err := r.extract.SearchTitle(ctx, page)
		if err != nil {
			return err
		}
		rep.Title = title

		path, err := downloader.WriteLinks(r.cfg.SearchDir, title, links)
		if err != nil {
			return err
		}
		rep.Path = path
		rep.Links = len(links)

		return nil
	})

	rep.Finished = time.Now()
	if err != nil {
		return rep, err
	}

	if rep.Status == history.StatusCompleted {
		r.log.Infof("Saved %d links of %s to %s.", rep.Links, rep.Title, rep.Path)
	}

	return rep, nil
}
