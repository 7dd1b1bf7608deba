package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/brogergvhs/tokihunter/internal/browser"
	"github.com/brogergvhs/tokihunter/internal/config"
	"github.com/brogergvhs/tokihunter/internal/downloader"
	"github.com/brogergvhs/tokihunter/internal/history"
	"github.com/brogergvhs/tokihunter/internal/hunter"
	"github.com/brogergvhs/tokihunter/internal/ui"
)

func runHunt(cmd *cobra.Command, args []string) error {
	var url string
	if len(args) == 1 {
		url = args[0]
	}
	if url == "" && !flagCaptcha {
		return cmd.Help()
	}

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Headless:     flagHeadless,
		CBZ:          flagCBZ,
		DownloadDir:  flagDownloadDir,
		SearchDir:    flagSearchDir,
		CookieFile:   flagCookieFile,
		ChromePath:   flagChromePath,
		UserAgent:    flagUserAgent,
		BaseURL:      flagBaseURL,
	})
	if err != nil {
		return err
	}

	logSvc, err := ui.NewLogger(ui.LogOptions{Debug: cfg.Debug, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logSvc.Close()

	logSvc.Debugf("Config file: %s", usedPath)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rec hunter.Recorder
	if store, err := history.Open(cfg.HistoryDB); err != nil {
		logSvc.Warnf("history disabled: %v", err)
	} else {
		defer store.Close()
		logSvc.Debugf("History DB: %s", store.Path())
		rec = store
	}

	pm := ui.NewProgressManager(os.Stdout)

	runner := hunter.New(hunter.Deps{
		Config:   cfg,
		Launcher: browser.NewChrome(logSvc),
		Log:      logSvc,
		History:  rec,
		Progress: func(title string) downloader.Progress {
			return pm.Register(title)
		},
	})

	start := time.Now()
	reports, err := runner.Run(ctx, hunter.Request{
		Captcha:  flagCaptcha,
		Search:   flagSearch,
		Headless: cfg.Headless,
		URL:      url,
	})
	pm.Close()

	printSummary(reports, time.Since(start))

	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("interrupted: %w", err)
	}

	return err
}

func printSummary(reports []hunter.Report, elapsed time.Duration) {
	stats := &ui.Stats{}
	var downloads int

	for _, r := range reports {
		switch r.Kind {
		case hunter.Download:
			downloads++
			stats.TotalImages.Add(int64(r.Saved))
			stats.TotalSkipped.Add(int64(r.Skipped))
			stats.TotalBytes.Add(r.Bytes)
		case hunter.Search:
			stats.TotalLinks.Add(int64(r.Links))
		}
	}

	if downloads == 0 && stats.TotalLinks.Load() == 0 {
		return
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Println(stats.Summary(elapsed))
}
