package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool

	flagCaptcha  bool
	flagSearch   bool
	flagHeadless bool
	flagCBZ      bool

	flagDownloadDir string
	flagSearchDir   string
	flagCookieFile  string
	flagChromePath  string
	flagUserAgent   string
	flagBaseURL     string
)

var rootCmd = &cobra.Command{
	Use:   "tokihunter [url]",
	Short: "Download comic pages from manatoki through a real browser",
	Long: `tokihunter drives Chrome through the portal's CAPTCHA checkpoint and
saves the images of a comic page as numbered files.

  tokihunter --captcha                 open a browser to solve the CAPTCHA
  tokihunter <comic url>               download every image of the page
  tokihunter --search <comic url>      save the episode links of a listing`,
	Args:          cobra.MaximumNArgs(1),
	Version:       buildVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runHunt,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")

	rootCmd.Flags().BoolVar(&flagCaptcha, "captcha", false, "open a browser to solve the CAPTCHA first")
	rootCmd.Flags().BoolVar(&flagSearch, "search", false, "save the links of a listing page instead of downloading")
	rootCmd.Flags().BoolVar(&flagHeadless, "headless", false, "run the download/search browser without a window")
	rootCmd.Flags().BoolVar(&flagCBZ, "cbz", false, "also pack each download into a .cbz archive")

	rootCmd.Flags().StringVar(&flagDownloadDir, "download-dir", "", "folder for downloaded comics")
	rootCmd.Flags().StringVar(&flagSearchDir, "search-dir", "", "folder for saved link lists")
	rootCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "cookie jar shared between runs")
	rootCmd.Flags().StringVar(&flagChromePath, "chrome", "", "path to the Chrome/Chromium executable")
	rootCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	rootCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "portal base URL, e.g. https://manatoki469.net")

	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
