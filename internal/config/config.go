package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brogergvhs/tokihunter/internal/site"
)

type Config struct {
	Site site.Profile `yaml:"site"`

	DownloadDir string `yaml:"download_dir"`
	SearchDir   string `yaml:"search_dir"`
	CookieFile  string `yaml:"cookie_file"`
	LogFile     string `yaml:"log_file"`
	HistoryDB   string `yaml:"history_db"`

	Headless   bool   `yaml:"headless"`
	ChromePath string `yaml:"chrome_path"`
	UserAgent  string `yaml:"user_agent"`

	PollInterval time.Duration `yaml:"poll_interval"`
	MaxPolls     int           `yaml:"max_polls"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	AwaitLoad    bool          `yaml:"await_load"`

	ImageDelay      time.Duration `yaml:"image_delay"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	ImageExt        string        `yaml:"image_ext"`
	CBZ             bool          `yaml:"cbz"`

	Debug bool `yaml:"debug"`
}

// Options are command line overrides. Zero values leave the config alone.
type Options struct {
	IgnoreConfig bool
	Debug        bool
	Headless     bool
	CBZ          bool
	DownloadDir  string
	SearchDir    string
	CookieFile   string
	ChromePath   string
	UserAgent    string
	BaseURL      string
}

func DefaultConfig() *Config {
	return &Config{
		Site:            site.Manatoki(),
		DownloadDir:     "downloads",
		SearchDir:       "searches",
		CookieFile:      ".session.json",
		LogFile:         filepath.Join("logs", "log.txt"),
		HistoryDB:       "",
		PollInterval:    time.Second,
		MaxPolls:        0,
		SettleDelay:     time.Second,
		ImageDelay:      time.Second,
		DownloadTimeout: time.Minute,
		ImageExt:        "png",
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// loadYAML reads a profile on top of the defaults, so a profile only
// needs the keys it changes.
func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged builds the effective config: defaults, then the active
// profile, then the environment, then opts. The second return value
// describes where the profile came from.
func LoadMerged(opts Options) (*Config, string, error) {
	var (
		cfg    *Config
		source string
	)

	var activePath string
	err := ErrNoConfig
	if !opts.IgnoreConfig {
		activePath, err = ActiveConfigPath()
	}

	switch {
	case opts.IgnoreConfig:
		cfg, source = DefaultConfig(), "(ignored config)"
	case errors.Is(err, ErrNoConfig) || activePath == "":
		cfg = DefaultConfig()
		source = "(default config in memory)\nRun `tokihunter config init` to create an actual config"
	case err != nil:
		return nil, "", err
	default:
		cfg, err = loadYAML(activePath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
		}
		source = activePath
	}

	applyEnv(cfg)
	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	if err := cfg.Site.Validate(); err != nil {
		return nil, "", fmt.Errorf("site profile: %w", err)
	}

	return cfg, source, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Debug {
		c.Debug = true
	}
	if o.Headless {
		c.Headless = true
	}
	if o.CBZ {
		c.CBZ = true
	}
	if o.DownloadDir != "" {
		c.DownloadDir = o.DownloadDir
	}
	if o.SearchDir != "" {
		c.SearchDir = o.SearchDir
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.ChromePath != "" {
		c.ChromePath = o.ChromePath
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.BaseURL != "" {
		c.Site.BaseURL = o.BaseURL
	}
}

func normalizeDefaults(c *Config) {
	d := DefaultConfig()

	c.Site = c.Site.WithDefaults()

	if c.DownloadDir == "" {
		c.DownloadDir = d.DownloadDir
	}
	if c.SearchDir == "" {
		c.SearchDir = d.SearchDir
	}
	if c.CookieFile == "" {
		c.CookieFile = d.CookieFile
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.MaxPolls < 0 {
		c.MaxPolls = 0
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	if c.ImageDelay < 0 {
		c.ImageDelay = 0
	}
	if c.DownloadTimeout <= 0 {
		c.DownloadTimeout = d.DownloadTimeout
	}
	if c.ImageExt == "" {
		c.ImageExt = d.ImageExt
	}
	if c.HistoryDB == "" {
		c.HistoryDB = DefaultHistoryDB()
	}
}

func (c *Config) Print() {
	fmt.Printf(" -base_url: %s\n", c.Site.BaseURL)
	fmt.Printf(" -download_dir: %s\n", c.DownloadDir)
	fmt.Printf(" -search_dir: %s\n", c.SearchDir)
	fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	fmt.Printf(" -poll_interval: %s\n", c.PollInterval)
	if c.MaxPolls > 0 {
		fmt.Printf(" -max_polls: %d\n", c.MaxPolls)
	}
	fmt.Printf(" -image_delay: %s\n", c.ImageDelay)
	fmt.Printf(" -image_ext: %s\n", c.ImageExt)
	if c.Headless {
		fmt.Printf(" -headless: %t\n", c.Headless)
	}
	if c.ChromePath != "" {
		fmt.Printf(" -chrome_path: %s\n", c.ChromePath)
	}
	if c.UserAgent != "" {
		fmt.Printf(" -user_agent: %s\n", c.UserAgent)
	}
	if c.CBZ {
		fmt.Printf(" -cbz: %t\n", c.CBZ)
	}
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.LogFile != "" {
		fmt.Printf(" -log_file: %s\n", c.LogFile)
	}
}
