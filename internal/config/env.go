package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	EnvBaseURL    = "TOKIHUNTER_BASE_URL"
	EnvChromePath = "TOKIHUNTER_CHROME_PATH"
	EnvUserAgent  = "TOKIHUNTER_USER_AGENT"
)

// LoadDotEnv reads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}

	return godotenv.Load(present...)
}

func applyEnv(c *Config) {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Site.BaseURL = v
	}
	if v := os.Getenv(EnvChromePath); v != "" {
		c.ChromePath = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.UserAgent = v
	}
}
