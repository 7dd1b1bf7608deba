package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvChromePath, "")
	t.Setenv(EnvUserAgent, "")
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	return home
}

func TestConfigRootFollowsXDG(t *testing.T) {
	home := isolate(t)

	assert.Equal(t, filepath.Join(home, "tokihunter"), ConfigRoot())
	assert.Equal(t, filepath.Join(home, "tokihunter", "history.db"), DefaultHistoryDB())
}

func TestLoadMergedWithoutProfile(t *testing.T) {
	isolate(t)

	cfg, source, err := LoadMerged(Options{})
	require.NoError(t, err)
	assert.Contains(t, source, "default config in memory")

	assert.Equal(t, "downloads", cfg.DownloadDir)
	assert.Equal(t, "searches", cfg.SearchDir)
	assert.Equal(t, ".session.json", cfg.CookieFile)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Zero(t, cfg.MaxPolls)
	assert.Equal(t, "png", cfg.ImageExt)
	assert.Equal(t, "https://manatoki469.net/comic", cfg.Site.ComicURL())
	assert.Equal(t, 1, cfg.Site.Selectors.SourceAttrIndex)
}

func TestLoadMergedLayers(t *testing.T) {
	isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)

	profile := []byte("site:\n  base_url: https://manatoki470.net\nimage_delay: 2s\nmax_polls: 30\ndownload_dir: comics\n")
	require.NoError(t, os.WriteFile(path, profile, 0644))

	t.Setenv(EnvUserAgent, "env-agent")

	cfg, source, err := LoadMerged(Options{DownloadDir: "flag-dir", Headless: true})
	require.NoError(t, err)
	assert.Equal(t, path, source)

	assert.Equal(t, "https://manatoki470.net/bbs/captcha.php", cfg.Site.CaptchaURL())
	assert.Equal(t, ".toon-title", cfg.Site.Selectors.Title)
	assert.Equal(t, 2*time.Second, cfg.ImageDelay)
	assert.Equal(t, 30, cfg.MaxPolls)
	assert.Equal(t, "flag-dir", cfg.DownloadDir)
	assert.Equal(t, "env-agent", cfg.UserAgent)
	assert.True(t, cfg.Headless)
	assert.Equal(t, time.Second, cfg.SettleDelay)
}

func TestLoadMergedIgnoreConfig(t *testing.T) {
	home := isolate(t)

	cfg, source, err := LoadMerged(Options{IgnoreConfig: true, BaseURL: "https://manatoki471.net"})
	require.NoError(t, err)
	assert.Equal(t, "(ignored config)", source)
	assert.Equal(t, "https://manatoki471.net/comic", cfg.Site.ComicURL())
	assert.NoDirExists(t, filepath.Join(home, "tokihunter", "configs"))
}

func TestLoadMergedRejectsBadBaseURL(t *testing.T) {
	isolate(t)

	_, _, err := LoadMerged(Options{IgnoreConfig: true, BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestSaveYAMLWritesDurationsAsStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, SaveYAML(DefaultConfig(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "poll_interval: 1s")

	cfg, err := loadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ImageDelay, cfg.ImageDelay)
}

func TestProfiles(t *testing.T) {
	isolate(t)

	_, err := InitDefaultConfig()
	require.NoError(t, err)

	_, err = CreateEmptyConfig("work")
	require.NoError(t, err)
	require.NoError(t, SwitchConfig("work"))

	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, "work", label)

	assert.Error(t, RenameConfig(DefaultLabel, "other"))
	require.NoError(t, RenameConfig("work", "job"))
	label, _ = CurrentLabel()
	assert.Equal(t, "job", label)

	switched, err := RemoveConfig("job")
	require.NoError(t, err)
	assert.True(t, switched)

	list, err := ListConfigs()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, DefaultLabel, list[0].Label)
	assert.True(t, list[0].Active)

	_, err = RemoveConfig(DefaultLabel)
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte(EnvChromePath+"=/opt/chrome\n"), 0644))

	// godotenv never overrides a variable that is set, even to ""
	require.NoError(t, os.Unsetenv(EnvChromePath))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
	require.NoError(t, LoadDotEnv(env))

	cfg, _, err := LoadMerged(Options{IgnoreConfig: true})
	require.NoError(t, err)
	assert.Equal(t, "/opt/chrome", cfg.ChromePath)
}

func TestConfigPathByLabel(t *testing.T) {
	isolate(t)

	path, err := InitDefaultConfig()
	require.NoError(t, err)

	got, err := ConfigPathByLabel(DefaultLabel)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = ConfigPathByLabel("nope")
	assert.Error(t, err)
}

func TestLabelsStayInsideConfigsDir(t *testing.T) {
	isolate(t)

	for _, label := range []string{"", "  ", "../evil", `a\b`, ".."} {
		_, err := CreateEmptyConfig(label)
		assert.ErrorIs(t, err, ErrInvalidLabel, "label %q", label)
	}
}

func TestSwitchRejectsBrokenProfile(t *testing.T) {
	isolate(t)

	_, err := InitDefaultConfig()
	require.NoError(t, err)

	path, err := CreateEmptyConfig("broken")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("max_polls: [nope\n"), 0644))

	assert.Error(t, SwitchConfig("broken"))

	label, err := CurrentLabel()
	require.NoError(t, err)
	assert.Equal(t, DefaultLabel, label)
}
