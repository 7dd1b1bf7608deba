package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManatokiEndpoints(t *testing.T) {
	p := Manatoki()

	assert.Equal(t, "https://manatoki469.net/bbs/captcha.php", p.CaptchaURL())
	assert.Equal(t, "https://manatoki469.net/comic", p.ComicURL())
	assert.NoError(t, p.Validate())
}

func TestWithDefaultsKeepsOverrides(t *testing.T) {
	p := Profile{BaseURL: "https://manatoki470.net/"}.WithDefaults()

	assert.Equal(t, "https://manatoki470.net/comic", p.ComicURL())
	assert.Equal(t, ".toon-title", p.Selectors.Title)
	assert.Equal(t, "&spage=1", p.Selectors.PageSuffix)
}

func TestValidateRejectsBadBase(t *testing.T) {
	assert.Error(t, Profile{BaseURL: "manatoki", CaptchaPath: "/c", ComicPath: "/comic"}.Validate())
	assert.Error(t, Profile{BaseURL: "https://x.net", CaptchaPath: "c", ComicPath: "/comic"}.Validate())
}
