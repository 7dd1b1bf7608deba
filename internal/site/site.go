// Package site describes the portal tokihunter talks to: where its endpoints
// live and which selectors locate content on its pages.
package site

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultBaseURL     = "https://manatoki469.net"
	DefaultCaptchaPath = "/bbs/captcha.php"
	DefaultComicPath   = "/comic"
)

// Selectors locate content on portal pages.
type Selectors struct {
	Title       string `yaml:"title"`
	TitleAttr   string `yaml:"title_attr"`
	SearchTitle string `yaml:"search_title"`
	Images      string `yaml:"images"`
	// SourceAttrIndex is the position of the image source among the
	// attributes of an image node. The portal randomises the lazy-load
	// attribute name, so it cannot be looked up by name.
	SourceAttrIndex int    `yaml:"source_attr_index"`
	Links           string `yaml:"links"`
	PageSuffix      string `yaml:"page_suffix"`
}

type Profile struct {
	BaseURL     string    `yaml:"base_url"`
	CaptchaPath string    `yaml:"captcha_path"`
	ComicPath   string    `yaml:"comic_path"`
	Selectors   Selectors `yaml:"selectors"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		Title:           ".toon-title",
		TitleAttr:       "title",
		SearchTitle:     ".view-title .view-content span b",
		Images:          ".view-padding div img",
		SourceAttrIndex: 1,
		Links:           ".list-item div a",
		PageSuffix:      "&spage=1",
	}
}

// Manatoki is the built-in profile.
func Manatoki() Profile {
	return Profile{
		BaseURL:     DefaultBaseURL,
		CaptchaPath: DefaultCaptchaPath,
		ComicPath:   DefaultComicPath,
		Selectors:   DefaultSelectors(),
	}
}

func (p Profile) CaptchaURL() string {
	return strings.TrimRight(p.BaseURL, "/") + p.CaptchaPath
}

func (p Profile) ComicURL() string {
	return strings.TrimRight(p.BaseURL, "/") + p.ComicPath
}

func (p Profile) Validate() error {
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", p.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base url %q: scheme and host required", p.BaseURL)
	}
	if !strings.HasPrefix(p.CaptchaPath, "/") || !strings.HasPrefix(p.ComicPath, "/") {
		return fmt.Errorf("endpoint paths must start with /")
	}
	if p.Selectors.SourceAttrIndex < 0 {
		return fmt.Errorf("source_attr_index must not be negative")
	}

	return nil
}

// WithDefaults fills empty fields from the built-in profile.
func (p Profile) WithDefaults() Profile {
	d := Manatoki()

	if p.BaseURL == "" {
		p.BaseURL = d.BaseURL
	}
	if p.CaptchaPath == "" {
		p.CaptchaPath = d.CaptchaPath
	}
	if p.ComicPath == "" {
		p.ComicPath = d.ComicPath
	}

	s := &p.Selectors
	if s.Title == "" {
		s.Title = d.Selectors.Title
	}
	if s.TitleAttr == "" {
		s.TitleAttr = d.Selectors.TitleAttr
	}
	if s.SearchTitle == "" {
		s.SearchTitle = d.Selectors.SearchTitle
	}
	if s.Images == "" {
		s.Images = d.Selectors.Images
	}
	if s.Links == "" {
		s.Links = d.Selectors.Links
	}
	if s.PageSuffix == "" {
		s.PageSuffix = d.Selectors.PageSuffix
	}

	return p
}
