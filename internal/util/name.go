package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reForbidden = regexp.MustCompile(`[<>:"/\\|?*]`)
	reSpaces    = regexp.MustCompile(`\s+`)
)

// SanitizeTitle turns a page title into a file or folder name that is valid
// on every desktop OS. Unlike slugs it keeps case, spaces and non-latin
// scripts.
func SanitizeTitle(s string) string {
	s = norm.NFC.String(s)

	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	s = reForbidden.ReplaceAllString(s, "_")
	s = reSpaces.ReplaceAllString(s, " ")
	s = strings.Trim(s, " .")

	if s == "" {
		return "untitled"
	}

	return s
}
