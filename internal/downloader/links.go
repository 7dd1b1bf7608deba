package downloader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/tokihunter/internal/util"
)

// WriteLinks stores links one per line in "<dir>/<title>.txt", replacing an
// earlier file of the same name. dir is created when missing.
func WriteLinks(dir, title string, links []string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create search dir: %w", err)
	}

	var b strings.Builder
	for _, l := range links {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	path := filepath.Join(dir, util.SanitizeTitle(title)+".txt")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("write links: %w", err)
	}

	return path, nil
}
