package util

import (
	"os"
	"path/filepath"
	"strings"
)

// RemoveNonMatching deletes every regular file in dir whose extension is not
// ext, compared case-insensitively. Leftovers of interrupted browser
// downloads (.crdownload, .tmp) go this way. Subdirectories are left alone.
func RemoveNonMatching(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	want := "." + strings.TrimPrefix(strings.ToLower(ext), ".")

	var removed []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if strings.ToLower(filepath.Ext(e.Name())) == want {
			continue
		}

		full := filepath.Join(dir, e.Name())
		if err := os.Remove(full); err != nil {
			return removed, err
		}
		removed = append(removed, full)
	}

	return removed, nil
}

// RemoveIfEmpty deletes dir when it has no entries and reports whether it
// did.
func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}

	return os.Remove(dir) == nil
}
