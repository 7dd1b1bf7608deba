package util

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
}

func TestRemoveNonMatchingKeepsOnlyExt(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Foo - 0000.png")
	touch(t, dir, "Foo - 0001.PNG")
	touch(t, dir, "Foo - 0002.png.crdownload")
	touch(t, dir, "notes.txt")
	touch(t, dir, "noext")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	removed, err := RemoveNonMatching(dir, "png")
	require.NoError(t, err)
	assert.Len(t, removed, 3)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"Foo - 0000.png", "Foo - 0001.PNG", "sub"}, names)
}

func TestRemoveIfEmpty(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0755))

	assert.True(t, RemoveIfEmpty(empty))
	assert.NoDirExists(t, empty)
	assert.False(t, RemoveIfEmpty(dir+"/missing"))
}

func TestSanitizeTitle(t *testing.T) {
	cases := []struct{ in, want string }{
		{"나 혼자만 레벨업 12화", "나 혼자만 레벨업 12화"},
		{"What? Who: Me/You", "What_ Who_ Me_You"},
		{"  spaced \t out.  ", "spaced out"},
		{"...", "untitled"},
		{"tab\x00null", "tabnull"},
		{"é", "é"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, SanitizeTitle(c.in), c.in)
	}
}

func TestCreateCBZ(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Foo - 0001.png")
	touch(t, dir, "Foo - 0000.png")
	touch(t, dir, "leftover.tmp")

	out := filepath.Join(t.TempDir(), "Foo.cbz")
	pages, err := CreateCBZ(dir, "png", out)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)

	r, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.File, 2)
	assert.Equal(t, "Foo - 0000.png", r.File[0].Name)
	assert.Equal(t, "Foo - 0001.png", r.File[1].Name)
}

func TestCreateCBZEmpty(t *testing.T) {
	_, err := CreateCBZ(t.TempDir(), "png", filepath.Join(t.TempDir(), "x.cbz"))
	assert.Error(t, err)
}

func TestHuman(t *testing.T) {
	assert.Equal(t, "512 B", Human(512))
	assert.Equal(t, "1.50 KB", Human(1536))
	assert.Equal(t, "2.00 MB", Human(2<<20))
	assert.Equal(t, "3.00 GB", Human(3<<30))
}
