package util

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CreateCBZ packs the files of dir with extension ext into a comic book
// archive at output, in name order. It returns the number of pages written.
func CreateCBZ(dir, ext, output string) (pages int, err error) {
	files, err := filesWithExt(dir, ext)
	if err != nil {
		return 0, fmt.Errorf("cbz: %w", err)
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("cbz: no %s files in %s", ext, dir)
	}

	out, err := os.Create(output)
	if err != nil {
		return 0, fmt.Errorf("cbz: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("cbz: close %s: %w", output, cerr))
		}
	}()

	z := zip.NewWriter(out)
	defer func() {
		if cerr := z.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("cbz: finish %s: %w", output, cerr))
		}
	}()

	for _, file := range files {
		if err := addFileToZip(z, file); err != nil {
			return pages, err
		}
		pages++
	}

	return pages, nil
}

func filesWithExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	want := "." + strings.TrimPrefix(strings.ToLower(ext), ".")

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.ToLower(filepath.Ext(e.Name())) == want {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}

func addFileToZip(z *zip.Writer, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = filepath.Base(file)
	// images are already compressed
	header.Method = zip.Store

	w, err := z.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, f)

	return err
}
