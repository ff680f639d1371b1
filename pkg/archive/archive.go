// Package archive extracts uploaded QA scan archives into a working
// directory. Extraction is deliberately forgiving: a malformed or
// malicious entry is skipped, never fatal to the archive as a whole.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks a zip archive read from r into destDir.
//
// Every entry's resolved target path must stay inside destDir; entries
// that would escape it (zip-slip) are skipped, as are entries that fail
// to open or copy. The destination directory is created if needed.
func Extract(r io.ReaderAt, size int64, destDir string) error {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return fmt.Errorf("failed to open archive: %v", err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %v", err)
	}

	base, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("failed to resolve destination directory: %v", err)
	}

	for _, entry := range zr.File {
		// Zip-slip protection: resolve the target path and require
		// it to remain under the destination directory.
		target := filepath.Join(base, filepath.FromSlash(entry.Name))
		if !strings.HasPrefix(target, base+string(os.PathSeparator)) {
			continue
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				continue
			}
			continue
		}

		// Entry-scoped failures skip the entry, not the archive.
		if err := extractEntry(entry, target); err != nil {
			continue
		}
	}

	return nil
}

// ExtractFile unpacks the zip archive at zipPath into destDir.
func ExtractFile(zipPath, destDir string) error {
	f, err := os.Open(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %v", zipPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat archive %s: %v", zipPath, err)
	}

	return Extract(f, info.Size(), destDir)
}

// extractEntry writes a single archive entry to target, creating parent
// directories as needed.
func extractEntry(entry *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := entry.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
