package utils

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ExtractZip extracts every entry of the archive at src into destDir and
// returns the paths of the files it wrote. Entries that would land outside
// destDir are rejected.
func ExtractZip(src, destDir string) ([]string, error) {
	rz, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("opening zip file: %w", err)
	}
	defer func() {
		if err := rz.Close(); err != nil {
			slog.Warn("error closing zip file", "path", src, "err", err)
		}
	}()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, f := range rz.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return written, fmt.Errorf("illegal path in archive: %q", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return written, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, err
		}
		if err := extractEntry(f, target); err != nil {
			return written, fmt.Errorf("extracting %s: %w", f.Name, err)
		}
		written = append(written, target)
	}
	return written, nil
}

func extractEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
