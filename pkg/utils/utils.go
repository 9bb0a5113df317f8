// Package utils provides download and archive helpers shared by the data sources.
package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("file not found on server")

// logEvery is how many bytes pass between two progress lines.
const logEvery = 1 << 20

// countingReader logs the running size of a download while it is consumed.
type countingReader struct {
	r      io.Reader
	name   string
	n      int64
	logged int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.n-c.logged >= logEvery {
		slog.Debug("download progress", "file", c.name, "bytes", c.n)
		c.logged = c.n
	}
	return n, err
}

func closeBody(body io.Closer) {
	if err := body.Close(); err != nil {
		slog.Warn("error closing response body", "err", err)
	}
}

// get returns the body of a 200 response to a GET of url.
func get(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		closeBody(resp.Body)
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		closeBody(resp.Body)
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}
	return resp.Body, nil
}

// DownloadFile stores the body of url at path. The file only appears once the
// whole body has arrived. A nil client means http.DefaultClient.
func DownloadFile(ctx context.Context, client *http.Client, url, path string) error {
	if client == nil {
		client = http.DefaultClient
	}
	body, err := get(ctx, client, url)
	if err != nil {
		return err
	}
	defer closeBody(body)

	src := &countingReader{r: body, name: filepath.Base(path)}
	err = WriteFileAtomic(path, func(w io.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving %s: %w", filepath.Base(path), err)
	}
	slog.Debug("download complete", "file", src.name, "bytes", src.n)
	return nil
}

// WriteFileAtomic writes whatever fn produces to path through a temp file in
// the same directory, so an existing file is replaced rather than appended to
// and a failed write leaves no partial output behind.
func WriteFileAtomic(path string, fn func(w io.Writer) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if err := os.Remove(tmpName); err != nil && !os.IsNotExist(err) {
			slog.Warn("error removing temp file", "path", tmpName, "err", err)
		}
	}()

	if err := fn(tmpFile); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
