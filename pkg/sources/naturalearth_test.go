package sources

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func countingServer(t *testing.T, status int, body []byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestEnsureCountriesSkipsNetworkWhenPresent(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, nil)
	dir := t.TempDir()
	existing := filepath.Join(dir, CountriesShapefile)
	require.NoError(t, os.WriteFile(existing, []byte("shp"), 0o644))

	f := NewFetcher(dir, srv.URL, time.Second)
	path, err := f.EnsureCountries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, existing, path)
	assert.Equal(t, int32(0), hits.Load(), "no request expected when the shapefile exists")
}

func TestEnsureCountriesDownloadsAndExtracts(t *testing.T) {
	archive := zipBytes(t, map[string]string{
		"ne_110m_admin_0_countries.shp": "shp",
		"ne_110m_admin_0_countries.dbf": "dbf",
		"ne_110m_admin_0_countries.shx": "shx",
	})
	srv, hits := countingServer(t, http.StatusOK, archive)
	dir := filepath.Join(t.TempDir(), "naturalearth_data")

	f := NewFetcher(dir, srv.URL, time.Second)
	path, err := f.EnsureCountries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, CountriesShapefile), path)
	assert.FileExists(t, filepath.Join(dir, "ne_110m_admin_0_countries.dbf"))
	assert.NoFileExists(t, filepath.Join(dir, countriesArchiveName), "archive is removed after extraction")

	// Second call is served from disk.
	_, err = f.EnsureCountries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestEnsureCountriesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   []byte
	}{
		{"server error", http.StatusInternalServerError, []byte("boom")},
		{"not found", http.StatusNotFound, nil},
		{"not a zip", http.StatusOK, []byte("<html></html>")},
		{"zip without shapefile", http.StatusOK, zipBytes(t, map[string]string{"README.txt": "hi"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := countingServer(t, tt.status, tt.body)
			dir := t.TempDir()

			f := NewFetcher(dir, srv.URL, time.Second)
			path, err := f.EnsureCountries(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoData), "got %v", err)
			assert.Empty(t, path)
			assert.NoFileExists(t, filepath.Join(dir, countriesArchiveName))
		})
	}
}

func TestEnsureCountriesUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := NewFetcher(t.TempDir(), url, 500*time.Millisecond)
	_, err := f.EnsureCountries(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestNewFetcherDefaults(t *testing.T) {
	f := NewFetcher("", "", 0)
	assert.Equal(t, DefaultDataDir, f.DataDir)
	assert.Equal(t, NaturalEarthCountriesURL, f.URL)
	assert.Equal(t, DefaultFetchTimeout, f.Client.Timeout)
	assert.Equal(t, filepath.Join("naturalearth_data", "ne_110m_admin_0_countries.shp"), f.ShapefilePath())
}

func TestEnsureCountriesDataDirUnusable(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	srv, hits := countingServer(t, http.StatusOK, nil)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o644))

	f := NewFetcher(filepath.Join(blocker, "data"), srv.URL, time.Second)
	_, err := f.EnsureCountries(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
	assert.Zero(t, hits.Load())
	assert.Contains(t, logs.String(), "error creating data dir")
}
