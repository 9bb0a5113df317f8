// Package sources fetches the external datasets the map generator draws from.
package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sudorandom/flightmap/pkg/utils"
)

const (
	DefaultDataDir       = "naturalearth_data"
	CountriesShapefile   = "ne_110m_admin_0_countries.shp"
	DefaultFetchTimeout  = 30 * time.Second
	countriesArchiveName = "countries.zip"
)

// ErrNoData is returned when the country dataset could not be made available
// locally. Callers skip the image they were about to render.
var ErrNoData = errors.New("natural earth data unavailable")

// Fetcher makes sure the Natural Earth admin-0 countries shapefile exists in
// DataDir, downloading and unpacking it from URL on first use.
type Fetcher struct {
	DataDir string
	URL     string
	Client  *http.Client
}

func NewFetcher(dataDir, url string, timeout time.Duration) *Fetcher {
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	if url == "" {
		url = NaturalEarthCountriesURL
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{
		DataDir: dataDir,
		URL:     url,
		Client:  &http.Client{Timeout: timeout},
	}
}

// ShapefilePath is where the countries shapefile lives once fetched.
func (f *Fetcher) ShapefilePath() string {
	return filepath.Join(f.DataDir, CountriesShapefile)
}

// EnsureCountries returns the local shapefile path, downloading the archive
// only if the shapefile is not already there.
func (f *Fetcher) EnsureCountries(ctx context.Context) (string, error) {
	shapefilePath := f.ShapefilePath()
	if utils.FileExists(shapefilePath) {
		slog.Debug("using cached natural earth data", "path", shapefilePath)
		return shapefilePath, nil
	}

	if err := os.MkdirAll(f.DataDir, 0o755); err != nil {
		slog.Error("error creating data dir", "dir", f.DataDir, "err", err)
		return "", fmt.Errorf("%w: creating data dir: %w", ErrNoData, err)
	}

	slog.Info("downloading natural earth data", "url", f.URL)
	if err := f.download(ctx); err != nil {
		slog.Error("error downloading data", "url", f.URL, "err", err)
		return "", fmt.Errorf("%w: %w", ErrNoData, err)
	}

	if !utils.FileExists(shapefilePath) {
		err := fmt.Errorf("%w: archive did not contain %s", ErrNoData, CountriesShapefile)
		slog.Error("error downloading data", "url", f.URL, "err", err)
		return "", err
	}
	slog.Info("data downloaded successfully", "path", shapefilePath)
	return shapefilePath, nil
}

func (f *Fetcher) download(ctx context.Context) error {
	zipPath := filepath.Join(f.DataDir, countriesArchiveName)
	if err := utils.DownloadFile(ctx, f.Client, f.URL, zipPath); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(zipPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("error removing archive", "path", zipPath, "err", err)
		}
	}()

	files, err := utils.ExtractZip(zipPath, f.DataDir)
	if err != nil {
		return err
	}
	slog.Debug("extracted archive", "files", len(files), "dir", f.DataDir)
	return nil
}
