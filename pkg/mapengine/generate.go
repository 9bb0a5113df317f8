package mapengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/sudorandom/flightmap/pkg/utils"
)

const (
	DefaultOutDir = "public"
	DefaultDPI    = 300.0
)

var ErrNoGeography = errors.New("could not load geographic data")

// DataSource yields the local path of the countries shapefile.
type DataSource interface {
	EnsureCountries(ctx context.Context) (string, error)
}

// Generator produces image files for map variants.
type Generator struct {
	Source  DataSource
	OutDir  string
	DPI     float64
	GeoJSON bool
}

func NewGenerator(src DataSource, outDir string, dpi float64) *Generator {
	if outDir == "" {
		outDir = DefaultOutDir
	}
	if dpi == 0 {
		dpi = DefaultDPI
	}
	return &Generator{Source: src, OutDir: outDir, DPI: dpi}
}

// Generate fetches the data and writes the image for one variant. It returns
// the path of the written PNG.
func (g *Generator) Generate(ctx context.Context, v Variant) (string, error) {
	shapefilePath, err := g.Source.EnsureCountries(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", v, err)
	}
	if !utils.FileExists(shapefilePath) {
		return "", fmt.Errorf("%s: %w: %s missing", v, ErrNoGeography, shapefilePath)
	}

	slog.Info("loading world data", "variant", v.String())
	all, err := LoadCountries(shapefilePath)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", v, ErrNoGeography, err)
	}

	style := StyleFor(v.Device)
	scene := NewScene(all, style, v.Audience)
	slog.Debug("selected regions", "variant", v.String(),
		"world", len(scene.World), "europe", len(scene.Europe), "india", len(scene.India))

	img, err := NewRenderer(style, g.DPI).Render(scene)
	if err != nil {
		return "", fmt.Errorf("%s: %w", v, err)
	}

	out := v.OutputPath(g.OutDir, ".png")
	if err := SavePNG(img, out); err != nil {
		return "", fmt.Errorf("%s: %w: saving %s: %w", v, ErrRender, out, err)
	}
	slog.Info("map saved", "variant", v.String(), "path", out)

	if g.GeoJSON {
		geoPath := v.OutputPath(g.OutDir, ".geojson")
		if err := SaveGeoJSON(scene, style, geoPath); err != nil {
			return out, fmt.Errorf("%s: saving %s: %w", v, geoPath, err)
		}
		slog.Info("geojson saved", "variant", v.String(), "path", geoPath)
	}
	return out, nil
}

// GenerateAll renders each variant in turn. A failing variant is logged and
// skipped; the failures are returned together once every variant was tried.
func (g *Generator) GenerateAll(ctx context.Context, variants []Variant) error {
	var result *multierror.Error
	for _, v := range variants {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		if _, err := g.Generate(ctx, v); err != nil {
			slog.Error("error creating map", "variant", v.String(), "err", err)
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
